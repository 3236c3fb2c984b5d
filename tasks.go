// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dualcore

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Blink returns a task that drives the output high and low, waiting
// the interval after each change.
func Blink(out *Output, interval time.Duration) Task {
	return func(ctx context.Context, ex *Executor) error {
		for {
			glog.Infof("%s high", out)
			out.SetHigh()
			if err := ex.Sleep(ctx, interval); err != nil {
				return err
			}
			glog.Infof("%s low", out)
			out.SetLow()
			if err := ex.Sleep(ctx, interval); err != nil {
				return err
			}
		}
	}
}

// PowerUp returns a task that writes the register sequence to the PMIC
// and then waits the interval, repeatedly. A failed write ends the task.
func PowerUp(p *PMIC, seq []RegWrite, interval time.Duration) Task {
	return func(ctx context.Context, ex *Executor) error {
		for {
			if err := p.Apply(seq); err != nil {
				return err
			}
			glog.Infof("PMIC 0x%02x: wrote %d registers", p.Addr, len(seq))
			if err := ex.Sleep(ctx, interval); err != nil {
				return err
			}
		}
	}
}
