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
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Program sets up the tasks of one core once it is initialised.
type Program func(p *Peripherals, ex *Executor) error

// Board runs the programs of both cores on one device.
// The primary program is set up before the secondary is released,
// so pins it configures are never modified concurrently by the secondary.
type Board struct {
	Dev    *Device
	Config *Config // DefaultConfig if nil
	Entry  uint32  // Secondary boot address
	Timer  Timer   // SystemTimer if nil

	Primary   Program
	Secondary Program // If nil, the secondary is released but nothing runs on it
}

// Run boots both cores and runs their executors until a task fails
// or the context is done.
func (b *Board) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := b.runPrimary(ctx); err != nil {
			return fmt.Errorf("%s: %w", CM7, err)
		}
		return nil
	})
	if b.Secondary != nil {
		g.Go(func() error {
			if err := b.runSecondary(ctx); err != nil {
				return fmt.Errorf("%s: %w", CM4, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *Board) runPrimary(ctx context.Context) error {
	c := b.Config
	if c == nil {
		c = DefaultConfig
	}
	p, err := StartPrimary(b.Dev, c)
	if err != nil {
		return err
	}
	ex := NewExecutor(CM7, b.Timer)
	if b.Primary != nil {
		if err := b.Primary(p, ex); err != nil {
			return err
		}
	}
	if err := p.BootSecondary(b.Entry); err != nil {
		return err
	}
	return ex.Run(ctx)
}

func (b *Board) runSecondary(ctx context.Context) error {
	p, err := InitSecondary(ctx, b.Dev)
	if err != nil {
		return err
	}
	ex := NewExecutor(CM4, b.Timer)
	if err := b.Secondary(p, ex); err != nil {
		return err
	}
	return ex.Run(ctx)
}
