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
	"time"

	"github.com/golang/glog"
)

// Core names.
const (
	CM7 = "cm7" // Primary
	CM4 = "cm4" // Secondary
)

// ReleasePoll is the interval at which the secondary checks for its release.
var ReleasePoll = time.Millisecond

// Peripherals is the view of the device available to one core once it
// has been initialised.
type Peripherals struct {
	Dev    *Device
	Core   string
	Clocks Clocks
}

// Output configures a pin as an output.
func (p *Peripherals) Output(pin Pin, level Level, speed Speed) (*Output, error) {
	return NewOutput(p.Dev, pin, level, speed)
}

// StartPrimary performs the system initialisation of the primary core:
// the clock tree is configured, the peripheral clocks enabled and the
// handoff block published. The secondary core is not released.
// Any error is fatal for both cores.
func StartPrimary(d *Device, c *Config) (*Peripherals, error) {
	clk, err := c.apply(d)
	if err != nil {
		return nil, fmt.Errorf("clock config: %w", err)
	}
	enableClocks(d)
	if err := Publish(d, clk); err != nil {
		return nil, err
	}
	return &Peripherals{Dev: d, Core: CM7, Clocks: clk}, nil
}

// BootSecondary sets the secondary core boot address and releases it.
// It must only be called after StartPrimary.
func (p *Peripherals) BootSecondary(entry uint32) error {
	if p.Core != CM7 {
		return fmt.Errorf("%s: only the primary core can boot the secondary", p.Core)
	}
	if err := p.Dev.Secondary().ReleaseAt(entry); err != nil {
		return err
	}
	glog.Infof("Released %s at 0x%08x (boot field 0x%04x)", CM4, entry, BootField(entry))
	return nil
}

// InitPrimary initialises the system and releases the secondary core
// to begin execution at entry.
func InitPrimary(d *Device, c *Config, entry uint32) (*Peripherals, error) {
	p, err := StartPrimary(d, c)
	if err != nil {
		return nil, err
	}
	if err := p.BootSecondary(entry); err != nil {
		return nil, err
	}
	return p, nil
}

// InitSecondary waits until the secondary core has been released, and
// returns its view of the device using the handoff block.
// If the core was released without the block being published,
// ErrNotPublished is returned.
func InitSecondary(ctx context.Context, d *Device) (*Peripherals, error) {
	ev := d.Secondary().ReleaseEvent(ReleasePoll)
	defer ev.Close()
	if err := ev.Wait(ctx); err != nil {
		return nil, err
	}
	sd, err := ReadHandoff(d)
	if err != nil {
		return nil, err
	}
	glog.Infof("%s: clocks %v", CM4, sd.Clocks)
	return &Peripherals{Dev: d, Core: CM4, Clocks: sd.Clocks}, nil
}
