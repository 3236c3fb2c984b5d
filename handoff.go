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
	"encoding/binary"
	"fmt"

	"github.com/golang/glog"
)

// Handoff block location and layout.
const (
	HandoffAddr    = sram4Base
	HandoffSize    = 32
	HandoffFlag    = 0x4D374D34 // Written last, marks the block as valid
	handoffVersion = 1
)

// SharedData is the handoff block written by the primary core for the
// secondary core. The secondary does not touch the clock tree, and uses
// the clock frequencies from this block instead.
type SharedData struct {
	Flag    uint32
	Version uint32
	Clocks
}

// Publish writes the handoff block. The flag is cleared before the payload
// is written and set afterwards, so a reader never sees a partial block
// marked as valid, whatever the block held before.
func Publish(d *Device, clk Clocks) error {
	stage := make(buffer, HandoffSize)
	sd := SharedData{Version: handoffVersion, Clocks: clk}
	if err := binary.Write(stage.Open(), d.Order, &sd); err != nil {
		return fmt.Errorf("handoff: %v", err)
	}
	w := stage.words(d.Order)
	d.wr(HandoffAddr, 0)
	d.write(w[1:], HandoffAddr+4)
	d.wr(HandoffAddr, HandoffFlag)
	glog.V(1).Infof("Published handoff block at 0x%08x", HandoffAddr)
	return nil
}

// ReadHandoff reads the handoff block, returning ErrNotPublished
// if the primary core has not written it.
func ReadHandoff(d *Device) (*SharedData, error) {
	w := make([]uint32, HandoffSize/4)
	if w[0] = d.rd(HandoffAddr); w[0] != HandoffFlag {
		return nil, ErrNotPublished
	}
	d.read(HandoffAddr+4, w[1:])
	stage := make(buffer, HandoffSize)
	for i, v := range w {
		d.Order.PutUint32(stage[i*4:], v)
	}
	sd := new(SharedData)
	if err := binary.Read(stage.Open(), d.Order, sd); err != nil {
		return nil, fmt.Errorf("handoff: %v", err)
	}
	if sd.Version != handoffVersion {
		return nil, fmt.Errorf("handoff: unsupported version %d", sd.Version)
	}
	return sd, nil
}
