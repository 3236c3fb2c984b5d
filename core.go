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
	"time"

	"github.com/golang/glog"
	"github.com/usbarmory/tamago/bits"
)

// BootFieldShift is the number of low address bits dropped by the boot address field.
const BootFieldShift = ur3BCM4_ADD1

// BootField returns the value of the boot address field for the entry address,
// which is the address shifted right by BootFieldShift and truncated to 16 bits.
func BootField(entry uint32) uint16 {
	return uint16(bits.Get(&entry, ur3BCM4_ADD1, ur3BCM4_ADD1Mask))
}

// Core controls the secondary (Cortex-M4) core, which is held in reset
// until it is released.
type Core struct {
	d *Device
}

// Secondary returns the control for the secondary core.
func (d *Device) Secondary() *Core {
	return &Core{d: d}
}

// SetBootAddress sets the address that the core begins execution at.
// The low 16 bits of the address cannot be represented and are dropped.
func (c *Core) SetBootAddress(entry uint32) {
	if entry&(1<<BootFieldShift-1) != 0 {
		glog.Warningf("Boot address 0x%08x truncated to 0x%08x", entry, uint32(BootField(entry))<<BootFieldShift)
	}
	c.d.modify(rSYSCFG_UR3, func(v *uint32) {
		bits.SetN(v, ur3BCM4_ADD1, ur3BCM4_ADD1Mask, uint32(BootField(entry)))
	})
}

// BootAddress returns the address that the core begins execution at.
func (c *Core) BootAddress() uint32 {
	v := c.d.rd(rSYSCFG_UR3)
	return bits.Get(&v, ur3BCM4_ADD1, ur3BCM4_ADD1Mask) << BootFieldShift
}

// Release lets the core out of reset. The core can only be released once.
func (c *Core) Release() error {
	if c.IsReleased() {
		return ErrAlreadyReleased
	}
	c.d.modify(rRCC_GCR, func(v *uint32) {
		bits.Set(v, gcrBOOT_C2)
	})
	return nil
}

// ReleaseAt sets the boot address and releases the core.
func (c *Core) ReleaseAt(entry uint32) error {
	if c.IsReleased() {
		return ErrAlreadyReleased
	}
	c.SetBootAddress(entry)
	return c.Release()
}

// IsReleased returns true if the core has been released.
func (c *Core) IsReleased() bool {
	v := c.d.rd(rRCC_GCR)
	return bits.Get(&v, gcrBOOT_C2, 1) != 0
}

// ReleaseEvent returns an Event that is signalled once the core is released.
// The release bit is polled at the interval given.
func (c *Core) ReleaseEvent(poll time.Duration) *Event {
	return newEvent(c.IsReleased, poll)
}
