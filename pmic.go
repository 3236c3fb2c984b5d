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
	"github.com/golang/glog"
)

// Bus writes to devices on an I2C bus.
type Bus interface {
	Write(addr uint16, data []byte) error
}

// RegWrite is a single register write to a device.
type RegWrite struct {
	Reg   byte
	Value byte
}

// PMIC is a power management device at a fixed address on the bus.
type PMIC struct {
	Bus  Bus
	Addr uint16 // 7 bit address
}

// Apply writes the register sequence in order, one (register, value)
// pair per bus write. The sequence is abandoned at the first failed write,
// and a *WriteError is returned.
func (p *PMIC) Apply(seq []RegWrite) error {
	for i, w := range seq {
		if err := p.Bus.Write(p.Addr, []byte{w.Reg, w.Value}); err != nil {
			glog.Errorf("PMIC 0x%02x: reg 0x%02x: %v", p.Addr, w.Reg, err)
			return &WriteError{Addr: p.Addr, Index: i, Reg: w.Reg, Err: err}
		}
		glog.V(2).Infof("PMIC 0x%02x: reg 0x%02x <- 0x%02x", p.Addr, w.Reg, w.Value)
	}
	return nil
}
