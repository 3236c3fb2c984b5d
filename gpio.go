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
	"fmt"
	"strconv"

	"github.com/usbarmory/tamago/bits"
)

const (
	nPorts   = 11 // GPIOA - GPIOK
	nPins    = 16
	portSize = 0x400
)

// Level is the output level of a pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Speed is the output slew rate of a pin. The values are the OSPEEDR encodings.
type Speed uint32

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedHigh
	SpeedVeryHigh
)

// Pin identifies a GPIO pin e.g PK7 is Pin{'K', 7}
type Pin struct {
	Port byte
	Num  int
}

// The LED pins of the STM32H747I-DISCO board.
var (
	PK5 = Pin{'K', 5} // Red
	PK6 = Pin{'K', 6} // Green
	PK7 = Pin{'K', 7} // Blue
)

// ParsePin decodes a pin name such as "PK7".
func ParsePin(s string) (Pin, error) {
	if len(s) < 3 || s[0] != 'P' {
		return Pin{}, fmt.Errorf("%q: invalid pin name", s)
	}
	n, err := strconv.Atoi(s[2:])
	if err != nil {
		return Pin{}, fmt.Errorf("%q: invalid pin number", s)
	}
	p := Pin{Port: s[1], Num: n}
	return p, p.valid()
}

func (p Pin) String() string {
	return fmt.Sprintf("P%c%d", p.Port, p.Num)
}

func (p Pin) valid() error {
	if p.Port < 'A' || p.Port >= 'A'+nPorts || p.Num < 0 || p.Num >= nPins {
		return fmt.Errorf("%v: no such pin", p)
	}
	return nil
}

// Output is a pin configured as a push-pull output.
type Output struct {
	d    *Device
	pin  Pin
	port uintptr

	Name string // Used in log messages
}

// NewOutput configures the pin as an output, initially at the level given.
// The port clocks are enabled by the primary core during start up.
func NewOutput(d *Device, pin Pin, level Level, speed Speed) (*Output, error) {
	if err := pin.valid(); err != nil {
		return nil, err
	}
	o := &Output{d: d, pin: pin, port: gpioBase + uintptr(pin.Port-'A')*portSize, Name: pin.String()}
	// Set the level before enabling the output to avoid a glitch.
	o.Set(level)
	d.modify(o.port+rGPIO_OSPEEDR, func(v *uint32) {
		bits.SetN(v, pin.Num*2, 0x3, uint32(speed))
	})
	d.modify(o.port+rGPIO_MODER, func(v *uint32) {
		bits.SetN(v, pin.Num*2, 0x3, 1)
	})
	return o, nil
}

// Pin returns the pin driven by the output.
func (o *Output) Pin() Pin {
	return o.pin
}

func (o *Output) String() string {
	return o.Name
}

// Set drives the output to the level given.
func (o *Output) Set(l Level) {
	if l {
		o.SetHigh()
	} else {
		o.SetLow()
	}
}

// SetHigh drives the output high.
func (o *Output) SetHigh() {
	o.d.wr(o.port+rGPIO_BSRR, 1<<uint(o.pin.Num))
}

// SetLow drives the output low.
func (o *Output) SetLow() {
	o.d.wr(o.port+rGPIO_BSRR, 1<<uint(o.pin.Num+16))
}

// Toggle inverts the output.
func (o *Output) Toggle() {
	o.Set(Level(!o.IsSetHigh()))
}

// IsSetHigh returns true if the output is driven high.
func (o *Output) IsSetHigh() bool {
	v := o.d.rd(o.port + rGPIO_ODR)
	return bits.Get(&v, o.pin.Num, 1) != 0
}
