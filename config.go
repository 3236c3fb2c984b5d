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
)

const hsiFreq = 64_000_000 // Internal oscillator

// SysSource selects the system clock. The values are the RCC_CFGR.SW encodings.
type SysSource uint32

const (
	SysHSI   SysSource = 0
	SysHSE   SysSource = 2
	SysPLL1P SysSource = 3
)

// VoltageScale is the core voltage scaling level, which limits the clock rates.
type VoltageScale int

const (
	Scale3 VoltageScale = iota // Reset default
	Scale2
	Scale1
)

func (v VoltageScale) String() string {
	switch v {
	case Scale1:
		return "VOS1"
	case Scale2:
		return "VOS2"
	case Scale3:
		return "VOS3"
	}
	return fmt.Sprintf("VoltageScale(%d)", int(v))
}

// Maximum system clock and AHB clock for each voltage scale.
var scaleLimits = map[VoltageScale]struct{ sys, hclk uint32 }{
	Scale3: {200_000_000, 100_000_000},
	Scale2: {300_000_000, 150_000_000},
	Scale1: {400_000_000, 200_000_000},
}

// Prescaler register encodings, indexed by divider.
var (
	ahbDivs = map[uint32]uint32{1: 0, 2: 8, 4: 9, 8: 10, 16: 11, 64: 12, 128: 13, 256: 14, 512: 15}
	apbDivs = map[uint32]uint32{1: 0, 2: 4, 4: 5, 8: 6, 16: 7}
)

// PLL holds the dividers of PLL1. The VCO runs at (src / M) * N,
// and the outputs at VCO / P, Q and R.
type PLL struct {
	HSE     bool // Use the HSE as the source, otherwise the HSI
	M, N    uint32
	P, Q, R uint32
}

// Config contains the clock tree configuration applied by the primary core.
// A configuration is initialised through config methods on this structure e.g:
//
//	c := NewConfig()
//	c.HSE(25_000_000, false).PLL1(PLL{HSE: true, M: 5, N: 160, P: 2, Q: 4, R: 2})
//	c.SysClk(SysPLL1P).AHB(2).APB(1, 2).APB(2, 2).APB(3, 2).APB(4, 4).Voltage(Scale1)
//	p, err := dualcore.InitPrimary(d, c, entry)
type Config struct {
	hse       uint32
	hseBypass bool
	pll       *PLL
	sys       SysSource
	ahb       uint32
	apb       [4]uint32
	badAPB    []int // Invalid bus numbers passed to APB
	vos       VoltageScale
}

// The default config.
// The default is the reset state of the part, which runs from the 64MHz HSI
// with no PLL and no prescalers.
var DefaultConfig *Config

func init() {
	DefaultConfig = NewConfig()
}

// NewConfig creates a Config with the reset clock tree.
func NewConfig() *Config {
	c := new(Config)
	c.Clear()
	return c
}

// Clear resets the configuration
func (c *Config) Clear() *Config {
	*c = Config{sys: SysHSI, ahb: 1, apb: [4]uint32{1, 1, 1, 1}, vos: Scale3}
	return c
}

// HSE enables the external oscillator at the frequency given.
// If bypass is set, an external clock drives the oscillator input.
func (c *Config) HSE(freq uint32, bypass bool) *Config {
	c.hse = freq
	c.hseBypass = bypass
	return c
}

// PLL1 enables PLL1 with the dividers given.
func (c *Config) PLL1(p PLL) *Config {
	c.pll = &p
	return c
}

// SysClk selects the system clock source.
func (c *Config) SysClk(s SysSource) *Config {
	c.sys = s
	return c
}

// AHB sets the AHB prescaler.
func (c *Config) AHB(div uint32) *Config {
	c.ahb = div
	return c
}

// APB sets the prescaler of APB bus n (1 to 4).
// An invalid bus number is reported by Clocks.
func (c *Config) APB(n int, div uint32) *Config {
	if n < 1 || n > len(c.apb) {
		c.badAPB = append(c.badAPB, n)
		return c
	}
	c.apb[n-1] = div
	return c
}

// Voltage sets the voltage scale.
func (c *Config) Voltage(v VoltageScale) *Config {
	c.vos = v
	return c
}

// Clocks holds the resulting clock frequencies in Hz.
type Clocks struct {
	SysClk uint32
	HClk   uint32
	PClk1  uint32
	PClk2  uint32
	PClk3  uint32
	PClk4  uint32
}

func (c Clocks) String() string {
	return fmt.Sprintf("sys %s, ahb %s, apb1 %s, apb2 %s, apb3 %s, apb4 %s",
		mhz(c.SysClk), mhz(c.HClk), mhz(c.PClk1), mhz(c.PClk2), mhz(c.PClk3), mhz(c.PClk4))
}

func mhz(f uint32) string {
	return fmt.Sprintf("%gMHz", float64(f)/1e6)
}

// Clocks validates the configuration and returns the clock frequencies
// that result from applying it.
func (c *Config) Clocks() (Clocks, error) {
	var clk Clocks
	lim, ok := scaleLimits[c.vos]
	if !ok {
		return clk, fmt.Errorf("unknown voltage scale %v", c.vos)
	}
	if len(c.badAPB) != 0 {
		return clk, fmt.Errorf("invalid APB bus %d", c.badAPB[0])
	}
	switch c.sys {
	case SysHSI:
		clk.SysClk = hsiFreq
	case SysHSE:
		if c.hse == 0 {
			return clk, fmt.Errorf("system clock from HSE, but HSE not enabled")
		}
		clk.SysClk = c.hse
	case SysPLL1P:
		if c.pll == nil {
			return clk, fmt.Errorf("system clock from PLL1, but PLL1 not enabled")
		}
	default:
		return clk, fmt.Errorf("unknown system clock source %d", c.sys)
	}
	if c.pll != nil {
		p, _, _, err := c.pllOutputs()
		if err != nil {
			return clk, err
		}
		if c.sys == SysPLL1P {
			clk.SysClk = p
		}
	}
	if clk.SysClk > lim.sys {
		return clk, fmt.Errorf("system clock %s exceeds %s for %v", mhz(clk.SysClk), mhz(lim.sys), c.vos)
	}
	if _, ok := ahbDivs[c.ahb]; !ok {
		return clk, fmt.Errorf("invalid AHB prescaler %d", c.ahb)
	}
	clk.HClk = clk.SysClk / c.ahb
	if clk.HClk > lim.hclk {
		return clk, fmt.Errorf("AHB clock %s exceeds %s for %v", mhz(clk.HClk), mhz(lim.hclk), c.vos)
	}
	pclk := []*uint32{&clk.PClk1, &clk.PClk2, &clk.PClk3, &clk.PClk4}
	for i, div := range c.apb {
		if _, ok := apbDivs[div]; !ok {
			return clk, fmt.Errorf("invalid APB%d prescaler %d", i+1, div)
		}
		*pclk[i] = clk.HClk / div
	}
	return clk, nil
}

// pllOutputs validates the PLL1 dividers and returns the P, Q and R frequencies.
func (c *Config) pllOutputs() (p, q, r uint32, err error) {
	pll := c.pll
	src := uint32(hsiFreq)
	if pll.HSE {
		if c.hse == 0 {
			return 0, 0, 0, fmt.Errorf("PLL1 source is HSE, but HSE not enabled")
		}
		src = c.hse
	}
	if pll.M < 1 || pll.M > 63 {
		return 0, 0, 0, fmt.Errorf("PLL1 M divider %d out of range", pll.M)
	}
	ref := src / pll.M
	if ref < 1_000_000 || ref > 16_000_000 {
		return 0, 0, 0, fmt.Errorf("PLL1 reference %s out of range", mhz(ref))
	}
	if pll.N < 4 || pll.N > 512 {
		return 0, 0, 0, fmt.Errorf("PLL1 N multiplier %d out of range", pll.N)
	}
	vco := uint64(ref) * uint64(pll.N)
	if vco < 150_000_000 || vco > 960_000_000 {
		return 0, 0, 0, fmt.Errorf("PLL1 VCO %s out of range", mhz(uint32(vco)))
	}
	if pll.P < 1 || pll.P > 128 || (pll.P != 1 && pll.P%2 != 0) {
		return 0, 0, 0, fmt.Errorf("PLL1 P divider %d invalid", pll.P)
	}
	for _, div := range []uint32{pll.Q, pll.R} {
		if div < 1 || div > 128 {
			return 0, 0, 0, fmt.Errorf("PLL1 divider %d out of range", div)
		}
	}
	return uint32(vco / uint64(pll.P)), uint32(vco / uint64(pll.Q)), uint32(vco / uint64(pll.R)), nil
}
