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

	"github.com/golang/glog"
	"github.com/usbarmory/tamago/bits"
)

// Number of register polls before a clock is considered to have failed.
const maxPolls = 100000

// VOS field encodings, indexed by voltage scale.
var vosBits = [...]uint32{Scale3: 1, Scale2: 2, Scale1: 3}

// apply validates the configuration and programs the clock tree.
// The system clock is switched last, once its source is ready.
func (c *Config) apply(d *Device) (Clocks, error) {
	clk, err := c.Clocks()
	if err != nil {
		return clk, err
	}
	d.modify(rPWR_D3CR, func(v *uint32) {
		bits.SetN(v, d3crVOS, 0x3, vosBits[c.vos])
	})
	if c.hse != 0 {
		d.modify(rRCC_CR, func(v *uint32) {
			bits.SetTo(v, crHSEBYP, c.hseBypass)
			bits.Set(v, crHSEON)
		})
		if err := d.waitBit(rRCC_CR, crHSERDY); err != nil {
			return clk, fmt.Errorf("HSE: %w", err)
		}
	}
	if c.pll != nil {
		c.applyPLL(d)
		if err := d.waitBit(rRCC_CR, crPLL1RDY); err != nil {
			return clk, fmt.Errorf("PLL1: %w", err)
		}
	}
	d.modify(rRCC_D1CFGR, func(v *uint32) {
		bits.SetN(v, d1cfgrD1CPRE, 0xF, 0)
		bits.SetN(v, d1cfgrHPRE, 0xF, ahbDivs[c.ahb])
		bits.SetN(v, d1cfgrD1PPRE, 0x7, apbDivs[c.apb[2]])
	})
	d.modify(rRCC_D2CFGR, func(v *uint32) {
		bits.SetN(v, d2cfgrD2PPRE1, 0x7, apbDivs[c.apb[0]])
		bits.SetN(v, d2cfgrD2PPRE2, 0x7, apbDivs[c.apb[1]])
	})
	d.modify(rRCC_D3CFGR, func(v *uint32) {
		bits.SetN(v, d3cfgrD3PPRE, 0x7, apbDivs[c.apb[3]])
	})
	d.modify(rRCC_CFGR, func(v *uint32) {
		bits.SetN(v, cfgrSW, cfgrSWMask, uint32(c.sys))
	})
	for i := 0; ; i++ {
		cfgr := d.rd(rRCC_CFGR)
		if bits.Get(&cfgr, cfgrSWS, cfgrSWMask) == uint32(c.sys) {
			break
		}
		if i >= maxPolls {
			return clk, fmt.Errorf("system clock switch: %w", ErrClockTimeout)
		}
	}
	glog.Infof("Clocks: %v", clk)
	return clk, nil
}

// applyPLL programs and enables PLL1.
func (c *Config) applyPLL(d *Device) {
	pll := c.pll
	src := uint32(0)
	ref := uint32(hsiFreq) / pll.M
	if pll.HSE {
		src = 2
		ref = c.hse / pll.M
	}
	// Input frequency range: 1-2, 2-4, 4-8 or 8-16MHz.
	rge := uint32(0)
	for r := ref / 2_000_000; r > 0 && rge < 3; r >>= 1 {
		rge++
	}
	d.modify(rRCC_PLLCKSELR, func(v *uint32) {
		bits.SetN(v, pllckselrSRC, 0x3, src)
		bits.SetN(v, pllckselrDIVM1, 0x3F, pll.M)
	})
	d.wr(rRCC_PLL1DIVR, (pll.N-1)<<pll1divrN|(pll.P-1)<<pll1divrP|(pll.Q-1)<<pll1divrQ|(pll.R-1)<<pll1divrR)
	d.modify(rRCC_PLLCFGR, func(v *uint32) {
		bits.SetN(v, pllcfgrRGE1, 0x3, rge)
		bits.Clear(v, pllcfgrVCOSEL1)
		bits.Set(v, pllcfgrP1EN)
		bits.Set(v, pllcfgrQ1EN)
		bits.Set(v, pllcfgrR1EN)
	})
	d.modify(rRCC_CR, func(v *uint32) {
		bits.Set(v, crPLL1ON)
	})
	glog.V(1).Infof("PLL1: M %d N %d P %d Q %d R %d, range %d", pll.M, pll.N, pll.P, pll.Q, pll.R, rge)
}

// waitBit polls until the register bit is set.
func (d *Device) waitBit(addr uintptr, pos int) error {
	for i := 0; i < maxPolls; i++ {
		v := d.rd(addr)
		if bits.Get(&v, pos, 1) != 0 {
			return nil
		}
	}
	return ErrClockTimeout
}

// enableClocks enables the peripheral clocks used by both cores.
// This is done before the secondary is released, so that the secondary
// never modifies the shared enable registers.
func enableClocks(d *Device) {
	d.modify(rRCC_AHB4ENR, func(v *uint32) {
		bits.SetN(v, 0, 1<<nPorts-1, 1<<nPorts-1)
	})
	d.modify(rRCC_APB4ENR, func(v *uint32) {
		bits.Set(v, apb4enrSYSCFGEN)
	})
}
