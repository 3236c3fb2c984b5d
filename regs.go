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

// Memory windows. Each window is mapped separately, since the
// peripherals are spread across the address space.
const (
	sram4Base  = 0x38000000 // D3 SRAM, the .ram_d3 section
	sram4Size  = 64 * 1024
	gpioBase   = 0x58020000 // GPIOA, ports are 0x400 apart
	gpioSize   = 11 * 0x400 // GPIOA - GPIOK
	syscfgBase = 0x58000400
	syscfgSize = 0x400
	rccBase    = 0x58024400
	rccSize    = 0x400
	pwrBase    = 0x58024800
	pwrSize    = 0x400
	dbgmcuBase = 0x5C001000
	dbgmcuSize = 0x400
)

// Register addresses.
const (
	rRCC_CR        = rccBase + 0x00
	rRCC_CFGR      = rccBase + 0x10
	rRCC_D1CFGR    = rccBase + 0x18
	rRCC_D2CFGR    = rccBase + 0x1C
	rRCC_D3CFGR    = rccBase + 0x20
	rRCC_PLLCKSELR = rccBase + 0x28
	rRCC_PLLCFGR   = rccBase + 0x2C
	rRCC_PLL1DIVR  = rccBase + 0x30
	rRCC_GCR       = rccBase + 0xA0
	rRCC_AHB4ENR   = rccBase + 0xE0
	rRCC_APB4ENR   = rccBase + 0xF4

	rPWR_D3CR = pwrBase + 0x18

	rSYSCFG_UR3 = syscfgBase + 0x30C

	rDBGMCU_IDCODE = dbgmcuBase + 0x00

	// GPIO register offsets within a port.
	rGPIO_MODER   = 0x00
	rGPIO_OSPEEDR = 0x08
	rGPIO_ODR     = 0x14
	rGPIO_BSRR    = 0x18
)

// Register fields.
const (
	crHSION    = 0
	crHSIRDY   = 2
	crHSEON    = 16
	crHSERDY   = 17
	crHSEBYP   = 18
	crPLL1ON   = 24
	crPLL1RDY  = 25
	cfgrSW     = 0
	cfgrSWS    = 3
	cfgrSWMask = 0x7

	d1cfgrHPRE    = 0
	d1cfgrD1PPRE  = 4
	d1cfgrD1CPRE  = 8
	d2cfgrD2PPRE1 = 4
	d2cfgrD2PPRE2 = 8
	d3cfgrD3PPRE  = 4

	pllckselrSRC   = 0
	pllckselrDIVM1 = 4
	pllcfgrRGE1    = 2
	pllcfgrVCOSEL1 = 1
	pllcfgrP1EN    = 16
	pllcfgrQ1EN    = 17
	pllcfgrR1EN    = 18
	pll1divrN      = 0
	pll1divrP      = 9
	pll1divrQ      = 16
	pll1divrR      = 24

	gcrBOOT_C2 = 3

	apb4enrSYSCFGEN = 1

	d3crVOS = 14

	ur3BCM4_ADD1     = 16 // Boot address field of the M4 core
	ur3BCM4_ADD1Mask = 0xFFFF

	idcodeDEV_ID     = 0
	idcodeDEV_IDMask = 0xFFF
)

// Device ID of the STM32H745/H747/H755/H757 family.
const devID = 0x450
