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
	"os"
	"strings"
	"sync/atomic"
	"unsafe"

	"github.com/golang/glog"
	"github.com/usbarmory/tamago/bits"
	"golang.org/x/sys/unix"
)

// DefaultMemDevice is the physical memory device mapped by Open.
const DefaultMemDevice = "/dev/mem"

// regions lists the windows of the address space that are used.
var regions = []struct {
	base, size uintptr
}{
	{sram4Base, sram4Size},
	{gpioBase, gpioSize},
	{syscfgBase, syscfgSize},
	{rccBase, rccSize},
	{pwrBase, pwrSize},
	{dbgmcuBase, dbgmcuSize},
}

// window is one mapped region of the address space.
type window struct {
	base    uintptr
	mem     []byte
	mapping []byte // Page aligned mapping, nil when simulated
}

// Access describes a single 32 bit register or memory access.
type Access struct {
	Write bool
	Addr  uintptr
	Value uint32
}

func (a Access) String() string {
	if a.Write {
		return fmt.Sprintf("wr 0x%08x <- 0x%08x", a.Addr, a.Value)
	}
	return fmt.Sprintf("rd 0x%08x -> 0x%08x", a.Addr, a.Value)
}

// Device is a memory mapped view of the registers and shared SRAM.
type Device struct {
	memFile *os.File
	windows []*window
	sim     bool
	tracer  func(Access)
	idcode  uint32

	SharedRam buffer           // D3 SRAM byte array
	Order     binary.ByteOrder // encoding/binary Order for reading/writing.
}

// Single instance of a mapped device.
var dev *Device

// Open maps the register windows from the physical memory device path.
// Only one device may be open at a time.
func Open(path string) (*Device, error) {
	if dev != nil {
		return nil, ErrAlreadyOpen
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	d := &Device{memFile: f, Order: binary.LittleEndian}
	pg := uintptr(os.Getpagesize())
	for _, r := range regions {
		start := r.base &^ (pg - 1)
		offs := r.base - start
		length := (offs + r.size + pg - 1) &^ (pg - 1)
		m, err := unix.Mmap(int(f.Fd()), int64(start), int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			d.unmap()
			return nil, fmt.Errorf("%s: map 0x%08x: %v", path, r.base, err)
		}
		d.windows = append(d.windows, &window{base: r.base, mem: m[offs : offs+r.size], mapping: m})
	}
	if err := d.identify(); err != nil {
		d.unmap()
		return nil, err
	}
	dev = d
	glog.Infof("Opened %s: %s", path, d.Description())
	return d, nil
}

// NewSim creates a device backed by host memory, with enough of the
// hardware behaviour modelled to boot both cores.
// Any number of simulated devices may exist.
func NewSim() *Device {
	d := &Device{sim: true, Order: binary.LittleEndian}
	for _, r := range regions {
		d.windows = append(d.windows, &window{base: r.base, mem: make([]byte, r.size)})
	}
	// Reset state: revision V, HSI on and ready.
	d.store(rDBGMCU_IDCODE, 0x2003<<16|devID)
	d.store(rRCC_CR, 1<<crHSION|1<<crHSIRDY)
	if err := d.identify(); err != nil {
		panic(err)
	}
	return d
}

// identify checks the device ID and sets up the exported fields.
func (d *Device) identify() error {
	d.idcode = d.rd(rDBGMCU_IDCODE)
	if id := bits.Get(&d.idcode, idcodeDEV_ID, idcodeDEV_IDMask); id != devID {
		return fmt.Errorf("%w: 0x%03x", ErrUnknownDevice, id)
	}
	d.SharedRam = d.window(sram4Base).mem
	return nil
}

// Simulated returns true if the device is backed by host memory.
func (d *Device) Simulated() bool {
	return d.sim
}

// SetTracer installs a function that is called on every register or
// memory access. It must be set before the device is shared between cores.
func (d *Device) SetTracer(f func(Access)) {
	d.tracer = f
}

// Close releases all the resources associated with the device.
func (d *Device) Close() {
	if d.sim {
		return
	}
	d.unmap()
	if dev == d {
		dev = nil
	}
}

func (d *Device) unmap() {
	for _, w := range d.windows {
		if w.mapping != nil {
			unix.Munmap(w.mapping)
		}
	}
	d.windows = nil
	d.memFile.Close()
}

// Description returns a human readable string describing the device
func (d *Device) Description() string {
	var s strings.Builder
	fmt.Fprint(&s, "STM32H745/H747")
	switch d.idcode >> 16 {
	case 0x1001:
		fmt.Fprint(&s, " rev Z")
	case 0x1003:
		fmt.Fprint(&s, " rev Y")
	case 0x2003:
		fmt.Fprint(&s, " rev V")
	default:
		fmt.Fprintf(&s, " rev 0x%04x", d.idcode>>16)
	}
	if d.sim {
		fmt.Fprint(&s, " (simulated)")
	}
	return s.String()
}

// window returns the window containing the address.
func (d *Device) window(addr uintptr) *window {
	for _, w := range d.windows {
		if addr >= w.base && addr < w.base+uintptr(len(w.mem)) {
			return w
		}
	}
	panic(fmt.Sprintf("address 0x%08x is not mapped", addr))
}

// word returns a pointer to the 32 bit word at the address.
func (d *Device) word(addr uintptr) *uint32 {
	w := d.window(addr)
	return (*uint32)(unsafe.Pointer(&w.mem[addr-w.base]))
}

// rd reads one 32 bit word.
func (d *Device) rd(addr uintptr) uint32 {
	v := atomic.LoadUint32(d.word(addr))
	d.trace(Access{Addr: addr, Value: v})
	return v
}

// wr writes one 32 bit word.
func (d *Device) wr(addr uintptr, v uint32) {
	d.trace(Access{Write: true, Addr: addr, Value: v})
	if d.sim {
		v = d.simulate(addr, v)
	}
	d.store(addr, v)
}

// store writes a word without tracing or simulation.
func (d *Device) store(addr uintptr, v uint32) {
	atomic.StoreUint32(d.word(addr), v)
}

// modify applies f to the register value and writes it back.
// Each register is only modified by one core, so this is not atomic.
func (d *Device) modify(addr uintptr, f func(v *uint32)) {
	v := d.rd(addr)
	f(&v)
	d.wr(addr, v)
}

// write copies the 32 bit data to successive addresses.
func (d *Device) write(src []uint32, dst uintptr) {
	for _, c := range src {
		d.wr(dst, c)
		dst += 4
	}
}

// read copies successive words into the 32 bit slice.
func (d *Device) read(src uintptr, dst []uint32) {
	for i := range dst {
		dst[i] = d.rd(src)
		src += 4
	}
}

func (d *Device) trace(a Access) {
	if d.tracer != nil {
		d.tracer(a)
	}
	if glog.V(3) {
		glog.Info(a)
	}
}

// simulate models the hardware response to a register write, returning
// the value to be stored.
func (d *Device) simulate(addr uintptr, v uint32) uint32 {
	switch {
	case addr == rRCC_CR:
		// Oscillators and PLL are ready as soon as they are enabled.
		bits.SetTo(&v, crHSIRDY, bits.Get(&v, crHSION, 1) != 0)
		bits.SetTo(&v, crHSERDY, bits.Get(&v, crHSEON, 1) != 0)
		bits.SetTo(&v, crPLL1RDY, bits.Get(&v, crPLL1ON, 1) != 0)
	case addr == rRCC_CFGR:
		bits.SetN(&v, cfgrSWS, cfgrSWMask, bits.Get(&v, cfgrSW, cfgrSWMask))
	case addr >= gpioBase && addr < gpioBase+gpioSize && (addr-gpioBase)%0x400 == rGPIO_BSRR:
		// Both cores may drive pins on the same port.
		odr := d.word(addr - rGPIO_BSRR + rGPIO_ODR)
		for {
			o := atomic.LoadUint32(odr)
			if atomic.CompareAndSwapUint32(odr, o, (o&^(v>>16))|(v&0xFFFF)) {
				break
			}
		}
		return 0
	}
	return v
}
