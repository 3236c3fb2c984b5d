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
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Device paths.
const (
	drvI2CBase = "/dev/i2c-%d"
)

const ioctlI2CSlave = 0x0703 // I2C_SLAVE from linux/i2c-dev.h

// I2CDev is a Linux I2C bus adapter.
type I2CDev struct {
	mu   sync.Mutex
	f    *os.File
	fd   int
	addr int // Current target address, -1 if none
}

// OpenI2C opens the numbered I2C bus adapter.
func OpenI2C(bus int) (*I2CDev, error) {
	f, err := os.OpenFile(fmt.Sprintf(drvI2CBase, bus), os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &I2CDev{f: f, fd: int(f.Fd()), addr: -1}, nil
}

// Write sends the data to the device at the 7 bit address in one transfer.
func (b *I2CDev) Write(addr uint16, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(addr) != b.addr {
		if err := unix.IoctlSetInt(b.fd, ioctlI2CSlave, int(addr)); err != nil {
			return fmt.Errorf("%s: address 0x%02x: %v", b.f.Name(), addr, err)
		}
		b.addr = int(addr)
	}
	n, err := unix.Write(b.fd, data)
	if err != nil {
		return fmt.Errorf("%s: %v", b.f.Name(), err)
	}
	if n != len(data) {
		return io.ErrShortWrite
	}
	return nil
}

// Close releases the bus adapter.
func (b *I2CDev) Close() error {
	return b.f.Close()
}
