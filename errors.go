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
	"errors"
	"fmt"
)

var (
	ErrAlreadyOpen     = errors.New("device already open; must close it first")
	ErrUnknownDevice   = errors.New("unknown device")
	ErrNotPublished    = errors.New("handoff block has not been published")
	ErrAlreadyReleased = errors.New("secondary core already released")
	ErrClockTimeout    = errors.New("clock did not become ready")
)

// WriteError reports the failure of one write in a register sequence.
// Writes after the failing one were not issued.
type WriteError struct {
	Addr  uint16 // Device address
	Index int    // Index of the failed write in the sequence
	Reg   byte
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("i2c 0x%02x: write %d (reg 0x%02x): %v", e.Addr, e.Index, e.Reg, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
