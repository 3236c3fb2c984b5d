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
	"io"
)

// buffer is a byte array such as a window of SRAM or a staging area for it.
type buffer []byte

// Open returns a Reader/Writer positioned at the start of the buffer.
func (b buffer) Open() *bufferIO {
	return &bufferIO{data: b}
}

// words returns the buffer as 32 bit words in the byte order given.
func (b buffer) words(order interface{ Uint32([]byte) uint32 }) []uint32 {
	w := make([]uint32, len(b)/4)
	for i := range w {
		w[i] = order.Uint32(b[i*4:])
	}
	return w
}

// bufferIO implements various io interfaces over a buffer.
// Transfers that reach the end of the buffer are truncated and return io.EOF.
type bufferIO struct {
	data []byte
	pos  int
}

// Write copies the byte slice into the buffer
func (r *bufferIO) Write(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(r.data[r.pos:], p)
	r.pos += n
	if n != len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *bufferIO) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	if n != len(p) {
		return n, io.EOF
	}
	return n, nil
}
