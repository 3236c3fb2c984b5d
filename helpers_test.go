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
	"context"
	"sync"
	"time"
)

// fakeTimer fires immediately and records the requested durations.
// Once limit waits have been requested, cancel is called.
type fakeTimer struct {
	mu     sync.Mutex
	waits  []time.Duration
	limit  int
	cancel context.CancelFunc
	hook   func()
}

func (f *fakeTimer) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	f.waits = append(f.waits, d)
	if f.hook != nil {
		f.hook()
	}
	if f.limit > 0 && len(f.waits) >= f.limit && f.cancel != nil {
		f.cancel()
	}
	f.mu.Unlock()
	c := make(chan time.Time, 1)
	c <- time.Time{}
	return c
}

func (f *fakeTimer) recorded() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

// recorder collects device accesses.
type recorder struct {
	mu  sync.Mutex
	acc []Access
}

func (r *recorder) trace(a Access) {
	r.mu.Lock()
	r.acc = append(r.acc, a)
	r.mu.Unlock()
}

func (r *recorder) accesses() []Access {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Access(nil), r.acc...)
}

func inHandoff(addr uintptr) bool {
	return addr >= HandoffAddr && addr < HandoffAddr+HandoffSize
}
