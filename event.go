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
	"fmt"
	"sync"
	"time"
)

// Event handles waiting on a one-shot hardware condition, such as the
// release of the secondary core. The condition is polled until it
// becomes true, after which the event stays signalled.
type Event struct {
	handlerRegistered bool
	done              chan struct{}
	stopChan          chan chan bool
	quit              chan struct{}
	closeOnce         sync.Once
}

// newEvent starts polling the condition at the interval given.
func newEvent(cond func() bool, poll time.Duration) *Event {
	e := &Event{
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}
	go e.poller(cond, poll)
	return e
}

// Close stops polling the condition and removes any handler.
func (e *Event) Close() {
	e.ClearHandler()
	e.closeOnce.Do(func() {
		close(e.quit)
	})
}

// SetHandler installs an asynch handler that is invoked once the event is signalled.
func (e *Event) SetHandler(f func()) {
	if e.handlerRegistered {
		e.ClearHandler()
	}
	e.handlerRegistered = true
	e.stopChan = make(chan chan bool)
	go e.dispatcher(f)
}

// ClearHandler removes any currently installed handler for this event
func (e *Event) ClearHandler() {
	if e.handlerRegistered {
		// Create a channel to be used to signal when the handler has exited.
		c := make(chan bool)
		e.stopChan <- c
		// Once the handler receives the stop channel, a value is signalled back
		// to indicate that the handler has exited.
		<-c
		e.handlerRegistered = false
	}
}

// Wait returns once the event has been signalled, or the context is done.
// This cannot be used if a handler has been installed on this event.
func (e *Event) Wait(ctx context.Context) error {
	if e.handlerRegistered {
		return fmt.Errorf("Handler registered, cannot use Wait")
	}
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitTimeout waits for the event, returning if the timeout expires.
// This cannot be used if a handler has been installed on this event e.g
//
//	ok, err := e.WaitTimeout(time.Second)
//	if ok {
//		// Event signalled
//	} else {
//		// Timed out
//	}
func (e *Event) WaitTimeout(tout time.Duration) (bool, error) {
	if e.handlerRegistered {
		return false, fmt.Errorf("Handler registered, cannot use WaitTimeout")
	}
	timer := time.NewTimer(tout)
	defer timer.Stop()
	select {
	case <-e.done:
		return true, nil
	case <-timer.C:
		return false, nil
	}
}

// Signalled returns true if the event has been signalled.
func (e *Event) Signalled() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// poller checks the condition until it is true or the event is closed.
func (e *Event) poller(cond func() bool, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		if cond() {
			close(e.done)
			return
		}
		select {
		case <-e.quit:
			return
		case <-ticker.C:
		}
	}
}

// dispatcher is a shim between the event and the
// external handler that will be invoked when it is signalled.
// A stop channel is used to indicate when the handler should terminate.
func (e *Event) dispatcher(f func()) {
	select {
	case c := <-e.stopChan:
		// Send a value back to signal that the handler has terminated.
		c <- true
	case <-e.done:
		f()
		// Wait to be stopped, so that ClearHandler does not block.
		c := <-e.stopChan
		c <- true
	}
}
