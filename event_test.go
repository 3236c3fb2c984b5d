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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventWait(t *testing.T) {
	var set int32
	ev := newEvent(func() bool { return atomic.LoadInt32(&set) != 0 }, time.Millisecond)
	defer ev.Close()
	require.False(t, ev.Signalled())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, ev.Wait(ctx), context.DeadlineExceeded)
	atomic.StoreInt32(&set, 1)
	require.NoError(t, ev.Wait(context.Background()))
	// Stays signalled.
	atomic.StoreInt32(&set, 0)
	require.NoError(t, ev.Wait(context.Background()))
}

func TestEventHandler(t *testing.T) {
	var set int32
	ev := newEvent(func() bool { return atomic.LoadInt32(&set) != 0 }, time.Millisecond)
	called := make(chan struct{})
	ev.SetHandler(func() { close(called) })
	_, err := ev.WaitTimeout(time.Millisecond)
	require.Error(t, err)
	require.Error(t, ev.Wait(context.Background()))
	atomic.StoreInt32(&set, 1)
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
	ev.Close()
	ok, err := ev.WaitTimeout(time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEventClearHandler(t *testing.T) {
	ev := newEvent(func() bool { return false }, time.Millisecond)
	defer ev.Close()
	ev.SetHandler(func() { t.Error("handler called") })
	ev.ClearHandler()
	ok, err := ev.WaitTimeout(5 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
}
