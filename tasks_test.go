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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testBlink(t *testing.T, interval time.Duration) {
	d := NewSim()
	out, err := NewOutput(d, PK7, Low, SpeedLow)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var levels []bool
	ft := &fakeTimer{limit: 10, cancel: cancel}
	ft.hook = func() {
		levels = append(levels, out.IsSetHigh())
	}
	ex := NewExecutor(CM4, ft)
	ex.Spawn(Blink(out, interval))
	require.ErrorIs(t, ex.Run(ctx), context.Canceled)
	waits := ft.recorded()
	require.GreaterOrEqual(t, len(waits), 10)
	for i, w := range waits {
		require.Equal(t, interval, w, "wait %d", i)
	}
	// The output is set high before the first wait, and alternates.
	for i, l := range levels {
		require.Equal(t, i%2 == 0, l, "level before wait %d", i)
	}
}

func TestBlink(t *testing.T) {
	t.Run("secondary", func(t *testing.T) { testBlink(t, 250*time.Millisecond) })
	t.Run("primary", func(t *testing.T) { testBlink(t, 500*time.Millisecond) })
}

func TestPowerUp(t *testing.T) {
	bus := &fakeBus{}
	p := &PMIC{Bus: bus, Addr: 0x33}
	seq := []RegWrite{{0x20, 1}, {0x21, 1}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ft := &fakeTimer{limit: 3, cancel: cancel}
	ex := NewExecutor(CM7, ft)
	ex.Spawn(PowerUp(p, seq, time.Second))
	require.ErrorIs(t, ex.Run(ctx), context.Canceled)
	// Each wait follows a complete sequence.
	require.Len(t, bus.writes, 2*len(ft.recorded()))
	for i, w := range ft.recorded() {
		require.Equal(t, time.Second, w, "wait %d", i)
	}
}

func TestPowerUpFailure(t *testing.T) {
	nack := errors.New("no ack")
	bus := &fakeBus{failAt: 4, err: nack}
	p := &PMIC{Bus: bus, Addr: 0x33}
	seq := []RegWrite{{0x20, 1}, {0x21, 1}}
	ft := &fakeTimer{}
	ex := NewExecutor(CM7, ft)
	ex.Spawn(PowerUp(p, seq, time.Second))
	err := ex.Run(context.Background())
	require.ErrorIs(t, err, nack)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	require.Equal(t, 1, we.Index)
	require.Len(t, ft.recorded(), 1)
}
