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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func blinkProgram(pin Pin, interval time.Duration) Program {
	return func(p *Peripherals, ex *Executor) error {
		o, err := p.Output(pin, High, SpeedLow)
		if err != nil {
			return err
		}
		ex.Spawn(Blink(o, interval))
		return nil
	}
}

func TestBoardHandoffOrdering(t *testing.T) {
	d := NewSim()
	rec := &recorder{}
	d.SetTracer(rec.trace)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Stop once the secondary has been running for a while; the
	// primary may have looped many times by then.
	ft := &fakeTimer{}
	blue := 0
	ft.hook = func() {
		if ft.waits[len(ft.waits)-1] == 250*time.Millisecond {
			if blue++; blue == 10 {
				cancel()
			}
		}
	}
	var secondary *Peripherals
	b := &Board{
		Dev:     d,
		Config:  pll400(),
		Entry:   0x08100000,
		Timer:   ft,
		Primary: blinkProgram(PK5, 500*time.Millisecond),
		Secondary: func(p *Peripherals, ex *Executor) error {
			secondary = p
			return blinkProgram(PK7, 250*time.Millisecond)(p, ex)
		},
	}
	require.ErrorIs(t, b.Run(ctx), context.Canceled)
	require.NotNil(t, secondary)
	require.Equal(t, CM4, secondary.Core)
	require.EqualValues(t, 400e6, secondary.Clocks.SysClk)
	require.Equal(t, uint32(0x0810), d.rd(rSYSCFG_UR3)>>16)

	lastBlockWrite, release := -1, -1
	var blockReads []int
	for i, a := range rec.accesses() {
		switch {
		case a.Write && inHandoff(a.Addr):
			require.Equal(t, -1, release, "handoff written after release")
			lastBlockWrite = i
		case a.Write && a.Addr == rRCC_GCR && a.Value&(1<<gcrBOOT_C2) != 0:
			if release < 0 {
				release = i
			}
		case !a.Write && inHandoff(a.Addr):
			blockReads = append(blockReads, i)
		}
	}
	require.GreaterOrEqual(t, lastBlockWrite, 0)
	require.Greater(t, release, lastBlockWrite)
	require.Len(t, blockReads, HandoffSize/4)
	for _, r := range blockReads {
		require.Greater(t, r, release)
	}
}

func TestBoardBadConfig(t *testing.T) {
	d := NewSim()
	b := &Board{
		Dev:       d,
		Config:    NewConfig().SysClk(SysHSE),
		Entry:     0x08100000,
		Timer:     &fakeTimer{},
		Secondary: blinkProgram(PK7, 250*time.Millisecond),
	}
	err := b.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "cm7: clock config")
	require.False(t, d.Secondary().IsReleased())
}

func TestBoardUnalignedEntry(t *testing.T) {
	d := NewSim()
	var secondary *Peripherals
	b := &Board{
		Dev:   d,
		Entry: 0x08100100,
		Secondary: func(p *Peripherals, ex *Executor) error {
			secondary = p
			return nil
		},
	}
	require.NoError(t, b.Run(context.Background()))
	require.NotNil(t, secondary)
	require.True(t, d.Secondary().IsReleased())
	require.Equal(t, uint32(0x08100000), d.Secondary().BootAddress())
}

func TestInitPrimary(t *testing.T) {
	d := NewSim()
	p, err := InitPrimary(d, DefaultConfig, 0x08100000)
	require.NoError(t, err)
	require.Equal(t, CM7, p.Core)
	require.True(t, d.Secondary().IsReleased())
	require.Equal(t, uint32(0x08100000), d.Secondary().BootAddress())
	require.ErrorIs(t, p.BootSecondary(0x08100000), ErrAlreadyReleased)

	sp, err := InitSecondary(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, p.Clocks, sp.Clocks)
	require.Error(t, sp.BootSecondary(0x08100000))

	d = NewSim()
	_, err = InitPrimary(d, DefaultConfig, 0x08100001)
	require.NoError(t, err)
	require.Equal(t, uint32(0x08100000), d.Secondary().BootAddress())
}

func TestInitSecondaryNotPublished(t *testing.T) {
	d := NewSim()
	// Released without the block being written.
	require.NoError(t, d.Secondary().Release())
	_, err := InitSecondary(context.Background(), d)
	require.ErrorIs(t, err, ErrNotPublished)
}

func TestInitSecondaryWaitsForRelease(t *testing.T) {
	d := NewSim()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := InitSecondary(ctx, d)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
