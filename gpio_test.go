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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePin(t *testing.T) {
	p, err := ParsePin("PK7")
	require.NoError(t, err)
	require.Equal(t, PK7, p)
	require.Equal(t, "PK7", p.String())
	p, err = ParsePin("PA15")
	require.NoError(t, err)
	require.Equal(t, Pin{'A', 15}, p)
	for _, s := range []string{"", "K7", "PK", "PKx", "PL1", "PA16", "PA-1"} {
		_, err := ParsePin(s)
		require.Error(t, err, s)
	}
}

func TestOutput(t *testing.T) {
	d := NewSim()
	port := uintptr(gpioBase + ('K'-'A')*portSize)
	o, err := NewOutput(d, PK7, High, SpeedHigh)
	require.NoError(t, err)
	require.Equal(t, "PK7", o.String())
	require.True(t, o.IsSetHigh())
	require.Equal(t, uint32(1<<14), d.rd(port+rGPIO_MODER))
	require.Equal(t, uint32(2<<14), d.rd(port+rGPIO_OSPEEDR))
	o.SetLow()
	require.False(t, o.IsSetHigh())
	o.Toggle()
	require.True(t, o.IsSetHigh())
	require.Equal(t, uint32(1<<7), d.rd(port+rGPIO_ODR))

	// A second pin on the same port is independent.
	o2, err := NewOutput(d, PK5, Low, SpeedLow)
	require.NoError(t, err)
	require.Equal(t, uint32(1<<14|1<<10), d.rd(port+rGPIO_MODER))
	o2.SetHigh()
	o.SetLow()
	require.Equal(t, uint32(1<<5), d.rd(port+rGPIO_ODR))

	_, err = NewOutput(d, Pin{'Z', 1}, Low, SpeedLow)
	require.Error(t, err)
}
