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

/*

Package dualcore manages the boot of the two cores of the ST STM32H745/H747
(https://www.st.com/en/microcontrollers-microprocessors/stm32h747-757.html)
The commonly available product with this part is the STM32H747I-DISCO board.

The part includes a Cortex-M7 core that starts from reset, and a Cortex-M4 core
that is held in reset until the M7 core releases it. Before the release, the M7 core
configures the clock tree, writes a small handoff block into D3 SRAM describing the
clocks, and programs the M4 boot address. The M4 core reads the handoff block once
released, rather than reconfiguring the clocks itself.

The registers and SRAM are accessed through a memory mapped view, either mapped
from a physical memory device (see Open), or simulated in host memory (see NewSim)
so that both cores can be run as goroutines e.g:

  b := &dualcore.Board{Dev: dualcore.NewSim(), Entry: 0x08100000}
  b.Secondary = func(p *dualcore.Peripherals, ex *dualcore.Executor) error {
      led, err := p.Output(dualcore.PK7, dualcore.High, dualcore.SpeedLow)
      if err != nil {
          return err
      }
      ex.Spawn(dualcore.Blink(led, 250*time.Millisecond))
      return nil
  }
  err := b.Run(ctx)

Each core runs a cooperative Executor, where tasks only give up the core while
waiting in Executor.Sleep.

*/
package dualcore
