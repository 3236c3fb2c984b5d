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
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Timer provides the timed waits used by tasks.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

type systemTimer struct{}

func (systemTimer) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SystemTimer waits using the host clock.
var SystemTimer Timer = systemTimer{}

// Task is one cooperative task running on a core.
type Task func(ctx context.Context, ex *Executor) error

// Executor is the single threaded cooperative scheduler of one core.
// Only one task runs at a time; a task gives up the core only while
// waiting in Sleep.
type Executor struct {
	Name  string
	Timer Timer

	tasks []Task
	core  chan struct{} // Holds a value while a task owns the core
}

// NewExecutor creates an executor for the named core.
// If t is nil, SystemTimer is used.
func NewExecutor(name string, t Timer) *Executor {
	if t == nil {
		t = SystemTimer
	}
	return &Executor{Name: name, Timer: t, core: make(chan struct{}, 1)}
}

// Spawn adds tasks to be started by Run.
func (e *Executor) Spawn(tasks ...Task) {
	e.tasks = append(e.tasks, tasks...)
}

// Run starts the tasks and waits for them to complete.
// The first task to fail cancels the remaining tasks, and its error is returned.
func (e *Executor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range e.tasks {
		g.Go(func() error {
			e.core <- struct{}{}
			defer func() { <-e.core }()
			glog.V(1).Infof("%s: task %d started", e.Name, i)
			err := t(ctx, e)
			glog.V(1).Infof("%s: task %d exited: %v", e.Name, i, err)
			return err
		})
	}
	return g.Wait()
}

// Sleep gives up the core for the duration given.
// Sleep may only be called from a task started by Run, since it releases
// the core held by the calling task.
func (e *Executor) Sleep(ctx context.Context, d time.Duration) error {
	<-e.core
	defer func() { e.core <- struct{}{} }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.Timer.After(d):
		return nil
	}
}
