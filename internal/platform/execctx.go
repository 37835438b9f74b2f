// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package platform

import (
	"sync"

	"github.com/apex/log"
)

// ExecContext tracks work that is allowed to finish after the response has
// been returned. It is the deferred-work half of the platform descriptor.
type ExecContext struct {
	wg sync.WaitGroup
}

func NewExecContext() *ExecContext {
	return &ExecContext{}
}

// WaitUntil registers fn to run in the background. The caller gets no
// completion signal and no error: a failed deferred task is logged at debug
// and otherwise dropped. This is an at-most-once, unconfirmed write
// semantic; callers that need confirmation must not defer.
func (c *ExecContext) WaitUntil(fn func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(); err != nil {
			log.Debugf("deferred task failed: %v", err)
		}
	}()
}

// Wait blocks until all registered work has finished. Servers call this
// before tearing down a request scope; tests call it to observe deferred
// writes.
func (c *ExecContext) Wait() {
	c.wg.Wait()
}
