// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shutdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifierBroadcastIsIdempotent(t *testing.T) {
	n := New()
	assert.False(t, n.IsShutdown())

	n.Broadcast()
	n.Broadcast()
	assert.True(t, n.IsShutdown())

	select {
	case <-n.C():
	default:
		t.Fatal("expected C() to be closed")
	}
}

func TestNotifierConcurrentBroadcast(t *testing.T) {
	n := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Broadcast()
		}()
	}
	wg.Wait()
	assert.True(t, n.IsShutdown())
}

func TestDrainOrdering(t *testing.T) {
	notifier := New()
	var drain sync.WaitGroup

	handlerExited := make(chan struct{})
	drain.Add(1)
	go func() {
		defer drain.Done()
		<-notifier.C()
		close(handlerExited)
	}()

	notifier.Broadcast()

	select {
	case <-handlerExited:
	case <-time.After(time.Second):
		t.Fatal("expected handler to observe shutdown")
	}

	done := make(chan struct{})
	go func() {
		drain.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected drain.Wait to return after handler exits")
	}
}
