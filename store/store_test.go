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

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	s := New()
	defer s.ShutdownPurgeTask()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("key", []byte("value"), 0)
	v, ok := s.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), v)
}

func TestSetOverwritesAndClearsExpiry(t *testing.T) {
	s := New()
	defer s.ShutdownPurgeTask()

	s.Set("key", []byte("first"), time.Minute)
	s.Set("key", []byte("second"), 0)

	s.mu.Lock()
	_, exists := s.entries["key"]
	n := len(s.expirations)
	s.mu.Unlock()

	assert.True(t, exists)
	assert.Equal(t, 0, n)
}

func TestExpiredKeysArePurged(t *testing.T) {
	s := New()
	defer s.ShutdownPurgeTask()

	s.Set("key", []byte("value"), 20*time.Millisecond)

	_, ok := s.Get("key")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := s.Get("key")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestPublishSubscribe(t *testing.T) {
	s := New()
	defer s.ShutdownPurgeTask()

	sub := s.Subscribe("news")
	defer s.Unsubscribe(sub)

	n := s.Publish("news", []byte("breaking"))
	assert.Equal(t, 1, n)

	select {
	case msg := <-sub.C():
		assert.Equal(t, []byte("breaking"), msg)
	case <-time.After(time.Second):
		t.Fatal("expected a message")
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	s := New()
	defer s.ShutdownPurgeTask()

	assert.Equal(t, 0, s.Publish("nobody", []byte("hi")))
}

func TestShutdownPurgeTaskStopsSweeper(t *testing.T) {
	s := New()
	s.Set("key", []byte("value"), time.Hour)

	done := make(chan struct{})
	go func() {
		s.ShutdownPurgeTask()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected ShutdownPurgeTask to return")
	}
}
