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

package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishNoSubscribersReturnsZero(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.Publish("nobody", []byte("hi")))
	assert.Equal(t, 0, b.NumSubscribers("nobody"))
}

func TestSubscribePublishDeliversToAll(t *testing.T) {
	b := New()
	s1 := b.Subscribe("chat")
	s2 := b.Subscribe("chat")

	assert.Equal(t, 2, b.Publish("chat", []byte("hello")))

	for _, s := range []*Subscription{s1, s2} {
		select {
		case msg := <-s.C():
			assert.Equal(t, []byte("hello"), msg)
		case <-time.After(time.Second):
			t.Fatal("expected a message")
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	s := b.Subscribe("chat")
	b.Unsubscribe(s)

	assert.Equal(t, 0, b.Publish("chat", []byte("hello")))

	select {
	case <-s.C():
		t.Fatal("did not expect a message after unsubscribing")
	default:
	}
}

func TestTopicPersistsAfterLastUnsubscribe(t *testing.T) {
	b := New()
	s := b.Subscribe("chat")
	b.Unsubscribe(s)

	s2 := b.Subscribe("chat")
	require.NotNil(t, s2)
	assert.Equal(t, 1, b.NumSubscribers("chat"))
}

func TestPublishDropsOldestWhenFull(t *testing.T) {
	b := New()
	s := b.Subscribe("chat")

	for i := 0; i < queueSize+10; i++ {
		b.Publish("chat", []byte{byte(i)})
	}

	assert.Equal(t, uint64(10), s.Lagged())

	first := <-s.C()
	assert.Equal(t, byte(10), first[0])
}

func TestConcurrentPublishIsSafe(t *testing.T) {
	b := New()
	s := b.Subscribe("chat")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				b.Publish("chat", []byte("x"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(8*200), s.Lagged()+uint64(len(s.C())))
}
