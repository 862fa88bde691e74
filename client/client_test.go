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

package client

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/redline/resp"
	"github.com/packetd/redline/server"
	"github.com/packetd/redline/shutdown"
	"github.com/packetd/redline/store"
)

func startTestServer(t *testing.T) (addr string, stop func()) {
	t.Helper()

	s := store.New()
	config := server.DefaultConfig()
	config.Address = "127.0.0.1:0"

	l, err := server.NewListener(config, s)
	require.NoError(t, err)

	notifier := shutdown.New()
	var drain sync.WaitGroup

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = l.Run(notifier, &drain)
	}()

	stop = func() {
		notifier.Broadcast()
		drain.Wait()
		<-runDone
		s.ShutdownPurgeTask()
	}
	return l.Addr().String(), stop
}

func TestClientPing(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	c, err := Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Ping(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("PONG"), v)

	v, err = c.Ping([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v)
}

func TestClientSetGet(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	c, err := Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("key", []byte("value")))

	v, ok, err := c.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), v)

	_, ok, err = c.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientSetExpires(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	c, err := Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetExpires("key", []byte("value"), 30*time.Millisecond))

	_, ok, err := c.Get("key")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok, _ := c.Get("key")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestClientPublishSubscribe(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	sub, err := Connect(addr)
	require.NoError(t, err)
	defer sub.Close()

	subscriber, err := sub.Subscribe([]string{"news"})
	require.NoError(t, err)
	assert.Equal(t, []string{"news"}, subscriber.Subscribed())

	pub, err := Connect(addr)
	require.NoError(t, err)
	defer pub.Close()

	n, err := pub.Publish("news", []byte("breaking"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	msg, ok, err := subscriber.NextMessage()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "news", msg.Channel)
	assert.Equal(t, []byte("breaking"), msg.Content)
}

func TestClientUnsubscribeAll(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	c, err := Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	subscriber, err := c.Subscribe([]string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, subscriber.Unsubscribe(nil))
	assert.Empty(t, subscriber.Subscribed())
}

func TestSubscribeRequiresChannels(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	c, err := Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Subscribe(nil)
	assert.Error(t, err)
}

func TestValidateAck(t *testing.T) {
	ok := resp.NewArray(resp.NewBulk([]byte("subscribe")), resp.NewBulk([]byte("news")), resp.NewInteger(1))
	assert.NoError(t, validateAck("subscribe", "news", ok))

	wrongChannel := resp.NewArray(resp.NewBulk([]byte("subscribe")), resp.NewBulk([]byte("other")), resp.NewInteger(1))
	assert.Error(t, validateAck("subscribe", "news", wrongChannel))

	wrongShape := resp.NewSimple("OK")
	assert.Error(t, validateAck("subscribe", "news", wrongShape))
}
