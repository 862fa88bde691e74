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

package server

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/redline/conn"
	"github.com/packetd/redline/resp"
	"github.com/packetd/redline/shutdown"
	"github.com/packetd/redline/store"
)

func startTestListener(t *testing.T) (addr string, notifier *shutdown.Notifier, drain *sync.WaitGroup, stop func()) {
	return startTestListenerConfig(t, func(*Config) {})
}

func startTestListenerConfig(t *testing.T, tune func(*Config)) (addr string, notifier *shutdown.Notifier, drain *sync.WaitGroup, stop func()) {
	t.Helper()

	s := store.New()
	config := DefaultConfig()
	config.Address = "127.0.0.1:0"
	tune(&config)

	l, err := NewListener(config, s)
	require.NoError(t, err)

	notifier = shutdown.New()
	drain = &sync.WaitGroup{}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = l.Run(notifier, drain)
	}()

	stop = func() {
		notifier.Broadcast()
		drain.Wait()
		<-runDone
		s.ShutdownPurgeTask()
	}
	return l.Addr().String(), notifier, drain, stop
}

func TestListenerPingPong(t *testing.T) {
	addr, _, _, stop := startTestListener(t)
	defer stop()

	netConn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer netConn.Close()

	c := conn.New(netConn)
	require.NoError(t, c.WriteFrame(resp.NewArray(resp.NewBulk([]byte("ping")))))

	f, ok, err := c.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp.NewSimple("PONG"), f)
}

func TestListenerSetGet(t *testing.T) {
	addr, _, _, stop := startTestListener(t)
	defer stop()

	netConn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer netConn.Close()

	c := conn.New(netConn)
	require.NoError(t, c.WriteFrame(resp.NewArray(resp.NewBulk([]byte("set")), resp.NewBulk([]byte("k")), resp.NewBulk([]byte("v")))))
	f, ok, err := c.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp.NewSimple("OK"), f)

	require.NoError(t, c.WriteFrame(resp.NewArray(resp.NewBulk([]byte("get")), resp.NewBulk([]byte("k")))))
	f, ok, err = c.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp.NewBulk([]byte("v")), f)
}

func TestListenerPublishSubscribe(t *testing.T) {
	addr, _, _, stop := startTestListener(t)
	defer stop()

	subConn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer subConn.Close()
	sc := conn.New(subConn)

	require.NoError(t, sc.WriteFrame(resp.NewArray(resp.NewBulk([]byte("subscribe")), resp.NewBulk([]byte("news")))))
	ack, ok, err := sc.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, ack.Elems, 3)
	assert.Equal(t, []byte("subscribe"), ack.Elems[0].Bulk)
	assert.Equal(t, []byte("news"), ack.Elems[1].Bulk)
	assert.Equal(t, uint64(1), ack.Elems[2].Int)

	pubConn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer pubConn.Close()
	pc := conn.New(pubConn)

	require.NoError(t, pc.WriteFrame(resp.NewArray(resp.NewBulk([]byte("publish")), resp.NewBulk([]byte("news")), resp.NewBulk([]byte("breaking")))))
	countFrame, ok, err := pc.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), countFrame.Int)

	msg, ok, err := sc.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, msg.Elems, 3)
	assert.Equal(t, []byte("message"), msg.Elems[0].Bulk)
	assert.Equal(t, []byte("news"), msg.Elems[1].Bulk)
	assert.Equal(t, []byte("breaking"), msg.Elems[2].Bulk)
}

func TestListenerGracefulShutdownDrainsHandlers(t *testing.T) {
	addr, notifier, drain, stop := startTestListener(t)

	netConn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer netConn.Close()

	c := conn.New(netConn)
	require.NoError(t, c.WriteFrame(resp.NewArray(resp.NewBulk([]byte("subscribe")), resp.NewBulk([]byte("news")))))
	_, ok, err := c.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)

	notifier.Broadcast()

	done := make(chan struct{})
	go func() {
		drain.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected drain to complete after shutdown broadcast")
	}

	stop()
}

func TestListenerConnectionCap(t *testing.T) {
	addr, _, _, stop := startTestListenerConfig(t, func(c *Config) { c.MaxConnections = 2 })
	defer stop()

	first, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer first.Close()

	second, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer second.Close()

	for _, nc := range []net.Conn{first, second} {
		c := conn.New(nc)
		require.NoError(t, c.WriteFrame(resp.NewArray(resp.NewBulk([]byte("ping")))))
		f, ok, err := c.ReadFrame()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, resp.NewSimple("PONG"), f)
	}

	// 第三条连接在 TCP 层可以建立 但在有许可空出之前不会被任何处理协程
	// 接手 它发出的请求只能一直挂着
	third, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer third.Close()

	tc := conn.New(third)
	require.NoError(t, tc.WriteFrame(resp.NewArray(resp.NewBulk([]byte("ping")))))

	require.NoError(t, third.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = tc.ReadFrame()
	require.Error(t, err)
	netErr, isNetErr := err.(net.Error)
	require.True(t, isNetErr)
	assert.True(t, netErr.Timeout())

	// 关掉一条在途连接 其处理协程退出时归还许可 第三条连接随之被接手
	require.NoError(t, first.Close())

	require.NoError(t, third.SetReadDeadline(time.Now().Add(2*time.Second)))
	f, ok, err := tc.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp.NewSimple("PONG"), f)
}
