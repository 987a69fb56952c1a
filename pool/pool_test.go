/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package pool_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	liberrors "github.com/RolandTaverner/PraeTor-sub000/errors"
	"github.com/RolandTaverner/PraeTor-sub000/pool"
)

func fakeOpenConn(t *testing.T) net.Conn {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() { _ = c1.Close(); _ = c2.Close() })
	return c1
}

func TestPool_GetMiss_ReturnsFreshConnection(t *testing.T) {
	p := pool.New(4)
	ep := pool.Endpoint{Network: "tcp", Address: "127.0.0.1:9"}

	conn := p.Get(ep, true)
	require.NotNil(t, conn)
	assert.False(t, conn.IsOpen())
	assert.Equal(t, pool.KeepAlive, conn.Lifecycle)
}

func TestPool_Reuse_SameConnectionObject(t *testing.T) {
	p := pool.New(4)
	ep := pool.Endpoint{Network: "tcp", Address: "127.0.0.1:9"}

	conn := p.Get(ep, true)
	conn.Conn = fakeOpenConn(t)
	require.NoError(t, p.Put(conn))

	assert.Equal(t, 1, p.Len())

	got := p.Get(ep, true)
	assert.Same(t, conn, got)
	assert.Equal(t, 0, p.Len())
}

func TestPool_Put_CloseLifecycle_NotCached(t *testing.T) {
	p := pool.New(4)
	ep := pool.Endpoint{Network: "tcp", Address: "127.0.0.1:9"}

	conn := &pool.Connection{Endpoint: ep, Lifecycle: pool.Close, Conn: fakeOpenConn(t)}
	require.NoError(t, p.Put(conn))

	assert.Equal(t, 0, p.Len())
	assert.False(t, conn.IsOpen())
}

func TestPool_Put_AtCapacity_Closes(t *testing.T) {
	p := pool.New(1)
	ep := pool.Endpoint{Network: "tcp", Address: "127.0.0.1:9"}

	first := &pool.Connection{Endpoint: ep, Lifecycle: pool.KeepAlive, Conn: fakeOpenConn(t)}
	require.NoError(t, p.Put(first))

	second := &pool.Connection{Endpoint: ep, Lifecycle: pool.KeepAlive, Conn: fakeOpenConn(t)}
	err := p.Put(second)

	require.Error(t, err)
	assert.True(t, liberrors.As(err, pool.Category, pool.CapacityExceeded))
	assert.Equal(t, 1, p.Len())
	assert.False(t, second.IsOpen())
}

func TestPool_Put_DoubleInsertSameObject_EvictsAndCloses(t *testing.T) {
	p := pool.New(4)
	ep := pool.Endpoint{Network: "tcp", Address: "127.0.0.1:9"}

	conn := &pool.Connection{Endpoint: ep, Lifecycle: pool.KeepAlive, Conn: fakeOpenConn(t)}
	require.NoError(t, p.Put(conn))
	require.NoError(t, p.Put(conn))

	assert.Equal(t, 0, p.Len())
	assert.False(t, conn.IsOpen())
}
