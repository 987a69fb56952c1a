/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package pool implements the endpoint-keyed connection cache of
// spec.md §4.C8. Grounded on the connect/close lifecycle of
// _examples/nabbar-golib/socket/client (a net.Conn wrapper exposing
// Open/Close/IsOpen), generalized to a capacity-bounded multi-map.
package pool

import (
	"net"
	"sync"
)

// Lifecycle decides whether a Connection is eligible to be returned to
// the pool once a request completes using it.
type Lifecycle uint8

const (
	KeepAlive Lifecycle = iota
	Close
)

// Endpoint identifies a pool bucket: a destination host:port pair.
type Endpoint struct {
	Network string
	Address string
}

// Connection is owned by the pool while idle and by a single
// in-flight request while checked out (spec.md §4 GLOSSARY
// "Connection"). Conn is nil until the first connect attempt.
type Connection struct {
	Endpoint  Endpoint
	Lifecycle Lifecycle
	Conn      net.Conn
}

// IsOpen reports whether the underlying net.Conn has been established.
func (c *Connection) IsOpen() bool {
	return c != nil && c.Conn != nil
}

// CloseConn closes the underlying net.Conn, if any.
func (c *Connection) CloseConn() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	err := c.Conn.Close()
	c.Conn = nil
	return err
}

// Pool is a capacity-bounded, endpoint-keyed cache of idle keep-alive
// connections (spec.md §4.C8). The bound is a total count across all
// endpoints, not per-endpoint.
type Pool struct {
	mu       sync.Mutex
	capacity int
	idle     map[Endpoint][]*Connection
	count    int
}

// New returns a Pool that holds at most capacity idle connections
// across all endpoints. capacity <= 0 means unbounded.
func New(capacity int) *Pool {
	return &Pool{
		capacity: capacity,
		idle:     make(map[Endpoint][]*Connection),
	}
}

// Get returns an idle connection for endpoint if keepAlive is true and
// one is cached; otherwise it returns a fresh, not-yet-open
// Connection carrying the requested lifecycle.
func (p *Pool) Get(endpoint Endpoint, keepAlive bool) *Connection {
	p.mu.Lock()
	defer p.mu.Unlock()

	if keepAlive {
		if bucket := p.idle[endpoint]; len(bucket) > 0 {
			conn := bucket[len(bucket)-1]
			p.idle[endpoint] = bucket[:len(bucket)-1]
			p.count--
			return conn
		}
	}

	lc := Close
	if keepAlive {
		lc = KeepAlive
	}
	return &Connection{Endpoint: endpoint, Lifecycle: lc}
}

// Put returns conn to the pool, or closes it, per spec.md §4.C8:
// closed outright if its lifecycle is Close or it isn't open (no
// error — this is the normal not-keep-alive path); closed with
// CapacityExceeded if the pool is at capacity; closed-and-evicted if
// the exact same Connection object is already recorded for its
// endpoint (invariant repair against a double-Put, no error);
// otherwise cached. The caller isn't required to act on a non-nil
// error — conn is always left closed either way — but it distinguishes
// "discarded because at capacity" from the other, expected discards.
func (p *Pool) Put(conn *Connection) error {
	if conn == nil {
		return nil
	}
	if conn.Lifecycle == Close || !conn.IsOpen() {
		_ = conn.CloseConn()
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capacity > 0 && p.count >= p.capacity {
		_ = conn.CloseConn()
		return Err(CapacityExceeded, conn.Endpoint.Address)
	}

	bucket := p.idle[conn.Endpoint]
	for i, c := range bucket {
		if c == conn {
			p.idle[conn.Endpoint] = append(bucket[:i], bucket[i+1:]...)
			p.count--
			_ = conn.CloseConn()
			return nil
		}
	}

	p.idle[conn.Endpoint] = append(bucket, conn)
	p.count++
	return nil
}

// Len returns the total number of idle connections currently cached.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// CloseAll closes every idle connection and empties the pool. Intended
// for shutdown.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for ep, bucket := range p.idle {
		for _, c := range bucket {
			_ = c.CloseConn()
		}
		delete(p.idle, ep)
	}
	p.count = 0
}
