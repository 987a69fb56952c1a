/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package asynchttp implements the per-request state machine and
// request-group deadline logic of spec.md §4.C9, driven entirely by
// jobs posted to a scheduler.Scheduler rather than goroutine-per-request
// blocking I/O, so every edge (connect/send/read) is an accounted unit
// of scheduler work. Endpoint dialing follows the Network vocabulary of
// _examples/nabbar-golib/httpcli/network.go; request execution is
// structured as a method on a per-request type the way
// _examples/nabbar-golib/httpcli/http.go structures Client.Do.
package asynchttp

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/RolandTaverner/PraeTor-sub000/pool"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
)

// State is one point in a Request's lifecycle (spec.md §4.C9).
type State uint8

const (
	Idle State = iota
	Connecting
	Sending
	Reading
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Connecting:
		return "Connecting"
	case Sending:
		return "Sending"
	case Reading:
		return "Reading"
	case Done:
		return "Done"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Desc is the tuple of (outbound request, destination endpoint,
// keep-alive flag) spec.md §3 "RequestDesc" names.
type Desc struct {
	Req       *http.Request
	Endpoint  pool.Endpoint
	KeepAlive bool
}

// Result is the tuple of (endpoint, originating request,
// response-or-nil, error-or-ok) spec.md §3 "RequestResult" names.
type Result struct {
	Endpoint pool.Endpoint
	Req      *http.Request
	Resp     *http.Response
	Err      error
}

// Request drives one Desc through Idle -> Connecting -> Sending ->
// Reading -> Done, with Cancelled absorbing any later edge.
type Request struct {
	mu        sync.Mutex
	state     State
	cancelled bool
	conn      *pool.Connection

	desc  Desc
	pool  *pool.Pool
	sched *scheduler.Scheduler

	retried bool
	onDone  func(Result)
}

// NewRequest builds a Request bound to p and sched. onDone fires
// exactly once, from a scheduler worker.
func NewRequest(desc Desc, p *pool.Pool, sched *scheduler.Scheduler, onDone func(Result)) *Request {
	return &Request{desc: desc, pool: p, sched: sched, onDone: onDone}
}

// Start posts the Idle->Connecting edge to the scheduler.
func (r *Request) Start() {
	r.sched.Post(r.stepConnect)
}

// Cancel atomically marks the request cancelled. Any in-flight or
// future connection is closed so pending I/O unblocks; the next edge
// to observe the flag completes the request with requestCanceled.
func (r *Request) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	conn := r.conn
	r.mu.Unlock()

	if conn.IsOpen() {
		_ = conn.CloseConn()
	}
}

func (r *Request) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

func (r *Request) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// State reports the request's current lifecycle point.
func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Request) finish(resp *http.Response, err error) {
	r.setState(Done)
	r.onDone(Result{Endpoint: r.desc.Endpoint, Req: r.desc.Req, Resp: resp, Err: err})
}

func (r *Request) finishCancelled() {
	r.setState(Cancelled)
	r.onDone(Result{Endpoint: r.desc.Endpoint, Req: r.desc.Req, Err: Err(RequestCanceled, "")})
}

// stepConnect implements Idle -> Connecting.
func (r *Request) stepConnect() {
	if r.isCancelled() {
		r.finishCancelled()
		return
	}
	r.setState(Connecting)

	conn := r.pool.Get(r.desc.Endpoint, r.desc.KeepAlive)
	if !conn.IsOpen() {
		nc, err := net.Dial(conn.Endpoint.Network, conn.Endpoint.Address)
		if err != nil {
			r.finish(nil, err)
			return
		}
		conn.Conn = nc
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	r.sched.Post(r.stepSend)
}

// stepSend implements Connecting -> Sending: overwrite the Host and
// Connection headers, then write the request to the wire.
func (r *Request) stepSend() {
	if r.isCancelled() {
		r.releaseConn(pool.Close)
		r.finishCancelled()
		return
	}
	r.setState(Sending)

	r.desc.Req.Host = r.desc.Endpoint.Address
	if r.desc.KeepAlive {
		r.desc.Req.Header.Set("Connection", "Keep-Alive")
	} else {
		r.desc.Req.Header.Set("Connection", "close")
	}

	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	if err := r.desc.Req.Write(conn.Conn); err != nil {
		if !r.retried && isGenericSendError(err) {
			r.retryFromScratch()
			return
		}
		r.releaseConn(pool.Close)
		r.finish(nil, err)
		return
	}

	r.sched.Post(r.stepRead)
}

// stepRead implements Sending -> Reading: attach a response reader to
// the connection and read the full response.
func (r *Request) stepRead() {
	if r.isCancelled() {
		r.releaseConn(pool.Close)
		r.finishCancelled()
		return
	}
	r.setState(Reading)

	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	resp, err := http.ReadResponse(bufio.NewReader(conn.Conn), r.desc.Req)
	if err != nil {
		if !r.retried && r.desc.KeepAlive && err == io.EOF {
			r.retryFromScratch()
			return
		}
		r.releaseConn(pool.Close)
		r.finish(nil, err)
		return
	}

	lifecycle := pool.Close
	if r.desc.KeepAlive && !resp.Close {
		lifecycle = pool.KeepAlive
	}
	r.releaseConn(lifecycle)
	r.finish(resp, nil)
}

// retryFromScratch implements the one-shot retry of spec.md §4.C9:
// discard the connection and re-enter Idle exactly once.
func (r *Request) retryFromScratch() {
	r.retried = true
	r.releaseConn(pool.Close)
	r.setState(Idle)
	r.sched.Post(r.stepConnect)
}

func (r *Request) releaseConn(lifecycle pool.Lifecycle) {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn == nil {
		return
	}
	conn.Lifecycle = lifecycle
	// CapacityExceeded just means conn was closed instead of cached;
	// the connection is already gone either way, so there's nothing
	// for a single request to do about it.
	_ = r.pool.Put(conn)
}

// isGenericSendError reports the specific generic-category I/O error
// spec.md §4.C9 singles out for retry-on-send, as opposed to a broad
// "any transient error" policy (spec.md §9 open question, resolved to
// preserve the narrow original predicate).
func isGenericSendError(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	return asOpErr(err, &opErr) && opErr.Op == "write"
}

func asOpErr(err error, target **net.OpError) bool {
	for err != nil {
		if oe, ok := err.(*net.OpError); ok {
			*target = oe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// pendingGuard is a small atomic counter helper. RequestManager does
// not use it: it keeps its pending count as a plain int under its
// mutex.
type pendingGuard struct {
	n int64
}

func (g *pendingGuard) add(delta int64) int64 {
	return atomic.AddInt64(&g.n, delta)
}
