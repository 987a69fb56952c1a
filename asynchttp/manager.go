/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package asynchttp

import (
	"sync"
	"time"

	"github.com/RolandTaverner/PraeTor-sub000/pool"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
)

// RequestManager owns a group of Requests sharing one deadline
// (spec.md §4.C9 "RequestManager").
type RequestManager struct {
	mu      sync.Mutex
	sched   *scheduler.Scheduler
	pool    *pool.Pool
	running bool

	requests  []*Request
	results   []Result
	finalized []bool
	pending   int
	timer     *scheduler.Timer
	timedOut  bool
	onDone    func([]Result)
}

// NewRequestManager returns a RequestManager backed by sched and p.
func NewRequestManager(sched *scheduler.Scheduler, p *pool.Pool) *RequestManager {
	return &RequestManager{sched: sched, pool: p}
}

// Start submits descs as a single group with a shared deadline.
// Refuses to re-start a manager already running (spec.md §4.C9).
func (m *RequestManager) Start(descs []Desc, timeout time.Duration, onDone func([]Result)) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return Err(InternalError, "request manager already running")
	}
	m.running = true
	m.onDone = onDone
	m.results = make([]Result, len(descs))
	m.requests = make([]*Request, len(descs))
	m.finalized = make([]bool, len(descs))
	m.pending = len(descs)
	m.mu.Unlock()

	if len(descs) == 0 {
		m.finishLocked()
		return nil
	}

	if timeout > 0 {
		m.mu.Lock()
		m.timer = m.sched.PostTimer(timeout, m.onTimer)
		m.mu.Unlock()
	}

	for i, d := range descs {
		idx := i
		req := NewRequest(d, m.pool, m.sched, func(res Result) { m.onChildDone(idx, res) })
		m.mu.Lock()
		m.requests[idx] = req
		m.mu.Unlock()
		req.Start()
	}
	return nil
}

// onChildDone records one child's result. When the pending count
// reaches zero it cancels any armed timer and fires group completion.
func (m *RequestManager) onChildDone(idx int, res Result) {
	m.mu.Lock()
	if m.finalized[idx] {
		m.mu.Unlock()
		return
	}
	m.finalized[idx] = true
	m.results[idx] = res
	m.pending--
	drained := m.pending <= 0
	timer := m.timer
	m.mu.Unlock()

	if drained {
		if timer != nil {
			timer.Cancel()
		}
		m.finishLocked()
	}
}

// onTimer implements the group-deadline edge: mark every still-pending
// child timed out, cancel it, then fire group completion exactly once.
func (m *RequestManager) onTimer(cancelled bool) {
	if cancelled {
		return
	}

	m.mu.Lock()
	if m.timedOut || m.pending <= 0 {
		m.mu.Unlock()
		return
	}
	m.timedOut = true

	var toCancel []*Request
	for i, finalized := range m.finalized {
		if !finalized {
			m.finalized[i] = true
			m.results[i] = Result{
				Endpoint: m.requests[i].desc.Endpoint,
				Req:      m.requests[i].desc.Req,
				Err:      Err(RequestTimedOut, ""),
			}
			toCancel = append(toCancel, m.requests[i])
		}
	}
	m.pending = 0
	m.mu.Unlock()

	for _, req := range toCancel {
		req.Cancel()
	}
	m.finishLocked()
}

func (m *RequestManager) finishLocked() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	results := append([]Result(nil), m.results...)
	onDone := m.onDone
	m.mu.Unlock()

	if onDone != nil {
		onDone(results)
	}
}
