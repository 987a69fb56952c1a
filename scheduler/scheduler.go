/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package scheduler implements the elastic worker pool of spec.md
// §4.C7: a FIFO work queue backed by goroutines sized by queue
// pressure, with timed-work scheduling and zombie-worker retirement.
// Grounded on
// _examples/original_source/Tools/WebServer/src/Scheduler.cpp.
package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RolandTaverner/PraeTor-sub000/logger"
)

// growRatio / shrinkRatio are the fixed resize thresholds from the
// original Scheduler.cpp, preserved verbatim per spec.md §9's open
// question rather than generalized.
const (
	growRatio   = 1.5
	shrinkRatio = 0.5
)

type task struct {
	fn   func()
	kill bool
}

// Scheduler is a pool of worker goroutines backed by a single FIFO
// work queue, resized by enqueue pressure (spec.md §4.C7).
type Scheduler struct {
	mu           sync.Mutex
	work         chan task
	workers      int
	pendingKills int
	min          int
	max          int
	pending      int64
	wg           sync.WaitGroup
	log          logger.Logger
}

// New returns a Scheduler with minThreads and maxThreads workers
// (both >= 1, min <= max). It is not started until Start is called.
func New(minThreads, maxThreads int, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.New(logger.InfoLevel)
	}
	if minThreads < 1 {
		minThreads = 1
	}
	if maxThreads < minThreads {
		maxThreads = minThreads
	}
	return &Scheduler{
		work: make(chan task, 256),
		min:  minThreads,
		max:  maxThreads,
		log:  log.WithFields(logger.Fields{"component": "scheduler"}),
	}
}

// Start spins up minThreads workers.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.min; i++ {
		s.addWorkerLocked()
	}
}

// Stop retires every worker and waits for them to drain. The kill
// sentinels queue behind work already posted, so that work and
// in-flight handlers run to completion; work posted behind the
// sentinels is left in the queue and never run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	n := s.workers
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.work <- task{kill: true}
	}
	s.wg.Wait()
}

// Post enqueues fn for execution on a worker. Never blocks the caller
// beyond the channel buffer.
func (s *Scheduler) Post(fn func()) {
	atomic.AddInt64(&s.pending, 1)
	s.checkResize()
	s.work <- task{fn: fn}
}

// Timer is a handle to timed work scheduled via PostTimer.
type Timer struct {
	timer   *time.Timer
	once    sync.Once
	handler func(cancelled bool)
	s       *Scheduler
}

// PostTimer arms a timer that, at expiry, posts handler(false) to the
// scheduler. Cancel posts handler(true) instead, if the timer has not
// already fired.
func (s *Scheduler) PostTimer(d time.Duration, handler func(cancelled bool)) *Timer {
	t := &Timer{handler: handler, s: s}
	t.timer = time.AfterFunc(d, func() {
		t.once.Do(func() {
			s.Post(func() { handler(false) })
		})
	})
	return t
}

// Cancel aborts a pending Timer. A no-op if the timer already fired.
func (t *Timer) Cancel() {
	t.once.Do(func() {
		t.timer.Stop()
		t.s.Post(func() { t.handler(true) })
	})
}

func (s *Scheduler) addWorkerLocked() {
	s.workers++
	s.wg.Add(1)
	go s.runWorker()
}

func (s *Scheduler) runWorker() {
	defer s.wg.Done()
	for t := range s.work {
		if t.kill {
			s.mu.Lock()
			s.workers--
			if s.pendingKills > 0 {
				s.pendingKills--
			}
			s.mu.Unlock()
			return
		}
		if zombie := s.execute(t.fn); zombie {
			s.mu.Lock()
			s.workers--
			s.mu.Unlock()
			return
		}
	}
}

// execute runs fn, recovering a panic rather than letting it crash the
// process. A panicking worker is retired without re-entering its loop
// (spec.md §7's "lock-holder panics... that worker to be retired").
func (s *Scheduler) execute(fn func()) (zombie bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Entry(logger.ErrorLevel, fmt.Sprintf("worker panic: %v", r)).Log()
			zombie = true
		}
		atomic.AddInt64(&s.pending, -1)
		s.checkResize()
	}()
	fn()
	return false
}

// checkResize applies the growRatio/shrinkRatio policy from
// Scheduler.cpp: grow by workers*(ratio-1) up to max when ratio > 1.5,
// shrink by workers*(1-ratio) down to min when ratio < 0.5.
func (s *Scheduler) checkResize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workers == 0 {
		return
	}

	pending := float64(atomic.LoadInt64(&s.pending))
	ratio := pending / float64(s.workers)

	switch {
	case ratio > growRatio:
		grow := int(float64(s.workers) * (ratio - 1.0))
		for i := 0; i < grow && s.workers < s.max; i++ {
			s.addWorkerLocked()
		}
	case ratio < shrinkRatio:
		shrink := int(float64(s.workers) * (1.0 - ratio))
		for i := 0; i < shrink && s.workers-s.pendingKills > s.min; i++ {
			s.pendingKills++
			select {
			case s.work <- task{kill: true}:
			default:
				s.pendingKills--
			}
		}
	}
}

// Workers returns the current worker count.
func (s *Scheduler) Workers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers
}

// Pending returns the current pending-work count.
func (s *Scheduler) Pending() int64 {
	return atomic.LoadInt64(&s.pending)
}
