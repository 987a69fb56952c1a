/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package asynchttp_test

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RolandTaverner/PraeTor-sub000/asynchttp"
	"github.com/RolandTaverner/PraeTor-sub000/errors"
	"github.com/RolandTaverner/PraeTor-sub000/pool"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
)

// blackhole accepts connections but never reads from or writes to
// them, so connect and send succeed while the response never arrives.
func blackhole(t *testing.T) net.Addr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			// accept but never read/write/close: request hangs in Reading.
			_ = c
		}
	}()
	return ln.Addr()
}

func TestRequestManager_GroupDeadline_AllTimeOut(t *testing.T) {
	sched := scheduler.New(2, 8, nil)
	sched.Start()
	defer sched.Stop()

	p := pool.New(8)
	addr := blackhole(t)

	const n = 3
	descs := make([]asynchttp.Desc, n)
	for i := range descs {
		req, err := http.NewRequest(http.MethodGet, "http://"+addr.String()+"/", nil)
		require.NoError(t, err)
		descs[i] = asynchttp.Desc{
			Req:       req,
			Endpoint:  pool.Endpoint{Network: "tcp", Address: addr.String()},
			KeepAlive: false,
		}
	}

	mgr := asynchttp.NewRequestManager(sched, p)
	done := make(chan []asynchttp.Result, 1)
	start := time.Now()

	require.NoError(t, mgr.Start(descs, 100*time.Millisecond, func(results []asynchttp.Result) {
		done <- results
	}))

	select {
	case results := <-done:
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
		assert.LessOrEqual(t, elapsed, 500*time.Millisecond)
		require.Len(t, results, n)
		for _, r := range results {
			assert.True(t, errors.As(r.Err, asynchttp.Category, asynchttp.RequestTimedOut))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("group did not complete in time")
	}
}

func TestRequestManager_RefusesDoubleStart(t *testing.T) {
	sched := scheduler.New(1, 2, nil)
	sched.Start()
	defer sched.Stop()

	p := pool.New(2)
	mgr := asynchttp.NewRequestManager(sched, p)

	descs := []asynchttp.Desc{}
	require.NoError(t, mgr.Start(descs, 0, func([]asynchttp.Result) {}))

	// A manager with zero requests completes synchronously with
	// running reset, so a second Start is legal; exercise the guard with
	// two back-to-back starts on a non-empty group instead.
	addr := blackhole(t)
	req, _ := http.NewRequest(http.MethodGet, "http://"+addr.String()+"/", nil)
	descs2 := []asynchttp.Desc{{Req: req, Endpoint: pool.Endpoint{Network: "tcp", Address: addr.String()}}}

	err1 := mgr.Start(descs2, time.Second, func([]asynchttp.Result) {})
	err2 := mgr.Start(descs2, time.Second, func([]asynchttp.Result) {})
	assert.True(t, (err1 == nil) != (err2 == nil), "exactly one of two back-to-back starts should be refused")
}
