/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package asynchttp_test

import (
	"bufio"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RolandTaverner/PraeTor-sub000/asynchttp"
	"github.com/RolandTaverner/PraeTor-sub000/pool"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
)

func echoServer(t *testing.T) net.Addr {
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
			go func(c net.Conn) {
				defer c.Close()
				for {
					req, err := http.ReadRequest(bufio.NewReader(c))
					if err != nil {
						return
					}
					resp := &http.Response{
						StatusCode:    200,
						ProtoMajor:    1,
						ProtoMinor:    1,
						Request:       req,
						Header:        make(http.Header),
						Body:          http.NoBody,
						ContentLength: 0,
					}
					_ = resp.Write(c)
				}
			}(c)
		}
	}()
	return ln.Addr()
}

func TestRequest_CompletesSuccessfully(t *testing.T) {
	sched := scheduler.New(1, 4, nil)
	sched.Start()
	defer sched.Stop()

	p := pool.New(4)
	addr := echoServer(t)

	req, err := http.NewRequest(http.MethodGet, "http://"+addr.String()+"/", nil)
	require.NoError(t, err)

	done := make(chan asynchttp.Result, 1)
	r := asynchttp.NewRequest(asynchttp.Desc{
		Req:      req,
		Endpoint: pool.Endpoint{Network: "tcp", Address: addr.String()},
	}, p, sched, func(res asynchttp.Result) { done <- res })

	r.Start()

	select {
	case res := <-done:
		require.NoError(t, res.Err)
		require.NotNil(t, res.Resp)
		assert.Equal(t, 200, res.Resp.StatusCode)
	case <-time.After(2 * time.Second):
		t.Fatal("request did not complete in time")
	}
}
