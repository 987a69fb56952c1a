/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RolandTaverner/PraeTor-sub000/controller"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
	"github.com/RolandTaverner/PraeTor-sub000/scheme"
	"github.com/RolandTaverner/PraeTor-sub000/webfront"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*webfront.Server, *controller.Controller, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.New(2, 8, nil)
	sched.Start()
	t.Cleanup(sched.Stop)

	ctrl := controller.New(sched)
	srv := webfront.New(webfront.Config{Host: "127.0.0.1", Port: "0", Timeout: 2 * time.Second, ConnectionLimit: 64}, ctrl)
	return srv, ctrl, sched
}

func newEchoProcess(t *testing.T, sched *scheduler.Scheduler, name string) *process.Process {
	t.Helper()
	cmdlineScheme := scheme.New()
	require.NoError(t, cmdlineScheme.Register(option.Desc{Name: "text", Format: option.Format{Template: "%VALUE%"}}))
	cmdline := scheme.NewStorage(cmdlineScheme)
	require.NoError(t, cmdline.Set("text", option.Single("hello")))

	return process.New(process.Config{
		Name:       name,
		Executable: "/bin/echo",
		RootDir:    t.TempDir(),
		DataDir:    t.TempDir(),
		Storages: scheme.Configuration{
			scheme.StorageCmdline: cmdline,
			scheme.StorageConfig:  scheme.NewStorage(scheme.New()),
		},
		Sched: sched,
	})
}

func TestServer_GetProcessInfo_Unknown_404(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/controller/processes/unknown", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ControllerErrors", body["category"])
}

func TestServer_UnknownRoute_404(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "WebfrontErrors", body["category"])
}

func TestServer_StartProcess_200(t *testing.T) {
	srv, ctrl, sched := newTestServer(t)
	ctrl.Register(newEchoProcess(t, sched, "echo"))

	body, _ := json.Marshal(map[string]string{"action": "start"})
	req := httptest.NewRequest(http.MethodPost, "/api/controller/processes/echo/action", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Running", resp["state"])
}

func TestServer_OptionsRequest_CORS(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/controller/processes", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
