/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package controller_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	liberrors "github.com/RolandTaverner/PraeTor-sub000/errors"
	"github.com/RolandTaverner/PraeTor-sub000/controller"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
	"github.com/RolandTaverner/PraeTor-sub000/scheme"
)

func newTestController(t *testing.T) (*controller.Controller, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.New(2, 8, nil)
	sched.Start()
	t.Cleanup(sched.Stop)
	return controller.New(sched), sched
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

func await[T any](t *testing.T, fn func(func(T, error))) (T, error) {
	t.Helper()
	type pair struct {
		v   T
		err error
	}
	ch := make(chan pair, 1)
	fn(func(v T, err error) { ch <- pair{v, err} })
	select {
	case p := <-ch:
		return p.v, p.err
	case <-time.After(2 * time.Second):
		t.Fatal("controller action did not complete in time")
		var zero T
		return zero, nil
	}
}

func TestController_GetProcesses_Alphabetical(t *testing.T) {
	c, sched := newTestController(t)
	c.Register(newEchoProcess(t, sched, "zebra"))
	c.Register(newEchoProcess(t, sched, "alpha"))

	names, err := await(t, c.GetProcesses)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zebra"}, names)
}

func TestController_GetProcessInfo_NotFound(t *testing.T) {
	c, _ := newTestController(t)

	_, err := await(t, func(done func(controller.ProcessInfo, error)) {
		c.GetProcessInfo("unknown", done)
	})
	require.Error(t, err)
	assert.True(t, liberrors.As(err, controller.Category, controller.ProcessNotFound))
}

func TestController_StartStopProcess(t *testing.T) {
	c, sched := newTestController(t)
	c.Register(newEchoProcess(t, sched, "echo"))

	state, err := await(t, func(done func(process.State, error)) {
		c.StartProcess("echo", done)
	})
	require.NoError(t, err)
	assert.Equal(t, process.Running, state)

	// Give the child a moment to exit on its own.
	time.Sleep(100 * time.Millisecond)

	_, err = await(t, func(done func(process.State, error)) {
		c.StopProcess("echo", done)
	})
	assert.True(t, err == nil || liberrors.As(err, process.Category, process.ProcessNotRunning))
}

func TestController_ApplyPresetGroup_RunningProcess_Refused(t *testing.T) {
	c, sched := newTestController(t)
	p := newEchoProcess(t, sched, "busy")
	c.Register(p)
	require.NoError(t, p.Start(func(process.ExitStatus) {}))
	defer p.Close()

	g, err := c.LoadPresetGroup("dev", map[string]map[string]map[string]option.Value{
		"busy": {scheme.StorageCmdline: {}},
	}, false)
	require.NoError(t, err)
	c.RegisterPreset(g)

	applyErr := make(chan error, 1)
	c.ApplyPresetGroup("dev", func(err error) { applyErr <- err })

	select {
	case err := <-applyErr:
		require.Error(t, err)
		assert.True(t, liberrors.As(err, controller.Category, controller.ProcessIsRunning))
	case <-time.After(2 * time.Second):
		t.Fatal("apply did not complete in time")
	}
}
