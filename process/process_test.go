/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package process_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	liberrors "github.com/RolandTaverner/PraeTor-sub000/errors"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
	"github.com/RolandTaverner/PraeTor-sub000/scheme"
)

func newEchoProcess(t *testing.T) *process.Process {
	t.Helper()

	cmdlineScheme := scheme.New()
	require.NoError(t, cmdlineScheme.Register(option.Desc{Name: "text", Format: option.Format{Template: "%VALUE%"}}))
	cmdline := scheme.NewStorage(cmdlineScheme)
	require.NoError(t, cmdline.Set("text", option.Single("hello")))

	configScheme := scheme.New()

	sched := scheduler.New(2, 8, nil)
	sched.Start()
	t.Cleanup(sched.Stop)

	return process.New(process.Config{
		Name:       "echo",
		Executable: "/bin/echo",
		RootDir:    t.TempDir(),
		DataDir:    t.TempDir(),
		Storages: scheme.Configuration{
			scheme.StorageCmdline: cmdline,
			scheme.StorageConfig:  scheme.NewStorage(configScheme),
		},
		Sched: sched,
	})
}

func TestProcess_StartStopLifecycle(t *testing.T) {
	p := newEchoProcess(t)
	assert.Equal(t, process.Stopped, p.State())

	done := make(chan process.ExitStatus, 1)
	err := p.Start(func(es process.ExitStatus) { done <- es })
	require.NoError(t, err)

	select {
	case es := <-done:
		assert.Equal(t, 0, es.Code)
		assert.False(t, es.UnexpectedExit)
	case <-time.After(2 * time.Second):
		t.Fatal("process did not exit in time")
	}

	assert.Equal(t, process.Stopped, p.State())
}

func TestProcess_StartWhileRunning_AlreadyRunning(t *testing.T) {
	p := newEchoProcess(t)
	done := make(chan process.ExitStatus, 1)
	require.NoError(t, p.Start(func(es process.ExitStatus) { done <- es }))

	err := p.Start(func(process.ExitStatus) {})
	require.Error(t, err)
	assert.True(t, liberrors.As(err, process.Category, process.AlreadyRunning))

	<-done
}

func TestProcess_StopWhileStopped_ProcessNotRunning(t *testing.T) {
	p := newEchoProcess(t)
	err := p.Stop()
	require.Error(t, err)
	assert.True(t, liberrors.As(err, process.Category, process.ProcessNotRunning))
}
