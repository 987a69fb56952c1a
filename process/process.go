/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package process implements the supervised-process lifecycle of
// spec.md §4.C4: launch, config-file emission, termination, log
// capture, and the {Stopped, Starting, Running, Stopping} state
// machine. Grounded on
// _examples/original_source/TorController/Process/ProcessBase.cpp.
package process

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/RolandTaverner/PraeTor-sub000/logger"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
	"github.com/RolandTaverner/PraeTor-sub000/scheme"
)

// StopHandler is invoked exactly once per Start, from the exit
// callback, with the child's terminal status (spec.md §4.C4).
type StopHandler func(ExitStatus)

// Config is a process's immutable identity plus its initial
// configuration.
type Config struct {
	Name       string
	Executable string
	RootDir    string
	DataDir    string
	ArgsPrefix []string
	Storages   scheme.Configuration
	Log        logger.Logger
	Sched      *scheduler.Scheduler
}

// Process is one supervised child: immutable identity, mutable state
// machine, and the currently-bound Configuration (spec.md §3 "Process
// entity").
type Process struct {
	mu sync.RWMutex

	name       string
	executable string
	rootDir    string
	dataDir    string
	argsPrefix []string

	storages scheme.Configuration

	state          State
	unexpectedExit bool
	lastExit       ExitStatus

	configFilePath string
	logFilePath    string

	cmd         *exec.Cmd
	stopHandler StopHandler

	log   logger.Logger
	sched *scheduler.Scheduler
}

// New returns a Process in the Stopped state. sched is the worker
// scheduler spec.md §4.C4's start() posts the launch (and the
// exit-wait that follows it) onto, the same scheduler instance the
// controller holding this Process dispatches through (spec.md §4.C7:
// "backs both the HTTP client and the controller's blocking actions").
func New(cfg Config) *Process {
	l := cfg.Log
	if l == nil {
		l = logger.New(logger.InfoLevel)
	}
	return &Process{
		name:       cfg.Name,
		executable: cfg.Executable,
		rootDir:    cfg.RootDir,
		dataDir:    cfg.DataDir,
		argsPrefix: append([]string(nil), cfg.ArgsPrefix...),
		storages:   cfg.Storages,
		log:        l.WithFields(logger.Fields{"process": cfg.Name}),
		sched:      cfg.Sched,
	}
}

func (p *Process) Name() string { return p.name }

func (p *Process) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Process) LastExit() ExitStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastExit
}

// StorageNames returns the names of every config storage this process
// carries (e.g. "cmdline", "config", plus any per-process extras).
func (p *Process) StorageNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.storages.Names()
}

// Storages returns a clone of this process's current ProcessConfiguration,
// safe for a caller (e.g. preset application) to read or mutate without
// affecting the live process until ReplaceConfiguration is called.
func (p *Process) Storages() scheme.Configuration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.storages.Clone()
}

func (p *Process) storage(name string) (*scheme.Storage, error) {
	st, ok := p.storages[name]
	if !ok {
		return nil, Err(NoSuchStorage, name)
	}
	return st, nil
}

// Substitute implements scheme.Substitutor: the closed tag vocabulary
// resolved from this process's identity and current run's file paths.
func (p *Process) Substitute(tag string) (string, bool) {
	switch tag {
	case "PID":
		if p.cmd != nil && p.cmd.Process != nil {
			return strconv.Itoa(p.cmd.Process.Pid), true
		}
		return strconv.Itoa(os.Getpid()), true
	case "ROOTPATH":
		return p.rootDir, true
	case "DATAROOTPATH":
		return p.dataDir, true
	case "CONFIGFILE":
		return p.configFilePath, true
	case "LOGFILE":
		return p.logFilePath, true
	case "LOGFILENAME":
		return filepath.Base(p.logFilePath), true
	case "LOGFILELOCATION":
		return filepath.Dir(p.logFilePath), true
	default:
		return "", false
	}
}

// StorageOptionNames returns the option names declared by one storage's
// scheme, in registration order.
func (p *Process) StorageOptionNames(storageName string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st, err := p.storage(storageName)
	if err != nil {
		return nil, err
	}
	return st.Names(), nil
}

// GetOption returns the schema entry, the effective value, and its
// rendered text form for (storageName, optionName).
func (p *Process) GetOption(storageName, optName string) (option.Desc, option.Value, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st, err := p.storage(storageName)
	if err != nil {
		return option.Desc{}, option.Value{}, "", err
	}

	d, err := st.Scheme().Desc(optName)
	if err != nil {
		return option.Desc{}, option.Value{}, "", Err(NoSuchOption, optName)
	}

	v, ok, _ := st.Effective(optName)
	if !ok {
		return d, option.Value{}, "", nil
	}

	rendered, err := scheme.Render(d, v, p)
	if err != nil {
		return d, v, "", p.wrapSubstitutionError(err)
	}
	return d, v, rendered, nil
}

func (p *Process) wrapSubstitutionError(err error) error {
	if _, ok := err.(scheme.ErrUnknownTag); ok {
		return Err(SubstitutionNotFound, err.Error())
	}
	return err
}

// editable enforces spec.md §4.C4's "Editing policy": cmdline/config
// mutation is forbidden while running, system options are never
// editable through this surface.
func (p *Process) editable(storageName, optName string, st *scheme.Storage) error {
	if d, err := st.Scheme().Desc(optName); err == nil && d.System {
		return Err(SystemOptionEditForbidden, optName)
	}
	if (storageName == scheme.StorageCmdline || storageName == scheme.StorageConfig) && p.state != Stopped {
		return Err(CantEditConfigOfRunningProcess, storageName)
	}
	return nil
}

// SetOptionValue sets (storageName, optName) to v.
func (p *Process) SetOptionValue(storageName, optName string, v option.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.storage(storageName)
	if err != nil {
		return err
	}
	if err := p.editable(storageName, optName, st); err != nil {
		return err
	}
	if err := st.Set(optName, v); err != nil {
		return err
	}
	return nil
}

// RemoveOptionValue reverts (storageName, optName) to its default or
// unset.
func (p *Process) RemoveOptionValue(storageName, optName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.storage(storageName)
	if err != nil {
		return err
	}
	if err := p.editable(storageName, optName, st); err != nil {
		return err
	}
	return st.Remove(optName)
}

// ReplaceConfiguration atomically swaps every storage for a fresh set
// (spec.md §4.C5 preset application). Only permitted while Stopped.
func (p *Process) ReplaceConfiguration(cfg scheme.Configuration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Stopped {
		return Err(AlreadyRunning, p.name)
	}
	p.storages = cfg
	return nil
}

// Start begins the launch sequence: best-effort cleanup of stale
// config/log files, a fresh log path, config-file emission (if a
// "config" storage exists), and spawning the child with the rendered
// cmdline. stop is recorded and invoked exactly once from the exit
// callback.
func (p *Process) Start(stop StopHandler) error {
	p.mu.Lock()

	if p.state != Stopped {
		p.mu.Unlock()
		return Err(AlreadyRunning, p.name)
	}
	p.state = Starting
	p.stopHandler = stop

	p.cleanupPreviousFiles()

	uniq := uuid.NewString()
	p.logFilePath = filepath.Join(p.dataDir, fmt.Sprintf("%s-%s.log", p.name, uniq))

	if cfgStorage, ok := p.storages[scheme.StorageConfig]; ok {
		p.configFilePath = filepath.Join(p.dataDir, fmt.Sprintf("%s-%s.config", p.name, uniq))
		if err := p.writeConfigFile(cfgStorage); err != nil {
			p.state = Stopped
			p.mu.Unlock()
			return err
		}
	}

	args, err := p.renderCmdline()
	if err != nil {
		p.state = Stopped
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	// The actual spawn, and the blocking wait that follows it, are
	// posted to the scheduler rather than run on the caller's
	// goroutine or a bare `go` statement (spec.md §4.C4 "a launch is
	// posted to the scheduler"; §4.C7's elastic sizing exists
	// precisely to absorb long-blocking work like this).
	launched := make(chan error, 1)
	p.sched.Post(func() {
		cmd := exec.Command(p.executable, args...)
		cmd.Dir = p.rootDir
		if err := cmd.Start(); err != nil {
			p.mu.Lock()
			p.state = Stopped
			p.mu.Unlock()
			p.log.Entry(logger.WarnLevel, "process spawn failed").Log()
			launched <- err
			return
		}

		p.mu.Lock()
		p.cmd = cmd
		p.state = Running
		p.mu.Unlock()
		p.log.Entry(logger.InfoLevel, "process started").Log()
		launched <- nil

		p.awaitExit(cmd)
	})
	return <-launched
}

func (p *Process) cleanupPreviousFiles() {
	for _, path := range []string{p.configFilePath, p.logFilePath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.log.Entry(logger.WarnLevel, "failed to remove stale file").Log()
		}
	}
}

func (p *Process) writeConfigFile(st *scheme.Storage) error {
	if missing := st.RequiredMissing(); len(missing) > 0 {
		return Err(MissingRequiredOption, missing[0])
	}

	f, err := os.Create(p.configFilePath)
	if err != nil {
		return Err(ConfigFileWriteError, err.Error())
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, name := range st.Names() {
		v, ok, _ := st.Effective(name)
		if !ok {
			continue
		}
		d, _ := st.Scheme().Desc(name)
		line, err := scheme.Render(d, v, p)
		if err != nil {
			return p.wrapSubstitutionError(err)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return Err(ConfigFileWriteError, err.Error())
		}
	}
	if err := w.Flush(); err != nil {
		return Err(ConfigFileWriteError, err.Error())
	}
	return nil
}

func (p *Process) renderCmdline() ([]string, error) {
	args := append([]string(nil), p.argsPrefix...)

	st, ok := p.storages[scheme.StorageCmdline]
	if !ok {
		return args, nil
	}

	if missing := st.RequiredMissing(); len(missing) > 0 {
		return nil, Err(MissingRequiredOption, missing[0])
	}

	for _, name := range st.Names() {
		v, ok, _ := st.Effective(name)
		if !ok {
			continue
		}
		d, _ := st.Scheme().Desc(name)
		rendered, err := scheme.Render(d, v, p)
		if err != nil {
			return nil, p.wrapSubstitutionError(err)
		}
		args = append(args, rendered)
	}
	return args, nil
}

func (p *Process) awaitExit(cmd *exec.Cmd) {
	err := cmd.Wait()

	p.mu.Lock()
	unexpected := p.state != Stopping
	p.state = Stopped
	code := exitCode(err)
	p.lastExit = ExitStatus{Code: code, Err: err, UnexpectedExit: unexpected}
	handler := p.stopHandler
	p.stopHandler = nil
	p.cmd = nil
	p.mu.Unlock()

	p.log.WithFields(logger.Fields{"exit_code": code, "unexpected": unexpected}).Entry(logger.InfoLevel, "process exited").Log()

	if handler != nil {
		handler(p.lastExit)
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// Stop sends a termination signal to the running child. The actual
// completion (stop-handler invocation) happens asynchronously from
// awaitExit.
func (p *Process) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Running {
		return Err(ProcessNotRunning, p.name)
	}
	p.state = Stopping

	if p.cmd != nil && p.cmd.Process != nil {
		return p.cmd.Process.Signal(syscall.SIGTERM)
	}
	return nil
}

// Log returns the current log file's contents, one entry per line,
// tolerating the file having been rotated away by a new Start.
func (p *Process) Log() ([]string, error) {
	p.mu.RLock()
	path := p.logFilePath
	p.mu.RUnlock()

	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Close stops the process if still running and waits for it to exit
// before returning, matching spec.md §4.C4's destruction policy.
func (p *Process) Close() error {
	p.mu.RLock()
	running := p.state == Running
	p.mu.RUnlock()

	if !running {
		return nil
	}

	done := make(chan struct{})
	p.mu.Lock()
	prev := p.stopHandler
	p.stopHandler = func(es ExitStatus) {
		if prev != nil {
			prev(es)
		}
		close(done)
	}
	p.mu.Unlock()

	if err := p.Stop(); err != nil {
		return err
	}
	<-done
	return nil
}
