/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Command praetor-sub boots the process supervision and control
// service: it loads the configuration source, builds the process
// registry and preset store, and serves the HTTP API until a
// termination signal arrives (spec.md §6 "Exit codes").
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/RolandTaverner/PraeTor-sub000/config"
	"github.com/RolandTaverner/PraeTor-sub000/controller"
	"github.com/RolandTaverner/PraeTor-sub000/logger"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
	"github.com/RolandTaverner/PraeTor-sub000/webfront"
)

func main() {
	configPath := flag.String("config", "praetor-sub.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "praetor-sub:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	src, err := config.NewSource(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	root, err := src.Root()
	if err != nil {
		return fmt.Errorf("decoding run.*: %w", err)
	}
	log := logger.New(logger.GetLevelString(root.Logger))

	if stopWatch, err := src.Watch(func(r config.RawRoot) {
		log = logger.New(logger.GetLevelString(r.Logger))
		log.Entry(logger.InfoLevel, "logger level reloaded from config").Log()
	}); err == nil {
		defer func() { _ = stopWatch() }()
	} else {
		log.WithFields(logger.Fields{"action": "config_watch"}).Entry(logger.WarnLevel, "live-reload disabled: "+err.Error()).Log()
	}

	sched := scheduler.New(root.HTTPServer.WorkerThreads, root.HTTPServer.WorkerThreads*4, log)
	sched.Start()
	defer sched.Stop()

	ctrl := controller.New(sched)

	rawProcs, err := src.Processes()
	if err != nil {
		return fmt.Errorf("decoding processes: %w", err)
	}
	for _, rp := range rawProcs {
		p, err := config.BuildProcess(rp, log, sched)
		if err != nil {
			return fmt.Errorf("building process %s: %w", rp.Name, err)
		}
		ctrl.Register(p)
	}

	rawPresets, err := src.Presets()
	if err != nil {
		return fmt.Errorf("decoding presets: %w", err)
	}
	for _, rp := range rawPresets {
		def := config.BuildPresetDefinition(rp)
		g, err := ctrl.LoadPresetGroup(rp.Name, def, true)
		if err != nil {
			return fmt.Errorf("loading preset %s: %w", rp.Name, err)
		}
		ctrl.RegisterPreset(g)
	}

	srv := webfront.New(webfront.Config{
		Host:            root.HTTPServer.Host,
		Port:            root.HTTPServer.Port,
		Timeout:         root.HTTPServer.HTTPServerTimeout(),
		ConnectionLimit: root.HTTPServer.ConnectionLimit,
		Log:             log,
	}, ctrl)

	if err := srv.Listen(); err != nil {
		return fmt.Errorf("listening: %w", err)
	}
	srv.WaitNotify()
	return nil
}
