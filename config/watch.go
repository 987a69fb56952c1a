/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package config

import (
	"github.com/fsnotify/fsnotify"
)

// Watch starts watching the configuration file for changes and calls
// onChange with the freshly re-read Root after every write event.
// A re-read or decode error skips that event without calling onChange
// and without logging, matching spec.md §6's "external collaborator"
// framing: a bad edit to the source must not crash the running service.
func (s *Source) Watch(onChange func(RawRoot)) (func() error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(s.v.ConfigFileUsed()); err != nil {
		_ = w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.v.ReadInConfig(); err != nil {
					continue
				}
				root, err := s.Root()
				if err != nil {
					continue
				}
				onChange(root)
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w.Close, nil
}
