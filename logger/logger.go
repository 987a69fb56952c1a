/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package logger wraps logrus with a fixed Level vocabulary and structured
// fields, split across stdout (Info and below) and stderr (Warn and above).
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a structured-field bag attached to one log line.
type Fields map[string]interface{}

// Logger is the sole logging entry point used by every other package.
type Logger interface {
	SetLevel(l Level)
	WithFields(f Fields) Logger
	Entry(l Level, message string) *Entry
}

type Entry struct {
	logger *logger
	level  Level
	fields Fields
	msg    string
}

func (e *Entry) Log() {
	e.logger.log(e.level, e.msg, e.fields)
}

type logger struct {
	std    *logrus.Logger
	fields Fields
}

// New builds a Logger backed by two logrus streams: stdout carries Info and
// below, stderr carries Warn and above, matching the teacher's hookstdout /
// hookstderr split (file and syslog sinks are out of scope, see DESIGN.md).
func New(level Level) Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(level.Logrus())
	l.AddHook(&streamHook{out: os.Stdout, severe: false})
	l.AddHook(&streamHook{out: os.Stderr, severe: true})
	return &logger{std: l, fields: Fields{}}
}

func (lg *logger) SetLevel(l Level) {
	lg.std.SetLevel(l.Logrus())
}

func (lg *logger) WithFields(f Fields) Logger {
	merged := make(Fields, len(lg.fields)+len(f))
	for k, v := range lg.fields {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return &logger{std: lg.std, fields: merged}
}

func (lg *logger) Entry(l Level, message string) *Entry {
	return &Entry{logger: lg, level: l, fields: lg.fields, msg: message}
}

func (lg *logger) log(l Level, msg string, f Fields) {
	e := lg.std.WithFields(logrus.Fields(f))
	switch l {
	case PanicLevel:
		e.Panic(msg)
	case FatalLevel:
		e.Fatal(msg)
	case ErrorLevel:
		e.Error(msg)
	case WarnLevel:
		e.Warn(msg)
	case InfoLevel:
		e.Info(msg)
	case DebugLevel:
		e.Debug(msg)
	}
}

// streamHook routes entries on one side of the Warn threshold to one io.Writer,
// the split the teacher implements as two separate hook packages
// (hookstdout / hookstderr); collapsed here into one hook type.
type streamHook struct {
	out    io.Writer
	severe bool // true: Warn and above (stderr); false: Info and below (stdout)
}

func (h *streamHook) Levels() []logrus.Level {
	var levels []logrus.Level
	for _, lv := range logrus.AllLevels {
		if (lv <= logrus.WarnLevel) == h.severe {
			levels = append(levels, lv)
		}
	}
	return levels
}

func (h *streamHook) Fire(e *logrus.Entry) error {
	line, err := e.Logger.Formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}
