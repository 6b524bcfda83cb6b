// Package kfmt provides the firmware log console. Log output produced before
// a console device is attached is captured in a ring buffer and replayed once
// SetOutputSink is called.
package kfmt

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Console routes log output either to an attached sink or, while no sink is
// attached, to an early ring buffer. A Console is not safe for concurrent use.
type Console struct {
	early ringBuffer
	sink  io.Writer
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	if c.sink == nil {
		return c.early.Write(p)
	}
	return c.sink.Write(p)
}

// SetOutputSink sets the target for all console output to w and copies any
// data accumulated in the early buffer to it. Passing nil detaches the
// current sink and resumes buffering.
func (c *Console) SetOutputSink(w io.Writer) error {
	c.sink = w
	if w == nil {
		return nil
	}

	_, err := io.Copy(w, &c.early)
	c.early.reset()
	return err
}

// NewLogger returns a logfmt logger that writes to the console. Every line is
// prefixed with prefix. Debug level messages are dropped unless debug is set.
func (c *Console) NewLogger(prefix string, debug bool) log.Logger {
	var w io.Writer = c
	if prefix != "" {
		w = &PrefixWriter{Sink: c, Prefix: []byte(prefix)}
	}

	logger := log.NewLogfmtLogger(w)
	if debug {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

// OrNop returns logger or, if it is nil, a logger that discards everything.
func OrNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}
