// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides a minimal structured leveled logger with pluggable
// backends, consumed by the nrbf package and the nrbfdump command.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"sync"
)

// Logger is a logger interface.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

type stdLogger struct {
	log  *stdlog.Logger
	pool *sync.Pool
}

// NewStdLogger creates a logger backed by the standard library writer.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{
		log: stdlog.New(w, "", stdlog.LstdFlags),
		pool: &sync.Pool{
			New: func() interface{} {
				return new([]byte)
			},
		},
	}
}

// Log prints the keyvals alternating key-value pairs.
func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if (len(keyvals) & 1) == 1 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	buf := l.pool.Get().(*[]byte)
	defer func() {
		*buf = (*buf)[:0]
		l.pool.Put(buf)
	}()

	*buf = append(*buf, level.String()...)
	for i := 0; i < len(keyvals); i += 2 {
		*buf = append(*buf, ' ')
		*buf = appendValue(*buf, keyvals[i])
		*buf = append(*buf, '=')
		*buf = appendValue(*buf, keyvals[i+1])
	}
	l.log.Print(string(*buf))
	return nil
}

func appendValue(buf []byte, v interface{}) []byte {
	switch t := v.(type) {
	case string:
		return append(buf, t...)
	case []byte:
		return append(buf, t...)
	case error:
		return append(buf, t.Error()...)
	default:
		return append(buf, fmt.Sprint(v)...)
	}
}
