// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package log

import (
	"os"
	"sync"
)

var global = &loggerAppliance{}

// loggerAppliance is the proxy for the global Helper.
type loggerAppliance struct {
	lock sync.Mutex
	*Helper
}

func init() {
	global.SetLogger(NewStdLogger(os.Stderr))
}

// SetLogger replaces the global logger.
func (a *loggerAppliance) SetLogger(in Logger) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.Helper = NewHelper(in)
}

// SetLogger sets the global logger.
func SetLogger(logger Logger) {
	global.SetLogger(logger)
}

// Debugf logs a formatted message at debug level on the global logger.
func Debugf(format string, a ...interface{}) {
	global.Debugf(format, a...)
}

// Infof logs a formatted message at info level on the global logger.
func Infof(format string, a ...interface{}) {
	global.Infof(format, a...)
}

// Warnf logs a formatted message at warn level on the global logger.
func Warnf(format string, a ...interface{}) {
	global.Warnf(format, a...)
}

// Errorf logs a formatted message at error level on the global logger.
func Errorf(format string, a ...interface{}) {
	global.Errorf(format, a...)
}

// Fatalf logs a formatted message at fatal level on the global logger and exits.
func Fatalf(format string, a ...interface{}) {
	global.Fatalf(format, a...)
}
