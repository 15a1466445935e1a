// Package logging provides the package-level structured logger used
// across this module, in the same spirit as the teacher lineage's
// free-function dvid.Infof/Errorf/Debugf: callers never construct or
// thread a logger through, they just call logging.Debugf etc.
//
// It is backed by go.uber.org/zap's SugaredLogger.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log *zap.SugaredLogger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	log = l.Sugar()
}

// SetLogger replaces the package-level logger, e.g. to install a
// development logger in tests or a caller-supplied *zap.Logger in a
// larger application.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l.Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debugf logs at debug level. Used by the query executor (§4.6 step 2a)
// to record index keys whose doc-id suffix failed to decode, without
// failing the scan that found them.
func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }

// Infof logs at info level, for operational messages like store open/close.
func Infof(format string, args ...interface{}) { current().Infof(format, args...) }

// Warnf logs at warn level, e.g. warnings from the storage engine.
func Warnf(format string, args ...interface{}) { current().Warnf(format, args...) }

// Errorf logs at error level, e.g. storage errors that may indicate
// corruption (§7).
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }
