package go_func_utils

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// SafeGo runs fn on a new goroutine. The terminal UI owns stdout, so a panic
// is written to logger with its stack before it is re-raised.
func SafeGo(logger logrus.FieldLogger, fn func()) {
	go func() {
		defer recoverAndLog(logger)
		fn()
	}()
}

// SafeGoWait is SafeGo with a channel closed once fn returns.
func SafeGoWait(logger logrus.FieldLogger, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer recoverAndLog(logger)
		fn()
	}()
	return done
}

func recoverAndLog(logger logrus.FieldLogger) {
	if r := recover(); r != nil {
		logger.WithField("stack", string(debug.Stack())).Errorf("PANIC: %v", r)
		panic(r)
	}
}
