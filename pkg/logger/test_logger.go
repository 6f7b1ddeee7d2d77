package logger

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

// TestLogger routes log output through t.Log and captures raw messages so
// tests can assert on them.
type TestLogger struct {
	*Logger
	t       *testing.T
	logs    []string
	logLock sync.Mutex
}

// NewTestLogger builds a TestLogger and installs it as the global logger
// for the duration of the test.
func NewTestLogger(t *testing.T) *TestLogger {
	zl := zaptest.NewLogger(t)
	tl := &TestLogger{Logger: &Logger{Logger: zl}, t: t}

	loggerMutex.Lock()
	previous := globalLogger
	globalLogger = zl
	loggerMutex.Unlock()

	t.Cleanup(func() {
		loggerMutex.Lock()
		globalLogger = previous
		loggerMutex.Unlock()
	})
	return tl
}

// GetLogs returns the captured messages.
func (tl *TestLogger) GetLogs() []string {
	tl.logLock.Lock()
	defer tl.logLock.Unlock()
	return append([]string{}, tl.logs...)
}

func (tl *TestLogger) capture(msg string) {
	tl.logLock.Lock()
	tl.logs = append(tl.logs, msg)
	tl.logLock.Unlock()
}

func (tl *TestLogger) Debug(msg string) {
	tl.capture(msg)
	tl.Logger.Debug(msg)
}

func (tl *TestLogger) Info(msg string) {
	tl.capture(msg)
	tl.Logger.Info(msg)
}

func (tl *TestLogger) Warn(msg string) {
	tl.capture(msg)
	tl.Logger.Warn(msg)
}

func (tl *TestLogger) Error(msg string) {
	tl.capture(msg)
	tl.Logger.Error(msg)
}

// Printf-style forms are redeclared so they capture through the TestLogger
// overrides rather than the embedded Logger's.
func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.Debug(fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.Info(fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.Warn(fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.Error(fmt.Sprintf(format, args...))
}
