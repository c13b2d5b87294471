// Package logging defines the small key/value logger the deposit packages
// accept, with adapters for glog, tests and a silent default.
package logging

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// Logger takes a message followed by key/value pairs. Keys must be strings;
// values should have a meaningful string form.
type Logger interface {
	Debug(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

// Nop discards everything.
func Nop() Logger { return nop{} }

type nop struct{}

func (nop) Debug(string, ...any)  {}
func (nop) Error(string, ...any)  {}
func (n nop) With(...any) Logger { return n }

// Glog routes debug output to glog.V(2) and errors to glog.Error.
func Glog() Logger { return &glogLogger{} }

type glogLogger struct {
	tags []any
}

func (l *glogLogger) Debug(msg string, kv ...any) {
	if glog.V(2) {
		glog.InfoDepth(1, format(msg, kv, l.tags))
	}
}

func (l *glogLogger) Error(msg string, kv ...any) {
	glog.ErrorDepth(1, format(msg, kv, l.tags))
}

func (l *glogLogger) With(kv ...any) Logger {
	return &glogLogger{tags: appendTags(l.tags, kv)}
}

// TB is the subset of testing.TB the testing adapter needs.
type TB interface {
	Logf(format string, args ...any)
	Helper()
}

// Testing sends every line to t.Logf so output is attached to the test.
func Testing(t TB) Logger { return &testingLogger{t: t} }

type testingLogger struct {
	t    TB
	tags []any
}

func (l *testingLogger) Debug(msg string, kv ...any) {
	l.t.Helper()
	l.t.Logf("%s", "DEB "+format(msg, kv, l.tags))
}

func (l *testingLogger) Error(msg string, kv ...any) {
	l.t.Helper()
	l.t.Logf("%s", "ERR "+format(msg, kv, l.tags))
}

func (l *testingLogger) With(kv ...any) Logger {
	return &testingLogger{t: l.t, tags: appendTags(l.tags, kv)}
}

// OrNop returns logger, or a Nop logger when it is nil.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

func appendTags(existing, kv []any) []any {
	out := make([]any, 0, len(existing)+len(kv))
	out = append(out, existing...)
	return append(out, kv...)
}

func format(msg string, groups ...[]any) string {
	var b strings.Builder
	b.WriteString(msg)
	for _, kv := range groups {
		for i, v := range kv {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}
