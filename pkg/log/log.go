// Package log adds a thin wrapper around logrus to improve non-debug logging
// performance and to give call sites a structured-fields shape without
// pulling in a request-scoped logging library.
package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var (
	l     = logrus.New()
	debug = false
)

// SetDebug controls debug logging.
func SetDebug(to bool) {
	debug = to
	if to {
		l.Level = logrus.DebugLevel
	} else {
		l.Level = logrus.InfoLevel
	}
}

// SetFormatter sets the formatter.
func SetFormatter(to logrus.Formatter) {
	l.Formatter = to
}

// SetOutput sets the output.
func SetOutput(to io.Writer) {
	l.Out = to
}

// Fields is a map of logging fields.
type Fields map[string]interface{}

// LogFields implements Fielder for Fields.
func (f Fields) LogFields() Fields {
	return f
}

// A Fielder provides Fields via the LogFields method.
type Fielder interface {
	LogFields() Fields
}

// err is a wrapper around an error.
type err struct {
	e error
}

// LogFields provides Fields for logging.
func (e err) LogFields() Fields {
	return Fields{
		"error": e.e.Error(),
		"type":  fmt.Sprintf("%T", e.e),
	}
}

// Err is a wrapper around errors that implements Fielder.
func Err(e error) Fielder {
	return err{e}
}

// mergeFielders combines several Fielders into one logrus.Fields map, so a
// call site can attach both a wrapped error (Err) and its own context (a
// plain Fields) to a single log line without the two colliding. The first
// Fielder's keys pass through untouched; later ones get an "N." prefix in
// case two Fielders happen to use the same key name.
//
// Requires len(fielders) > 0.
func mergeFielders(fielders ...Fielder) logrus.Fields {
	if fielders[0] == nil {
		return nil
	}

	fields := fielders[0].LogFields()
	for i := 1; i < len(fielders); i++ {
		if fielders[i] == nil {
			continue
		}
		prefix := fmt.Sprint(i, ".")
		ff := fielders[i].LogFields()
		for k, v := range ff {
			fields[prefix+k] = v
		}
	}

	return logrus.Fields(fields)
}

// entryFor builds the *logrus.Entry a log call should write through: a bare
// entry on l when no Fielder was given, or one carrying every Fielder's
// fields merged together otherwise. Every level below goes through this so
// the "attach zero or more Fielders" branch exists exactly once.
func entryFor(fielders []Fielder) *logrus.Entry {
	if len(fielders) == 0 {
		return logrus.NewEntry(l)
	}
	return l.WithFields(mergeFielders(fielders...))
}

// Debug logs at the debug level, if enabled by SetDebug.
func Debug(v interface{}, fielders ...Fielder) {
	if debug {
		entryFor(fielders).Debug(v)
	}
}

// Info logs at the info level.
func Info(v interface{}, fielders ...Fielder) {
	entryFor(fielders).Info(v)
}

// Warn logs at the warning level.
func Warn(v interface{}, fielders ...Fielder) {
	entryFor(fielders).Warn(v)
}

// Error logs at the error level.
func Error(v interface{}, fielders ...Fielder) {
	entryFor(fielders).Error(v)
}

// Fatal logs at the fatal level and terminates the process with a nonzero
// status, matching logrus.Logger.Fatal's own behavior.
func Fatal(v interface{}, fielders ...Fielder) {
	entryFor(fielders).Fatal(v)
}

// WithFields returns a *logrus.Entry pre-populated with fields, for a call
// site that logs several related events under the same context rather than
// attaching a Fielder to every call. No package in this module calls it.
func WithFields(fields Fields) *logrus.Entry {
	return l.WithFields(logrus.Fields(fields))
}
