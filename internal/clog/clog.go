// Package clog gives every protocol layer a package-local, toggleable
// logger without hard-wiring a particular backend into the codec and
// state-machine code.
package clog

import (
	"github.com/sirupsen/logrus"
)

// Log wraps a *logrus.Logger so each component of cs101 and cs104 can
// hold its own named logger while sharing one formatter/output by default.
type Log struct {
	entry *logrus.Entry
}

// New returns a Log that writes through lg, tagged with component.
// A nil lg falls back to logrus' standard logger.
func New(component string, lg *logrus.Logger) Log {
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return Log{entry: lg.WithField("component", component)}
}

func (l Log) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l Log) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l Log) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l Log) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
