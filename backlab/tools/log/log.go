// Package log is a thin wrapper around logrus so the rest of the
// codebase does not import it directly.
package log

import (
	log "github.com/sirupsen/logrus"
)

type (
	Level         = log.Level
	Fields        = log.Fields
	TextFormatter = log.TextFormatter
)

const (
	PanicLevel = log.PanicLevel
	FatalLevel = log.FatalLevel
	ErrorLevel = log.ErrorLevel
	WarnLevel  = log.WarnLevel
	InfoLevel  = log.InfoLevel
	DebugLevel = log.DebugLevel
)

var (
	SetFormatter = log.SetFormatter
	SetLevel     = log.SetLevel
	SetOutput    = log.SetOutput

	WithFields = log.WithFields
	WithError  = log.WithError

	Debug  = log.Debug
	Debugf = log.Debugf
	Info   = log.Info
	Infof  = log.Infof
	Warn   = log.Warn
	Warnf  = log.Warnf
	Error  = log.Error
	Errorf = log.Errorf
	Fatal  = log.Fatal
	Fatalf = log.Fatalf
)
