/*
NAME
  logging.go

DESCRIPTION
  logging.go defines the Log callback type used throughout this module.
  Logging is deliberately an external collaborator (spec §1): the library
  never owns a logging backend, only a narrow callback signature a caller
  wires up. NewZapLogger is a convenience default backed by go.uber.org/zap
  for callers who don't already have a Logger of their own.

AUTHOR
  groovymister authors, after the protocol/rtcp.Log callback type.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovymister

import "go.uber.org/zap"

// Log levels, matching the int8 severity scale used by the callback.
const (
	LogDebug int8 = iota
	LogInfo
	LogWarning
	LogError
)

// Log describes the logging callback a Connection or InputHandle accepts.
// A nil Log is valid and silently discards everything.
type Log func(lvl int8, msg string, args ...interface{})

func (l Log) log(lvl int8, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l(lvl, msg, args...)
}

// NewZapLogger returns a Log callback backed by z, mapping LogDebug..LogError
// onto zap's Debug/Info/Warn/Error. Pass zap.NewProduction()/NewDevelopment()
// or a custom *zap.Logger; this library never constructs one on its own.
func NewZapLogger(z *zap.Logger) Log {
	s := z.Sugar()
	return func(lvl int8, msg string, args ...interface{}) {
		switch lvl {
		case LogDebug:
			s.Debugw(msg, args...)
		case LogInfo:
			s.Infow(msg, args...)
		case LogWarning:
			s.Warnw(msg, args...)
		default:
			s.Errorw(msg, args...)
		}
	}
}
