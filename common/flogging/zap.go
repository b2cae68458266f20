/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger creates a zap logger around a new zap.Core. The core will use
// the provided encoder and sinks and a level enabler that is associated with
// the provided logger name. The logger that is returned will be named the same
// as the logger.
func NewZapLogger(core zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(
		core,
		append([]zap.Option{
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		}, options...)...,
	)
}

// NewFabricLogger creates a logger that delegates to the zap.SugaredLogger.
func NewFabricLogger(l *zap.Logger, options ...zap.Option) *FabricLogger {
	return &FabricLogger{
		s: l.WithOptions(append(options, zap.AddCallerSkip(1))...).Sugar(),
	}
}

// A FabricLogger is an adapter around a zap.SugaredLogger.
//
// Methods without a formatting suffix (f or w) build the log entry message
// with fmt.Sprintln instead of fmt.Sprint so that arguments are separated by
// spaces.
type FabricLogger struct{ s *zap.SugaredLogger }

func (f *FabricLogger) Debug(args ...any)                   { f.s.Debug(formatArgs(args)) }
func (f *FabricLogger) Debugf(template string, args ...any) { f.s.Debugf(template, args...) }
func (f *FabricLogger) Debugw(msg string, kvPairs ...any)   { f.s.Debugw(msg, kvPairs...) }
func (f *FabricLogger) Error(args ...any)                   { f.s.Error(formatArgs(args)) }
func (f *FabricLogger) Errorf(template string, args ...any) { f.s.Errorf(template, args...) }
func (f *FabricLogger) Errorw(msg string, kvPairs ...any)   { f.s.Errorw(msg, kvPairs...) }
func (f *FabricLogger) Fatal(args ...any)                   { f.s.Fatal(formatArgs(args)) }
func (f *FabricLogger) Fatalf(template string, args ...any) { f.s.Fatalf(template, args...) }
func (f *FabricLogger) Fatalw(msg string, kvPairs ...any)   { f.s.Fatalw(msg, kvPairs...) }
func (f *FabricLogger) Info(args ...any)                    { f.s.Info(formatArgs(args)) }
func (f *FabricLogger) Infof(template string, args ...any)  { f.s.Infof(template, args...) }
func (f *FabricLogger) Infow(msg string, kvPairs ...any)    { f.s.Infow(msg, kvPairs...) }
func (f *FabricLogger) Panic(args ...any)                   { f.s.Panic(formatArgs(args)) }
func (f *FabricLogger) Panicf(template string, args ...any) { f.s.Panicf(template, args...) }
func (f *FabricLogger) Panicw(msg string, kvPairs ...any)   { f.s.Panicw(msg, kvPairs...) }
func (f *FabricLogger) Warn(args ...any)                    { f.s.Warn(formatArgs(args)) }
func (f *FabricLogger) Warnf(template string, args ...any)  { f.s.Warnf(template, args...) }
func (f *FabricLogger) Warnw(msg string, kvPairs ...any)    { f.s.Warnw(msg, kvPairs...) }

func (f *FabricLogger) Named(name string) *FabricLogger { return &FabricLogger{s: f.s.Named(name)} }
func (f *FabricLogger) Sync() error                     { return f.s.Sync() }
func (f *FabricLogger) Zap() *zap.Logger                { return f.s.Desugar() }

func (f *FabricLogger) IsEnabledFor(level zapcore.Level) bool {
	return f.s.Desugar().Core().Enabled(level)
}

func (f *FabricLogger) With(args ...any) *FabricLogger {
	return &FabricLogger{s: f.s.With(args...)}
}

func (f *FabricLogger) WithOptions(opts ...zap.Option) *FabricLogger {
	l := f.s.Desugar().WithOptions(opts...)
	return &FabricLogger{s: l.Sugar()}
}

func formatArgs(args []any) string { return strings.TrimSuffix(fmt.Sprintln(args...), "\n") }
