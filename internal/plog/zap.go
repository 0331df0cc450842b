// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/util/duration"
)

const rfc3339Micro = "2006-01-02T15:04:05.000000Z07:00"

func newLogr(encoding string, w zapcore.WriteSyncer, level zapcore.LevelEnabler, mod func(*zapcore.EncoderConfig), opts ...zap.Option) (logr.Logger, func(), error) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey, // included in caller
		StacktraceKey:  "stacktrace",
		SkipLineEnding: false,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder,
		// human-readable and machine parsable with microsecond precision
		EncodeTime:       zapcore.TimeEncoderOfLayout(rfc3339Micro),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     callerEncoder,
		ConsoleSeparator: "  ",
	}

	if encoding == "console" {
		encoderConfig.LevelKey = zapcore.OmitKey
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoderConfig.EncodeTime = humanTimeEncoder
		encoderConfig.EncodeDuration = humanDurationEncoder
	}
	if mod != nil {
		mod(&encoderConfig)
	}

	var encoder zapcore.Encoder
	switch encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return logr.Logger{}, nil, fmt.Errorf("failed to build zap logger: unknown encoding %q", encoding)
	}

	// error logs carry a stack only at trace verbosity and above, which is noisy enough to be opt-in.
	opts = append([]zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.Level(-vLevelTrace))}, opts...)
	log := zap.New(zapcore.NewCore(encoder, w, level), opts...)

	return zapr.NewLogger(log), func() { _ = log.Sync() }, nil
}

func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l > 0 {
		enc.AppendString(l.String()) // error and above
		return
	}

	if plogLevel := levelForVerbosity(int(-l)); len(plogLevel) != 0 {
		enc.AppendString(string(plogLevel))
	}
	// appending nothing makes zap fall back to its own level string
}

func callerEncoder(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(caller.String() + funcEncoder(caller))
}

func funcEncoder(caller zapcore.EntryCaller) string {
	funcName := caller.Function
	if idx := strings.LastIndexByte(funcName, '/'); idx != -1 {
		funcName = funcName[idx+1:] // keep everything after the last /
	}
	return "$" + funcName
}

func humanDurationEncoder(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(duration.HumanDuration(d))
}

func humanTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Local().Format(time.RFC1123))
}
