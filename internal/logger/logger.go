// Package logger builds the zap logger shared by every surface.
package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hpungsan/promptbase/internal/config"
)

// New builds a JSON logger writing to stderr, plus a rotated file when
// cfg.File is set. stdout is left alone for CLI output and MCP stdio.
// The returned cleanup flushes buffered file output and stops the flush
// goroutine; call it once the logger is no longer used.
func New(cfg config.LogConfig) (*zap.Logger, func() error, error) {
	return newWithConsole(cfg, os.Stderr)
}

func newWithConsole(cfg config.LogConfig, console io.Writer) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, err
		}
	}

	ws, stop := writer(cfg, console)
	log := zap.New(zapcore.NewCore(encoder(), ws, level), zap.AddCaller())
	cleanup := func() error {
		_ = log.Sync()
		return stop()
	}
	return log, cleanup, nil
}

func encoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func writer(cfg config.LogConfig, console io.Writer) (zapcore.WriteSyncer, func() error) {
	consoleSyncer := zapcore.AddSync(console)
	if cfg.File == "" {
		return consoleSyncer, func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	fileSyncer := &zapcore.BufferedWriteSyncer{
		WS:            zapcore.AddSync(rotator),
		Size:          256 * 1024,
		FlushInterval: 5 * time.Second,
	}

	stop := func() error {
		if err := fileSyncer.Stop(); err != nil {
			return err
		}
		return rotator.Close()
	}
	return zapcore.NewMultiWriteSyncer(consoleSyncer, fileSyncer), stop
}
