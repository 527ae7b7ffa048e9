package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Levels accepted by --log-level. "warning" is kept as the spelled-out
// form the legacy CLI used; zap calls the same level "warn".
var Levels = []string{"debug", "info", "warning", "error"}

// ParseLevel maps a CLI level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warning", "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (expected one of %s)", name, strings.Join(Levels, ", "))
	}
}

// New builds a logger that tees a rotating file in dir and the console.
// The returned closer flushes buffered entries; call it before exit.
func New(level string, dir string) (*zap.Logger, func(), error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename: filepath.Join(dir, fmt.Sprintf("repstress_%s.log", time.Now().Format("20060102_150405"))),
		MaxSize:  100, // megabytes before rotation
		MaxAge:   7,   // days of retention
	})

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileSink, lvl)
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), lvl)

	logger := zap.New(zapcore.NewTee(fileCore, consoleCore))
	closer := func() {
		_ = logger.Sync()
	}
	return logger, closer, nil
}
