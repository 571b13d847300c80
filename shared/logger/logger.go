package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config описывает настройки логгера сервиса.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json или console
	OutputPath string // пусто означает stdout
}

// New собирает рабочий zap-логгер: ISO8601-метки времени в поле "timestamp",
// уровни заглавными, без caller и стектрейсов. Неверный уровень или формат
// не фатален, берём info/json.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	requested := strings.ToLower(strings.TrimSpace(cfg.Level))
	if requested == "" {
		requested = "info"
	}
	if err := level.UnmarshalText([]byte(requested)); err != nil {
		// Логгера ещё нет, предупреждаем через stderr.
		fmt.Fprintf(os.Stderr, "unknown log level %q, falling back to info: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	output := cfg.OutputPath
	if output == "" {
		output = "stdout"
	}

	zapCfg := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          normalizeEncoding(cfg.Encoding),
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

func normalizeEncoding(encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "console":
		return "console"
	default:
		return "json"
	}
}
