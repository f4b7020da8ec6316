package logger

import (
	stdLog "log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log struct {
	LogLevel zapcore.Level `yaml:"level" envconfig:"LOG_LEVEL"`
	// Sink is a file path, empty means stdout.
	Sink string `yaml:"sink" envconfig:"LOG_SINK"`
}

func NewLogger(cfg Log, name string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	sink := "stdout"
	if cfg.Sink != "" {
		sink = cfg.Sink
	}
	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(cfg.LogLevel),
		Encoding:         "json",
		EncoderConfig:    encCfg,
		OutputPaths:      []string{sink},
		ErrorOutputPaths: []string{"stderr"},
	}
	log, err := zapCfg.Build()
	if err != nil {
		stdLog.Fatal("logger build ", err)
	}
	return log.Named(name)
}
