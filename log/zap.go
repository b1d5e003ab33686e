package log

import "go.uber.org/zap"

type zapLogger struct {
	zlg *zap.SugaredLogger
}

// NewZap adapts a zap logger. Fatalf exits the process the way zap does.
func NewZap(zlg *zap.Logger) Logger {
	return &zapLogger{zlg.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (z *zapLogger) Printf(format string, args ...interface{}) {
	z.zlg.Infof(format, args...)
}

func (z *zapLogger) Fatalf(format string, args ...interface{}) {
	z.zlg.Fatalf(format, args...)
}
