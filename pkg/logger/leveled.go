package logger

import "go.uber.org/zap"

// Leveled adapts zap to the key/value logger interface used by HTTP client
// libraries such as go-retryablehttp.
type Leveled struct {
	log *zap.SugaredLogger
}

func NewLeveled(l *zap.Logger) *Leveled {
	return &Leveled{log: l.Sugar()}
}

func (l *Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l *Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnw(msg, keysAndValues...)
}

func (l *Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.log.Infow(msg, keysAndValues...)
}

func (l *Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}
