package core

import "github.com/tripmesh/tripmesh/logging"

// loggerAdapter gives contexts embedded logging methods backed by a
// guaranteed non-nil logging.Logger (nil falls back to NoOpLogger).
type loggerAdapter struct {
	logger logging.Logger
}

func newLoggerAdapter(l logging.Logger) *loggerAdapter {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &loggerAdapter{logger: l}
}

// Logger returns the underlying logger.
func (l *loggerAdapter) Logger() logging.Logger { return l.logger }

func (l *loggerAdapter) LogDebug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *loggerAdapter) LogInfo(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *loggerAdapter) LogWarn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *loggerAdapter) LogError(msg string, args ...any) { l.logger.Error(msg, args...) }
