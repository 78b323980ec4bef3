package index

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger replaces the package logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l.Named("index")
	}
}
