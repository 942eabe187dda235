// Package logger builds the application's structured logger.
package logger

import (
	"go.uber.org/zap"
)

// NewLogger creates and returns a new development SugaredLogger.
func NewLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
