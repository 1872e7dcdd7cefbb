package utils

import "go.uber.org/zap"

// NewLogger returns a console logger at debug level in development and a
// JSON production logger otherwise.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
