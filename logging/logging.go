package logging

import "go.uber.org/zap"

// New returns a sugared logger named after the component that holds it
func New(component string) *zap.SugaredLogger {
	return zap.L().Named(component).Sugar()
}
