package utils

import (
	"sync"

	"go.uber.org/zap"
)

var (
	Logger     *zap.Logger
	loggerOnce sync.Once
)

func InitLogger() {
	loggerOnce.Do(func() {
		if Logger != nil {
			return
		}
		var err error
		Logger, err = zap.NewProduction()
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	})
}

func GetLogger() *zap.Logger {
	if Logger == nil {
		InitLogger()
	}
	return Logger
}

// SetLogger replaces the global logger, mainly so binaries can share theirs
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		Logger = logger
	}
}
