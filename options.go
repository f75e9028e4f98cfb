package imagestore

import "github.com/mwantia/imagestore/log"

type ServiceOptions struct {
	LogLevel      log.Level
	LogFile       string
	NoTerminalLog bool
}

type ServiceOption func(*ServiceOptions) error

func newDefaultServiceOptions() *ServiceOptions {
	return &ServiceOptions{
		LogLevel: log.Info,
	}
}

func WithLogLevel(logLevel log.Level) ServiceOption {
	return func(opts *ServiceOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithLogFile(logFile string) ServiceOption {
	return func(opts *ServiceOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithoutTerminalLog() ServiceOption {
	return func(opts *ServiceOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}
