// internal/logger/config.go
package logger

type Config struct {
	LogFile     string
	MaxSize     int  // megabytes
	MaxAge      int  // days
	MaxBackups  int  // rotated files kept
	Compress    bool // gzip rotated files
	Development bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "token-launcher.log",
		MaxSize:     50,
		MaxAge:      14,
		MaxBackups:  5,
		Compress:    true,
		Development: false,
	}
}
