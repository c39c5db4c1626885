package config

const (
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLogDir         = "~/.local/share/beacon/logs"
	defaultJournalDir     = "~/.local/share/beacon/journal"
	defaultStreamCapacity = 512
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
		Journal: Journal{
			Enabled: true,
			Dir:     defaultJournalDir,
		},
		Stream: Stream{
			Capacity: defaultStreamCapacity,
		},
		Hub: Hub{
			Replay: false,
		},
	}
}
