package config

// Application constants
const (
	AppName    = "rankpulse"
	AppVersion = "1.0.0"

	// File paths (relative to the working directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"

	// Uploads
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	// Keyword table
	DefaultTopN = 50
	MinTopN     = 10
	MaxTopN     = 100

	// Historical comparison
	DefaultMoversLimit      = 20
	DefaultMaxParallelFiles = 4
)
