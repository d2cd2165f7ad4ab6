package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config file, bad log level)
	ExitDataError   = 3 // Data error (unreadable or malformed input)
	ExitInterrupted = 4 // Citation fill stopped by a signal; progress was saved
)
