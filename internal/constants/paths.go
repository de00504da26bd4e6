package constants

// Directory names and paths used by signet for organizing data.
const (
	// SignetHome is the hidden directory name where signet stores all its data.
	// This directory is created in the user's home directory.
	SignetHome = ".signet"

	// HomeEnvVar overrides the location of SignetHome.
	HomeEnvVar = "SIGNET_HOME"

	// DataDir is the directory name where the file store keeps its state.
	DataDir = "data"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// IdentitiesDir holds one JSON file per identity.
	IdentitiesDir = "identities"

	// SignaturesDir holds one JSON file per signature record.
	SignaturesDir = "signatures"

	// IndexDir holds the (hash, signature) composite key index.
	IndexDir = "index"

	// AttemptsDir holds one append-only JSONL log per signature record.
	AttemptsDir = "attempts"
)

// File names and extensions.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.signet/logs/signet.log
	CLILogFileName = "signet.log"

	// GlobalConfigName is the name of the configuration file, both in
	// ~/.signet and in a project's .signet directory.
	GlobalConfigName = "config.yaml"

	// JSONExt is the extension of record and identity files.
	JSONExt = ".json"

	// JSONLExt is the extension of attempt logs.
	JSONLExt = ".jsonl"

	// LockExt is appended to a path to name its lock file.
	LockExt = ".lock"
)
