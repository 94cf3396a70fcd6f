package domain

import "context"

type Database interface {
	Backup(ctx context.Context, outputPath string) error
	GetName() string
	GetType() string
	// Extension is the suffix of the files Backup writes, compression included.
	Extension() string
	Ping(ctx context.Context) error
}

// CommandRunner executes a rendered shell command-line and surfaces its exit
// status as an error.
type CommandRunner interface {
	Run(ctx context.Context, command string) error
}
