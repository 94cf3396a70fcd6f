package domain

// Compressor is a pipeline stage the dump stream is piped through before it
// reaches the output file.
type Compressor interface {
	// UseCommand returns the shell invocation token, e.g. "gzip".
	// An empty token means the dump is written uncompressed.
	UseCommand() string
	// Extension returns the file suffix the stage produces, e.g. ".gz".
	Extension() string
}
