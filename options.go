package id3depad

import (
	"github.com/rs/zerolog"
)

// Option configures Depad, DepadMany and Inspect.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	res, err := id3depad.Depad("song.mp3",
//	    id3depad.WithBackup(".bak"),
//	    id3depad.WithValidation(),
//	)
type Option func(*options)

// Recorder observes the outcome of every processed file.
type Recorder interface {
	Observe(path string, res *Result, err error)
}

// options holds configuration for processing files.
type options struct {
	confirmer       Confirmer      // Decides discard requests; nil removes all
	logger          zerolog.Logger // Receives advisories and progress
	recorder        Recorder       // Optional outcome sink
	backupSuffix    string         // Suffix for backup file (e.g., ".bak")
	concurrency     int            // DepadMany worker limit (0 = runtime.NumCPU())
	validate        bool           // Re-read after write to verify
	preserveModTime bool           // Keep original modification time
	dryRun          bool           // Plan edits but never write
}

// defaultOptions returns the default configuration.
//
// Without options nothing is logged and every discardable frame is removed.
func defaultOptions() *options {
	return &options{
		logger: zerolog.Nop(),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// interactive reports whether a caller-supplied confirmer may block.
func (o *options) interactive() bool {
	return o.confirmer != nil
}

// WithSilent suppresses advisories and confirms every discard request.
//
// This is the "-s" mode of the command line tool: processing never
// blocks on a prompt and nothing is logged.
func WithSilent() Option {
	return func(o *options) {
		o.confirmer = nil
		o.logger = zerolog.Nop()
	}
}

// WithConfirmer asks c before removing a frame that requests discard.
//
// A confirmer may block, for example on a terminal prompt, so DepadMany
// processes files one at a time when one is set.
func WithConfirmer(c Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithLogger sends advisories and per-file progress to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder reports every processed file to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithBackup keeps the original file under path+suffix.
//
// For example, WithBackup(".bak") keeps "song.mp3.bak" before replacing
// "song.mp3". No backup is made when the file needs no change.
func WithBackup(suffix string) Option {
	return func(o *options) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-reads the file after writing to verify the tag parses.
func WithValidation() Option {
	return func(o *options) {
		o.validate = true
	}
}

// WithPreserveModTime keeps the original file modification time.
func WithPreserveModTime() Option {
	return func(o *options) {
		o.preserveModTime = true
	}
}

// WithDryRun plans the edits without writing anything.
func WithDryRun() Option {
	return func(o *options) {
		o.dryRun = true
	}
}

// WithConcurrency limits how many files DepadMany processes at once.
// Values below 1 mean runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
