package id3depad

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/id3depad/internal/id3v2"
)

// Result is an alias to id3v2.Result.
// It describes the tag found in a file and the edits made to it.
type Result = id3v2.Result

// Header is an alias to id3v2.Header.
type Header = id3v2.Header

// Frame is an alias to id3v2.Frame.
type Frame = id3v2.Frame

// Edit is an alias to id3v2.Edit.
type Edit = id3v2.Edit

// ByteRange is an alias to id3v2.ByteRange.
type ByteRange = id3v2.ByteRange

// Confirmer is an alias to id3v2.Confirmer.
type Confirmer = id3v2.Confirmer

// ConfirmFunc is an alias to id3v2.ConfirmFunc.
type ConfirmFunc = id3v2.ConfirmFunc

// ConfirmAll removes every frame that asks to be discarded.
var ConfirmAll = id3v2.ConfirmAll

// Depad shrinks the ID3v2 tag of the file at path to its minimal form and
// overwrites the file.
//
// Padding, the extended header, unsynchronization bytes and (if confirmed)
// frames flagged for discard are removed. Everything after the tag is
// kept byte for byte. When the tag is already minimal the file is not
// touched.
//
// Tag errors (*TagError) are returned before anything is written.
//
// Example:
//
//	res, err := id3depad.Depad("song.mp3", id3depad.WithSilent())
//	if err != nil {
//		os.Exit(id3depad.ExitCode(err))
//	}
//	fmt.Printf("removed %d bytes\n", res.RemovedTotal())
func Depad(path string, opts ...Option) (*Result, error) {
	o := applyOptions(opts)

	res, err := depadFile(path, o)
	if o.recorder != nil {
		o.recorder.Observe(path, res, err)
	}
	return res, err
}

// Inspect reports what Depad would do without writing anything.
func Inspect(path string, opts ...Option) (*Result, error) {
	return Depad(path, append(opts, WithDryRun())...)
}

// DepadBytes processes an in-memory file and returns the compacted bytes.
//
// When nothing changes, data itself is returned.
func DepadBytes(data []byte, opts ...Option) ([]byte, *Result, error) {
	o := applyOptions(opts)

	res, err := id3v2.Process(data, id3v2.Options{
		Confirmer: o.confirmer,
		Advisor:   advisor(o.logger),
	})
	if err != nil {
		return nil, nil, err
	}
	if !res.Changed() {
		return data, res, nil
	}

	out, err := res.Bytes()
	if err != nil {
		return nil, res, errors.Wrap(err, "compact")
	}
	return out, res, nil
}

// DepadMany processes multiple files concurrently.
//
// Files are processed in parallel using up to runtime.NumCPU() goroutines,
// or the limit set with WithConcurrency. With WithConfirmer, files are
// processed one at a time so prompts never interleave.
//
// Results are returned in the same order as the input paths. The first
// error cancels files that have not started yet; files already written
// stay written and their results are kept.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
//	defer cancel()
//
//	results, err := id3depad.DepadMany(ctx, paths, id3depad.WithSilent())
//	if err != nil {
//		log.Fatal(err)
//	}
func DepadMany(ctx context.Context, paths []string, opts ...Option) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	o := applyOptions(opts)

	limit := o.concurrency
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	if o.interactive() {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]*Result, len(paths))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			// Check for cancellation
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := depadFile(path, o)
			if o.recorder != nil {
				o.recorder.Observe(path, res, err)
			}
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	return results, nil
}

// depadFile reads, plans and (unless dry-run) rewrites one file.
func depadFile(path string, o *options) (*Result, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With().Str("path", path).Logger()

	res, err := id3v2.Process(data, id3v2.Options{
		Path:      path,
		Confirmer: o.confirmer,
		Advisor:   advisor(logger),
	})
	if err != nil {
		return nil, err
	}

	if !res.Changed() {
		logger.Debug().Str("version", res.Header.String()).Msg("tag already minimal")
		return res, nil
	}

	if o.dryRun {
		logger.Info().
			Uint32("old_size", res.OldSize).
			Uint32("new_size", res.NewSize).
			Int("edits", len(res.Edits)).
			Msg("dry run, file not written")
		return res, nil
	}

	if err := save(path, res, o); err != nil {
		return res, err
	}

	logger.Info().
		Str("version", res.Header.String()).
		Uint32("old_size", res.OldSize).
		Uint32("new_size", res.NewSize).
		Int("edits", len(res.Edits)).
		Msg("tag compacted")

	return res, nil
}

// advisor forwards non-fatal warnings to the logger.
func advisor(logger zerolog.Logger) id3v2.Advisor {
	return id3v2.AdvisorFunc(func(w Warning) {
		logger.Warn().
			Str("stage", w.Stage).
			Int64("offset", w.Offset).
			Msg(w.Message)
	})
}
