package id3depad_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/simonhull/id3depad"
)

var audio = []byte{0xFF, 0xFB, 0x90, 0x64, 0xFF, 0x00, 0x12, 0x34}

// v4Padded is an ID3v2.4 tag with TIT2 "hello", a PRIV frame asking to be
// discarded and 10 bytes of padding.
func v4Padded() []byte {
	data := []byte("ID3\x04\x00\x00\x00\x00\x00\x26" +
		"TIT2\x00\x00\x00\x06\x00\x00\x03hello" +
		"PRIV\x00\x00\x00\x02\x40\x00ab")
	data = append(data, make([]byte, 10)...)
	return append(data, audio...)
}

// v4Minimal is v4Padded after processing.
func v4Minimal() []byte {
	data := []byte("ID3\x04\x00\x00\x00\x00\x00\x10TIT2\x00\x00\x00\x06\x00\x00\x03hello")
	return append(data, audio...)
}

// v4Declined is v4Padded with the PRIV frame kept.
func v4Declined() []byte {
	data := []byte("ID3\x04\x00\x00\x00\x00\x00\x1c" +
		"TIT2\x00\x00\x00\x06\x00\x00\x03hello" +
		"PRIV\x00\x00\x00\x02\x40\x00ab")
	return append(data, audio...)
}

// v3Padded is an ID3v2.3 tag with an extended header, TIT2 "hello" and
// 12 bytes of padding.
func v3Padded() []byte {
	data := []byte("ID3\x03\x00\x40\x00\x00\x00\x26" +
		"\x00\x00\x00\x06\x00\x00\x00\x00\x00\x00" +
		"TIT2\x00\x00\x00\x06\x00\x00\x00hello")
	data = append(data, make([]byte, 12)...)
	return append(data, audio...)
}

func v3Minimal() []byte {
	data := []byte("ID3\x03\x00\x00\x00\x00\x00\x10TIT2\x00\x00\x00\x06\x00\x00\x00hello")
	return append(data, audio...)
}

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTestFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// countingConfirmer records every frame it is asked about.
type countingConfirmer struct {
	mu     sync.Mutex
	asked  []string
	answer bool
}

func (c *countingConfirmer) ConfirmDiscard(frameID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, frameID)
	return c.answer
}

func TestDepad(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []byte
	}{
		{"v2.4 padding and discard frame", v4Padded(), v4Minimal()},
		{"v2.3 extended header and padding", v3Padded(), v3Minimal()},
		{"already minimal", v4Minimal(), v4Minimal()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, "song.mp3", tt.data)

			res, err := id3depad.Depad(path, id3depad.WithSilent())
			if err != nil {
				t.Fatalf("Depad failed: %v", err)
			}

			got := readTestFile(t, path)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("unexpected file\n got: % x\nwant: % x", got, tt.want)
			}
			if !bytes.HasSuffix(got, audio) {
				t.Error("audio payload not preserved")
			}
			if res.RemovedTotal() != len(tt.data)-len(tt.want) {
				t.Errorf("RemovedTotal = %d, want %d", res.RemovedTotal(), len(tt.data)-len(tt.want))
			}
		})
	}
}

func TestDepad_ConfirmerDeclines(t *testing.T) {
	path := writeTestFile(t, "song.mp3", v4Padded())
	c := &countingConfirmer{answer: false}

	res, err := id3depad.Depad(path, id3depad.WithConfirmer(c))
	if err != nil {
		t.Fatalf("Depad failed: %v", err)
	}

	if len(c.asked) != 1 || c.asked[0] != "PRIV" {
		t.Errorf("confirmer asked about %v, want [PRIV]", c.asked)
	}
	if got := readTestFile(t, path); !bytes.Equal(got, v4Declined()) {
		t.Errorf("unexpected file\n got: % x\nwant: % x", got, v4Declined())
	}
	if res.KeptFrames() != 2 {
		t.Errorf("KeptFrames = %d, want 2", res.KeptFrames())
	}
}

func TestDepad_SilentNeverAsks(t *testing.T) {
	path := writeTestFile(t, "song.mp3", v4Padded())
	c := &countingConfirmer{answer: false}

	if _, err := id3depad.Depad(path, id3depad.WithConfirmer(c), id3depad.WithSilent()); err != nil {
		t.Fatalf("Depad failed: %v", err)
	}

	if len(c.asked) != 0 {
		t.Errorf("silent mode asked about %v", c.asked)
	}
	if got := readTestFile(t, path); !bytes.Equal(got, v4Minimal()) {
		t.Error("silent mode did not discard the PRIV frame")
	}
}

func TestDepad_UnsupportedVersionLeavesFile(t *testing.T) {
	data := append([]byte("ID3\x05\x00\x00\x00\x00\x00\x0a"), make([]byte, 10)...)
	data = append(data, audio...)
	path := writeTestFile(t, "song.mp3", data)

	_, err := id3depad.Depad(path, id3depad.WithSilent(), id3depad.WithBackup(".bak"))
	if !errors.Is(err, id3depad.ErrVersionUnsupported) {
		t.Fatalf("expected ErrVersionUnsupported, got %v", err)
	}
	if code := id3depad.ExitCode(err); code != 2 {
		t.Errorf("ExitCode = %d, want 2", code)
	}
	if got := readTestFile(t, path); !bytes.Equal(got, data) {
		t.Error("file modified despite error")
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("backup created despite error")
	}
}

func TestDepad_NoWriteWhenMinimal(t *testing.T) {
	path := writeTestFile(t, "song.mp3", v4Minimal())
	old := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	res, err := id3depad.Depad(path, id3depad.WithBackup(".bak"))
	if err != nil {
		t.Fatalf("Depad failed: %v", err)
	}
	if res.Changed() {
		t.Errorf("expected no edits, got %v", res.Edits)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("file rewritten: mtime %v, want %v", info.ModTime(), old)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("backup created for an unchanged file")
	}
}

func TestDepad_Backup(t *testing.T) {
	path := writeTestFile(t, "song.mp3", v4Padded())

	if _, err := id3depad.Depad(path, id3depad.WithSilent(), id3depad.WithBackup(".bak")); err != nil {
		t.Fatalf("Depad failed: %v", err)
	}

	if got := readTestFile(t, path + ".bak"); !bytes.Equal(got, v4Padded()) {
		t.Error("backup does not hold the original file")
	}
	if got := readTestFile(t, path); !bytes.Equal(got, v4Minimal()) {
		t.Error("file not compacted")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected song.mp3 and its backup, got %d entries", len(entries))
	}
}

func TestDepad_PreserveModTime(t *testing.T) {
	path := writeTestFile(t, "song.mp3", v4Padded())
	old := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	if _, err := id3depad.Depad(path, id3depad.WithSilent(), id3depad.WithPreserveModTime()); err != nil {
		t.Fatalf("Depad failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime %v, want %v", info.ModTime(), old)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode %v, want 0644", info.Mode().Perm())
	}
}

func TestDepad_Validation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"v2.4", v4Padded()},
		{"v2.3", v3Padded()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, "song.mp3", tt.data)

			if _, err := id3depad.Depad(path, id3depad.WithSilent(), id3depad.WithValidation()); err != nil {
				t.Fatalf("Depad with validation failed: %v", err)
			}
		})
	}
}

func TestDepad_Recorder(t *testing.T) {
	path := writeTestFile(t, "song.mp3", v4Padded())
	rec := &recorder{}

	if _, err := id3depad.Depad(path, id3depad.WithSilent(), id3depad.WithRecorder(rec)); err != nil {
		t.Fatalf("Depad failed: %v", err)
	}

	if len(rec.paths) != 1 || rec.paths[0] != path {
		t.Errorf("recorder saw %v, want [%s]", rec.paths, path)
	}
}

type recorder struct {
	mu    sync.Mutex
	paths []string
	errs  []error
}

func (r *recorder) Observe(path string, _ *id3depad.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	r.errs = append(r.errs, err)
}

func TestInspect_DoesNotWrite(t *testing.T) {
	path := writeTestFile(t, "song.mp3", v4Padded())

	res, err := id3depad.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !res.Changed() || res.NewSize != 16 {
		t.Errorf("expected planned shrink to 16 bytes, got %d (changed=%v)", res.NewSize, res.Changed())
	}
	if got := readTestFile(t, path); !bytes.Equal(got, v4Padded()) {
		t.Error("Inspect modified the file")
	}
}

func TestDepadBytes(t *testing.T) {
	out, res, err := id3depad.DepadBytes(v4Padded())
	if err != nil {
		t.Fatalf("DepadBytes failed: %v", err)
	}
	if !bytes.Equal(out, v4Minimal()) {
		t.Errorf("unexpected output\n got: % x\nwant: % x", out, v4Minimal())
	}
	if res.OldSize != 38 || res.NewSize != 16 {
		t.Errorf("sizes %d -> %d, want 38 -> 16", res.OldSize, res.NewSize)
	}

	minimal := v4Minimal()
	out, _, err = id3depad.DepadBytes(minimal)
	if err != nil {
		t.Fatalf("DepadBytes failed: %v", err)
	}
	if &out[0] != &minimal[0] {
		t.Error("expected unchanged input to be returned as is")
	}

	if _, _, err := id3depad.DepadBytes([]byte("no tag")); !errors.Is(err, id3depad.ErrTagNotFound) {
		t.Errorf("expected ErrTagNotFound, got %v", err)
	}
}

func TestDepadMany(t *testing.T) {
	dir := t.TempDir()
	inputs := [][]byte{v4Padded(), v4Minimal(), v3Padded()}
	wants := [][]byte{v4Minimal(), v4Minimal(), v3Minimal()}

	paths := make([]string, len(inputs))
	for i, data := range inputs {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".mp3")
		if err := os.WriteFile(paths[i], data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results, err := id3depad.DepadMany(context.Background(), paths, id3depad.WithSilent())
	if err != nil {
		t.Fatalf("DepadMany failed: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}

	for i, res := range results {
		if res == nil {
			t.Fatalf("result %d is nil", i)
		}
		if got := readTestFile(t, paths[i]); !bytes.Equal(got, wants[i]) {
			t.Errorf("file %d: unexpected content % x", i, got)
		}
	}
	if results[0].Header.Major != 4 || results[2].Header.Major != 3 {
		t.Error("results not in input order")
	}
	if results[1].Changed() {
		t.Error("minimal file reported as changed")
	}
}

func TestDepadMany_Empty(t *testing.T) {
	results, err := id3depad.DepadMany(context.Background(), nil)
	if err != nil || results != nil {
		t.Errorf("expected nil, nil; got %v, %v", results, err)
	}
}

func TestDepadMany_Cancelled(t *testing.T) {
	paths := []string{
		writeTestFile(t, "a.mp3", v4Padded()),
		writeTestFile(t, "b.mp3", v4Padded()),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := id3depad.DepadMany(ctx, paths, id3depad.WithSilent())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for _, path := range paths {
		if got := readTestFile(t, path); !bytes.Equal(got, v4Padded()) {
			t.Errorf("%s modified after cancellation", path)
		}
	}
}

func TestDepadMany_StopsAfterError(t *testing.T) {
	paths := []string{
		writeTestFile(t, "a.mp3", v4Padded()),
		writeTestFile(t, "b.mp3", []byte("not an mp3 with a tag")),
		writeTestFile(t, "c.mp3", v4Padded()),
	}

	results, err := id3depad.DepadMany(context.Background(), paths,
		id3depad.WithSilent(), id3depad.WithConcurrency(1))
	if !errors.Is(err, id3depad.ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}

	if results[0] == nil {
		t.Error("result of the file written before the error was dropped")
	}
	if got := readTestFile(t, paths[0]); !bytes.Equal(got, v4Minimal()) {
		t.Error("first file not compacted")
	}
	if got := readTestFile(t, paths[2]); !bytes.Equal(got, v4Padded()) {
		t.Error("file after the error was processed")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"tag not found", id3depad.ErrTagNotFound, 1},
		{"version unsupported", &id3depad.TagError{Kind: id3depad.KindVersionUnsupported, Path: "a.mp3"}, 2},
		{"invalid flags", id3depad.ErrInvalidFlags, 3},
		{"truncated", id3depad.ErrTruncatedTag, 4},
		{"malformed", pkgerrors.Wrap(id3depad.ErrMalformedTag, "depad"), 5},
		{"io", pkgerrors.Wrap(os.ErrNotExist, "read file"), id3depad.ExitCodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := id3depad.ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
