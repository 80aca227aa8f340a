// Package id3depad shrinks ID3v2 tags to their minimal form.
//
// An ID3v2 tag can carry bytes that no reader needs: trailing padding, an
// extended header, unsynchronization bytes inserted for old MPEG decoders,
// and frames that ask to be dropped once the file is altered. id3depad
// removes all of them and rewrites the tag header so the stated size
// matches what is left. The audio that follows the tag is kept byte for
// byte.
//
// # Quick Start
//
// Compacting a single file:
//
//	res, err := id3depad.Depad("song.mp3", id3depad.WithSilent())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%s: %d -> %d bytes\n", res.Header, res.OldSize, res.NewSize)
//
// # Supported Versions
//
//   - ID3v2.2: padding and legacy unsynchronization
//   - ID3v2.3: everything above plus the extended header and discard frames
//   - ID3v2.4: per-frame unsynchronization and synchsafe frame sizes
//
// Tags newer than ID3v2.4 are rejected with ErrVersionUnsupported and the
// file is left untouched.
//
// # Discard Frames
//
// A frame may set a flag asking to be dropped when the file changes. By
// default those frames are removed. Pass WithConfirmer to decide per frame:
//
//	res, err := id3depad.Depad(path, id3depad.WithConfirmer(
//		id3depad.ConfirmFunc(func(id string) bool {
//			return id != "PRIV"
//		}),
//	))
//
// # Batch Processing
//
//	ctx := context.Background()
//	results, err := id3depad.DepadMany(ctx, paths, id3depad.WithBackup(".bak"))
//
// # Error Handling
//
// Malformed input returns a *TagError before anything is written. Use
// errors.Is with the Err* sentinels, or ExitCode to map an error to the
// exit status of the command line tool:
//
//	if errors.Is(err, id3depad.ErrTagNotFound) {
//		// not an ID3v2 file
//	}
package id3depad
