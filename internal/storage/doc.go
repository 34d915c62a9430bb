// Package storage writes downloaded files to their destination.
//
// A Sink is either a local directory or a gocloud.dev/blob bucket. Open
// picks one from the target string: anything with a URL scheme
// ("file://", "mem://", "s3://", "gs://") is a bucket, everything else is a
// local path.
//
// # Writes
//
// Sink.Create returns a Writer. Data written to it stays invisible until
// Commit succeeds; Abort discards it. The local sink writes to a hidden temp
// file next to the destination and renames it into place. The bucket sink
// relies on the atomic object writes of the blob driver. A failed or
// interrupted transfer therefore never leaves a truncated file behind, and a
// previously downloaded copy at the same path survives until the new one is
// complete.
//
// # Names
//
// Remote names are used verbatim as path segments. Segments that would
// escape the destination or cannot be a single path element ("", ".", "..",
// names containing "/", "\" or NUL) are refused with ErrUnsafeName rather
// than rewritten.
//
// Bucket drivers are not imported here; the binary registers the ones it
// supports.
package storage
