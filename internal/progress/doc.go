// Package progress formats sizes and prints backup progress.
//
// Output is plain lines written to stdout, one per discovered file and one
// per transferred file.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{Output: os.Stdout})
//
//	reporter.StartBatch(indexWidth, longestPath)
//	reporter.FileStarted(rec)  // prefix, flushed before the transfer
//	// ... transfer ...
//	reporter.FileFinished(rec) // elapsed times, ends the line
//
// # Output Format
//
//	1 Found: docs/readme.txt
//	2 Found: images/logo.png
//	1/2 docs/readme.txt |    2 KiB | 0.012s | 0.012s
//	2/2 images/logo.png |   14 MiB | 1.873s | 1.886s
//	Total time taken: 2.104s
//
// # Sizes
//
// Humanize converts byte counts to binary units (B, KiB, MiB, ... YiB) and
// rounds half away from zero.
package progress
