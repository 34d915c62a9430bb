// Package downloader transfers the files of a manifest from an FTP
// connection into a storage sink.
//
// # Usage
//
//	err := downloader.DownloadAll(ctx, conn, m, sink, downloader.Options{
//	    Reporter: progress.NewReporter(progress.Options{}),
//	})
//
// # Transfers
//
// Files are fetched one at a time, in manifest order, in binary mode. Each
// transfer prints a progress line: the prefix (index, path and size) before
// the data moves and the timings once the file has been committed.
//
// # Failures
//
// The first failure stops the batch. The partially written file is
// discarded, so the destination never holds a truncated copy, and the error
// is returned as a *TransferError naming the file and the failed step.
package downloader
