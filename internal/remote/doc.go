// Package remote connects to the FTP server and lists its directories.
//
// The backup needs only a handful of FTP operations. They are captured by
// the Conn interface, which *ftp.Client from github.com/gonzalop/ftp
// satisfies directly:
//
//	client, err := remote.Dial(ctx, "ftp.example.com:21", user, password, remote.DefaultOptions())
//	if err != nil {
//	    return err // *remote.ConnectionError
//	}
//	defer client.Quit()
//
// # Listing
//
// A Lister turns one remote directory into entries with a name, a kind and a
// size. Two strategies exist:
//
//   - DetailedLister issues a single LIST and parses every line (Unix, DOS
//     and EPLF formats). Names, kinds and sizes always belong together.
//   - PairedLister issues NLST and LIST and pairs their rows by position,
//     taking the type from the first field and the size from the fifth.
//     Servers are not required to return both listings in the same order,
//     so prefer DetailedLister. Listings of different lengths fail with
//     ErrListingMismatch.
//
// Listers take explicit paths and never change the working directory of
// the connection.
package remote
