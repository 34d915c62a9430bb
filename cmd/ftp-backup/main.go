package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitInvalidArgs     = 2
	ExitConfigError     = 3
	ExitConnectionError = 4
	ExitListingError    = 5
	ExitTransferError   = 6
	ExitInterrupted     = 7
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "help", "-h", "--help":
			printUsage()
			return ExitSuccess
		}
	}
	return runBackup(args, os.Stdout)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: ftp-backup [options] <target>

Mirror every file of an FTP server into target, keeping the directory
structure. target is a local directory or a bucket URL (file://, s3://,
gs://, mem://).

Connection settings come from the environment (FTP_HOST, FTP_USER,
FTP_PASSWORD), a .env file or a YAML config file.

Options may appear before or after the target.

Options:
  -t, -timestamp     Store the files in a subdirectory named after the start time
  -config string     YAML configuration file
  -env-file string   File of KEY=VALUE pairs to load (default ".env")
  -listing string    Directory listing strategy: detailed or paired (default "detailed")
  -timeout duration  Connection timeout (default 30s)
  -v                 Log FTP commands and skipped entries to stderr`)
}
