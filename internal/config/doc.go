// Package config defines configuration for the ftp-backup CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (FTP_ prefix)
//   - A .env file, loaded into the environment
//   - YAML configuration file
//
// Later sources override earlier ones: defaults, YAML file, environment,
// flags. Values already present in the process environment are never
// replaced by the .env file.
//
// # Structure
//
//	type Config struct {
//	    Host      string
//	    User      string
//	    Password  string
//	    Target    string
//	    Timestamp bool
//	    Listing   string
//	    Timeout   time.Duration
//	    Verbose   bool
//	}
package config
