package config

import (
	"flag"
	"os"
	"time"

	"github.com/srolel/passkeep/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   public base URL used in mail links
//	-d string   PostgreSQL DSN
//	-p string   secret pepper for token digests
//	-r string   redis address for the login limiter (empty disables it)
//	-s int      session cookie max age, minutes
//	-t int      recovery token validity, minutes
//	-k          mark cookies Secure
//
// SMTP settings are only configurable through the JSON file.
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-p", "-r", "-s", "-t", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "public base URL for mail links")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretPepper, "p", config.SecretPepper, "secret pepper")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for login limiter")

	sessionMaxAge := fs.Int("s", int(config.SessionMaxAge.Minutes()), "session_max_age (in minutes)")
	recoveryTokenTTL := fs.Int("t", int(config.RecoveryTokenTTL.Minutes()), "recovery_token_ttl (in minutes)")

	fs.BoolVar(&config.SecureCookies, "k", config.SecureCookies, "mark cookies Secure")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionMaxAge = time.Duration(*sessionMaxAge) * time.Minute
	config.RecoveryTokenTTL = time.Duration(*recoveryTokenTTL) * time.Minute
}
