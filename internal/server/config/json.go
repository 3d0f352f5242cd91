package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/srolel/passkeep/internal/flagx"
	"github.com/srolel/passkeep/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr       string         `json:"endpoint_addr"`
	BaseURL            string         `json:"base_url"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretPepper       string         `json:"secret_pepper"`
	SessionMaxAge      timex.Duration `json:"session_max_age"`
	RecoveryTokenTTL   timex.Duration `json:"recovery_token_ttl"`
	SecureCookies      bool           `json:"secure_cookies"`
	RedisAddr          string         `json:"redis_addr"`
	LoginMaxAttempts   int            `json:"login_max_attempts"`
	LoginAttemptWindow timex.Duration `json:"login_attempt_window"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUsername       string         `json:"smtp_username"`
	SMTPPassword       string         `json:"smtp_password"`
	MailFrom           string         `json:"mail_from"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.BaseURL = c.BaseURL
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretPepper = c.SecretPepper
	config.SessionMaxAge = time.Duration(c.SessionMaxAge.Duration)
	config.RecoveryTokenTTL = time.Duration(c.RecoveryTokenTTL.Duration)
	config.SecureCookies = c.SecureCookies
	config.RedisAddr = c.RedisAddr
	config.LoginMaxAttempts = c.LoginMaxAttempts
	config.LoginAttemptWindow = time.Duration(c.LoginAttemptWindow.Duration)
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.MailFrom = c.MailFrom
}
