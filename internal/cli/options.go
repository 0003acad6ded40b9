package cli

import (
	"os"
	"strings"
)

// EnvEncryptionKey holds a 32 byte session encryption key. A comma separated
// list rotates keys: the first encrypts, every key decrypts.
const EnvEncryptionKey = "WAYPOINT_ENCRYPTION_KEY"

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ConfigPath string
	SessionID  string
	Route      string
	Fresh      bool
	Headless   bool
	JSON       bool
	Watch      bool
	ReadOnly   bool

	Store StoreOptions
	Log   LogOptions
}

// StoreOptions selects where sessions are persisted.
type StoreOptions struct {
	// Dir is the file store directory. Ignored when RedisAddr is set.
	Dir       string
	RedisAddr string
	RedisDB   int
	// Mask lists regular expressions of context and query keys to redact.
	Mask []string
}

// LogOptions configures the application logger.
type LogOptions struct {
	Debug  bool
	Level  string
	Format string
}

func encryptionKeys() [][]byte {
	raw := os.Getenv(EnvEncryptionKey)
	if raw == "" {
		return nil
	}
	var keys [][]byte
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}
	return keys
}
