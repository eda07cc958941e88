package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

// GetEnv returns the trimmed value of key, or defaultVal when unset or blank.
func GetEnv(key, defaultVal string, log *logger.Logger) string {
	return lookupEnv(key, defaultVal, func(s string) (string, error) { return s, nil }, log)
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	return lookupEnv(key, defaultVal, strconv.Atoi, log)
}

// GetEnvAsDuration accepts "30s"-style durations or a bare number of seconds.
func GetEnvAsDuration(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
	return lookupEnv(key, defaultVal, parseDuration, log)
}

func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func lookupEnv[T any](key string, defaultVal T, parse func(string) (T, error), log *logger.Logger) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		debugEnv(log, "Environment variable not set, using default", key, defaultVal)
		return defaultVal
	}
	v, err := parse(raw)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable unparsable, using default", "env_var", key, "value", displayValue(key, raw), "error", err)
		}
		return defaultVal
	}
	debugEnv(log, "Environment variable found", key, v)
	return v
}

func debugEnv(log *logger.Logger, msg, key string, val any) {
	if log == nil {
		return
	}
	shown := val
	if s, ok := val.(string); ok {
		shown = displayValue(key, s)
	}
	log.Debug(msg, "env_var", key, "value", shown)
}

func displayValue(key, val string) string {
	k := strings.ToUpper(key)
	for _, secret := range []string{"PASSWORD", "SECRET", "DSN", "TOKEN"} {
		if strings.Contains(k, secret) {
			return "[REDACTED]"
		}
	}
	return val
}
