package os

import "os"

// Get environment variable. If missing/empty, return fallback value.
func GetEnvOr(name, fallback string) string {
	val := os.Getenv(name)
	if val == "" {
		return fallback
	}
	return val
}

// Get environment variable. If missing/empty, return the result of fallback.
//
// fallback is not called when the variable has a value.
func GetEnvOrElse(name string, fallback func() string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return fallback()
}
