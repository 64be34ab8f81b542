// Package config exposes environment-driven configuration for the
// clubboard server. A local .env file is honored before the process
// environment is read.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const defaultSessionMaxAge = 24 * 60 * 60 // one day, in seconds

func init() {
	// Missing .env is fine, the environment wins either way.
	_ = godotenv.Load()
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("CLUB_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("CLUB_DEBUG") == "true"
}

func GetListenAddr() string {
	addr := os.Getenv("CLUB_LISTEN")
	if addr == "" {
		addr = ":3000"
	}
	return addr
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("CLUB_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "data"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("CLUB_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetSessionSecret returns the key used to authenticate session cookies.
func GetSessionSecret() string {
	return os.Getenv("CLUB_SESSION_SECRET")
}

// GetMembershipPasscode returns the shared secret that unlocks member status.
func GetMembershipPasscode() string {
	return os.Getenv("CLUB_MEMBERSHIP_PASSCODE")
}

// GetSessionMaxAge returns the session lifetime in seconds.
func GetSessionMaxAge() int {
	raw := os.Getenv("CLUB_SESSION_MAX_AGE")
	if raw == "" {
		return defaultSessionMaxAge
	}
	maxAge, err := strconv.Atoi(raw)
	if err != nil || maxAge <= 0 {
		return defaultSessionMaxAge
	}
	return maxAge
}
