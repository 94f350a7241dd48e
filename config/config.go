package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
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
	logLevel := os.Getenv("USUARIOS_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("USUARIOS_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("USUARIOS_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/usuarios"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("USUARIOS_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetMailAPIKey returns the transactional mail provider credential. Read
// once at startup and injected into the mail sender, never fetched again at
// send time.
func GetMailAPIKey() string {
	return os.Getenv("USUARIOS_MAIL_API_KEY")
}
