package logger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/op/go-logging"
)

func TestGetLogs(t *testing.T) {
	t.Setenv("USUARIOS_LOG_FOLDER", t.TempDir())
	InitLogger(logging.DEBUG)
	defer CloseLogger()

	logBuffer = nil
	for i := 0; i < 10; i++ {
		Info("info entry", i)
	}
	Debug("debug entry")

	tests := []struct {
		name  string
		count int
		level string
		want  int
	}{
		{"fewer than buffered", 5, "INFO", 5},
		{"exactly buffered", 10, "INFO", 10},
		{"more than buffered", 50, "INFO", 10},
		{"level filter includes lower", 50, "DEBUG", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetLogs(tt.count, tt.level)
			if len(got) != tt.want {
				t.Fatalf("GetLogs(%d, %q) returned %d entries, want %d", tt.count, tt.level, len(got), tt.want)
			}
		})
	}

	t.Run("newest first", func(t *testing.T) {
		got := GetLogs(2, "INFO")
		want := fmt.Sprint("info entry", 9)
		if len(got) != 2 || !strings.HasSuffix(got[0], want) {
			t.Fatalf("GetLogs(2, INFO) = %v, want newest entry %q first", got, want)
		}
	})
}
