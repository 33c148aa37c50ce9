// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "default hides debug", verbose: false, wantDebug: false},
		{name: "verbose shows debug", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, Options{Verbose: tt.verbose})
			logger.Debug("materialized workspace", "files", 3)
			logger.Info("provisioned storage", "volume", "pvc-1")

			out := buf.String()
			if got := strings.Contains(out, "materialized workspace"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "provisioned storage") || !strings.Contains(out, "pvc-1") {
				t.Errorf("info line missing:\n%s", out)
			}
			if !strings.Contains(out, Prefix) {
				t.Errorf("output lacks prefix %q:\n%s", Prefix, out)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, Options{JSON: true}).With("execution", "exec-1").Warn("skipping log upload")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "skipping log upload" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["execution"] != "exec-1" {
		t.Errorf("execution = %v", rec["execution"])
	}
}

func TestInstall(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := Install(&buf, Options{})
	if slog.Default() != logger {
		t.Error("Install() did not set the default logger")
	}
	slog.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("default logger output = %q", buf.String())
	}
}
