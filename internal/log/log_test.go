package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
)

// useTempLogDir points session logs at a temp dir and restores globals afterwards.
func useTempLogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	originalDir := logDirFunc
	originalLoggingEnabled := loggingEnabled
	logDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() {
		logDirFunc = originalDir
		loggingEnabled = originalLoggingEnabled
		currentSession = nil
	})
	return dir
}

func TestLogSession(t *testing.T) {
	useTempLogDir(t)
	loggingEnabled = true

	err := StartSession("movie", []string{"--id", "603"})
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	if currentSession == nil {
		t.Fatal("StartSession() should have created a session")
	}

	want := []string{"movie", "--id", "603"}
	if diff := cmp.Diff(want, currentSession.Metadata.CommandArgs); diff != "" {
		t.Errorf("CommandArgs mismatch (-want +got)\n%s", diff)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	useTempLogDir(t)
	loggingEnabled = true

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		if err := StartSession("movie", nil); err != nil {
			t.Fatalf("StartSession() failed: %v", err)
		}
		id := currentSession.Metadata.SessionID
		if seen[id] {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, currentSession.Metadata.Timestamp.Format("20060102_150405")+"_") {
			t.Errorf("session id %s does not start with its timestamp", id)
		}
	}
}

func TestLogTag(t *testing.T) {
	useTempLogDir(t)
	loggingEnabled = true

	if err := StartSession("season", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	LogTag(OpTagMovie, "movie.mp4", "apple", "movie 603", true, nil)
	LogTag(OpTagEpisode, "ep1.mkv", "matroska", "tv 1396 s01e01", true, nil)
	LogTag(OpTagEpisode, "ep2.mkv", "matroska", "tv 1396 s01e02", false, os.ErrPermission)

	if len(currentSession.Operations) != 3 {
		t.Fatalf("Expected 3 operations, got %d", len(currentSession.Operations))
	}

	updateStats()

	if currentSession.Metadata.SuccessfulOps != 2 {
		t.Errorf("Expected 2 successful operations, got %d", currentSession.Metadata.SuccessfulOps)
	}
	if currentSession.Metadata.FailedOps != 1 {
		t.Errorf("Expected 1 failed operation, got %d", currentSession.Metadata.FailedOps)
	}

	errorOp := currentSession.Operations[2]
	if errorOp.Success || errorOp.Error == "" {
		t.Errorf("Expected failed operation with error message, got %+v", errorOp)
	}
	if errorOp.Format != "matroska" || errorOp.Subject != "tv 1396 s01e02" {
		t.Errorf("Unexpected operation fields: %+v", errorOp)
	}
}

func TestEndSessionWritesAndReadsBack(t *testing.T) {
	dir := useTempLogDir(t)
	loggingEnabled = true

	if err := StartSession("movie", []string{"movie.mp4"}); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	LogTag(OpTagMovie, "movie.mp4", "apple", "movie 603", false, errors.New("save failed"))

	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	if currentSession != nil {
		t.Error("EndSession() should clear the current session")
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 1 {
		t.Fatalf("Expected 1 session file, got %d", len(files))
	}

	sessions, err := ReadSessions(10)
	if err != nil {
		t.Fatalf("ReadSessions() failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}

	got := sessions[0]
	if got.Metadata.TotalOps != 1 || got.Metadata.FailedOps != 1 {
		t.Errorf("Unexpected stats: %+v", got.Metadata)
	}
	wantOp := OperationLog{Type: OpTagMovie, Path: "movie.mp4", Format: "apple", Subject: "movie 603", Error: "save failed"}
	if diff := cmp.Diff(wantOp, got.Operations[0], cmpopts.IgnoreFields(OperationLog{}, "ID", "Timestamp")); diff != "" {
		t.Errorf("Operation mismatch (-want +got)\n%s", diff)
	}
}

func TestReadSessionsSkipsCorruptFiles(t *testing.T) {
	dir := useTempLogDir(t)
	if err := os.WriteFile(filepath.Join(dir, "2020-01-01_000000.000.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	sessions, err := ReadSessions(0)
	if err != nil {
		t.Fatalf("ReadSessions() failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Expected corrupt file to be skipped, got %d sessions", len(sessions))
	}
}

func TestInitializeRemovesExpiredLogs(t *testing.T) {
	dir := useTempLogDir(t)
	oldFile := filepath.Join(dir, "old.json")
	newFile := filepath.Join(dir, "new.json")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -45)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatal(err)
	}

	Initialize(true, 30)

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("Expected expired log to be removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Error("Expected recent log to be kept")
	}
}

func TestLoggingDisabled(t *testing.T) {
	useTempLogDir(t)
	Initialize(false, 30)

	if err := StartSession("movie", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if currentSession != nil {
		t.Error("Session should not be created when logging is disabled")
	}

	LogTag(OpTagMovie, "movie.mp4", "apple", "", true, nil)
	if currentSession != nil {
		t.Error("Operations should not create session when logging disabled")
	}

	if err := EndSession(); err != nil {
		t.Errorf("EndSession() with logging disabled error = %v, want nil", err)
	}
}

func TestEndSessionWithNilSession(t *testing.T) {
	useTempLogDir(t)
	Initialize(true, 30)
	currentSession = nil

	if err := EndSession(); err != nil {
		t.Errorf("EndSession() with nil session error = %v, want nil", err)
	}
}

func TestSetLevel(t *testing.T) {
	original := Logger().GetLevel()
	defer Logger().SetLevel(original)

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug) failed: %v", err)
	}
	if Logger().GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Logger().GetLevel())
	}
	if err := SetLevel("loud"); err == nil {
		t.Error("SetLevel(loud) should fail")
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Logger().WithFields(logrus.Fields{"file": "movie.mp4", "kind": "save"}).Warn("tagging failed")

	out := buf.String()
	for _, want := range []string{"tagging failed", "file=movie.mp4", "kind=save"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
