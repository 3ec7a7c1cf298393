package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func TestErrorIncludesErrorField(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "info")
	t.Cleanup(func() { Init(os.Stderr, "info") })

	Error("persist failed", errors.New("disk full"), Fields{"pet_id": "p1"})

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "persist failed" || line["error"] != "disk full" || line["pet_id"] != "p1" {
		t.Fatalf("unexpected line %v", line)
	}
	if line["level"] != "ERROR" {
		t.Fatalf("unexpected level %v", line["level"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "info")
	t.Cleanup(func() { Init(os.Stderr, "info") })

	Debug("noisy", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
	Init(&buf, "debug")
	Debug("noisy", nil)
	if buf.Len() == 0 {
		t.Fatalf("expected debug output at debug level")
	}
}
