package config

import (
	"bytes"
	"testing"
)

func TestReportWritesLineAndStatus(t *testing.T) {
	var buf bytes.Buffer
	if code := report(&buf, "Error: %s", "slot 9"); code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
	if buf.String() != "Error: slot 9\n" {
		t.Fatalf("output = %q", buf.String())
	}
}
