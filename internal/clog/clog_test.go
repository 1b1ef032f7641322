package clog_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/skx/minic/internal/clog"
)

func TestSilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	clog.SetOutput(&buf)
	clog.SetVerbose(false)

	clog.Debugf("symbol %s assigned offset %d", "x", -8)

	if buf.Len() != 0 {
		t.Errorf("expected no output at the default level, got %q", buf.String())
	}
}

func TestVerboseEmitsDebugLines(t *testing.T) {
	var buf bytes.Buffer
	clog.SetOutput(&buf)
	clog.SetVerbose(true)
	defer clog.SetVerbose(false)

	clog.Debugf("label %s allocated", "Lloop1_start")

	if !strings.Contains(buf.String(), "Lloop1_start") {
		t.Errorf("expected the debug line to reach the writer, got %q", buf.String())
	}
}

func TestStageIsAlwaysVisible(t *testing.T) {
	var buf bytes.Buffer
	clog.SetOutput(&buf)
	clog.SetVerbose(false)

	clog.Stage("generating TAC")

	if !strings.Contains(buf.String(), "generating TAC") {
		t.Errorf("expected an INFO-level stage line even without --verbose, got %q", buf.String())
	}
}
