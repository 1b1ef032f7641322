package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skx/minic/internal/config"
)

func TestDefaultOutputPathReplacesExtension(t *testing.T) {
	got := defaultOutputPath("/tmp/prog.mini", config.DefaultConfig())
	want := "/tmp/prog.s"
	if got != want {
		t.Errorf("defaultOutputPath(%q) = %q, want %q", "/tmp/prog.mini", got, want)
	}
}

func TestDefaultOutputPathHonorsConfiguredDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Dir = "/build"
	got := defaultOutputPath("/tmp/prog.mini", cfg)
	want := filepath.Join("/build", "prog.s")
	if got != want {
		t.Errorf("defaultOutputPath(%q) = %q, want %q", "/tmp/prog.mini", got, want)
	}
}

func TestRunProducesAssemblyFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "prog.mini")
	output := filepath.Join(dir, "prog.s")

	if err := os.WriteFile(source, []byte("fn main() -> int { return 42; }"), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	if err := run(source, output, config.DefaultConfig(), false); err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}

	contents, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected an assembly file to have been written: %v", err)
	}
	if !strings.Contains(string(contents), "_main:") {
		t.Errorf("expected the generated assembly to declare _main, got:\n%s", contents)
	}
}

func TestRunWithEmitTACDumpsInstructions(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "prog.mini")
	output := filepath.Join(dir, "prog.tac")

	if err := os.WriteFile(source, []byte("fn main() -> int { return 1 + 2; }"), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	if err := run(source, output, config.DefaultConfig(), true); err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}

	contents, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected a TAC dump to have been written: %v", err)
	}
	if !strings.Contains(string(contents), "FUNC_BEGIN") && !strings.Contains(string(contents), "FuncBegin") {
		t.Errorf("expected the TAC dump to mention the function prologue op, got:\n%s", contents)
	}
}

func TestRunReportsParseErrorsAndWritesNoFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "prog.mini")
	output := filepath.Join(dir, "prog.s")

	if err := os.WriteFile(source, []byte("fn main( -> int { return; }"), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	err := run(source, output, config.DefaultConfig(), false)
	if err == nil {
		t.Fatalf("expected a parse error for malformed input")
	}
	if _, statErr := os.Stat(output); statErr == nil {
		t.Errorf("expected no output file to be written after a failed compile")
	}
}

func TestRunRejectsUnresolvedExternWhenConfiguredStrict(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "prog.mini")
	output := filepath.Join(dir, "prog.s")

	src := `
		extern int g;
		fn main() -> int { return g; }
	`
	if err := os.WriteFile(source, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Linkage.StrictExtern = true
	if err := run(source, output, cfg, false); err == nil {
		t.Errorf("expected an unresolved extern to be rejected under a strict linkage config")
	}
}

func TestRunReportsMissingSourceAsIOError(t *testing.T) {
	dir := t.TempDir()
	err := run(filepath.Join(dir, "missing.mini"), filepath.Join(dir, "out.s"), config.DefaultConfig(), false)
	if err == nil {
		t.Fatalf("expected an error for a missing source file")
	}
}
