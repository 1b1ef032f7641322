// This is the main-driver for our compiler.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/codegen"
	"github.com/skx/minic/internal/clog"
	"github.com/skx/minic/internal/config"
	"github.com/skx/minic/lexer"
	"github.com/skx/minic/parser"
	"github.com/skx/minic/semantics"
	"github.com/skx/minic/tac"
)

var verbose bool
var emitTAC bool

var command = &cobra.Command{
	Use:           "minic source [-o output.s]",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		clog.SetVerbose(verbose)

		cfg, err := config.Load("minic.toml")
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = defaultOutputPath(args[0], cfg)
		}

		return run(args[0], output, cfg, emitTAC)
	},
}

func init() {
	command.Flags().StringP("output", "o", "", "path to write the generated assembly to")
	command.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each pipeline stage, and per-declaration detail")
	command.Flags().BoolVar(&emitTAC, "emit-tac", false, "dump the three-address-code stream instead of assembling it")
}

// defaultOutputPath replaces source's extension with ".s" and places
// the result under cfg's configured output directory, per spec.md §6's
// "one source path in, one assembly path out" contract.
func defaultOutputPath(source string, cfg *config.Config) string {
	ext := filepath.Ext(source)
	name := strings.TrimSuffix(filepath.Base(source), ext) + ".s"
	if cfg.Output.Dir == "" || cfg.Output.Dir == "." {
		return filepath.Join(filepath.Dir(source), name)
	}
	return filepath.Join(cfg.Output.Dir, name)
}

func run(source, output string, cfg *config.Config, dumpTAC bool) error {
	src, err := os.ReadFile(source)
	if err != nil {
		return cmderr.IO("reading %q: %s", source, err)
	}

	clog.Stage("lexing")
	prog, err := parser.ParseProgram(lexer.New(string(src)))
	if err != nil {
		return err
	}

	clog.Stage("parsing")

	clog.Stage("analyzing")
	analyzer := semantics.New()
	analyzer.SetStrictExterns(cfg.Linkage.StrictExtern)
	if err := analyzer.Analyze(prog); err != nil {
		return err
	}

	clog.Stage("generating TAC")
	gen := tac.NewGenerator(analyzer.Global())
	instrs, err := gen.Generate(prog)
	if err != nil {
		return err
	}

	if dumpTAC {
		return writeFile(output, dumpInstructions(instrs))
	}

	clog.Stage("assembling")
	asm := codegen.NewAssembler(analyzer.Global(), gen.PoolTable())
	asm.SetSDKVersion(cfg.Target.SDKVersion)
	out, err := asm.Assemble(instrs)
	if err != nil {
		return err
	}

	return writeFile(output, out)
}

func writeFile(path, contents string) error {
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return cmderr.IO("writing %q: %s", path, err)
	}
	return nil
}

// dumpInstructions renders the TAC stream one instruction per line, for
// --emit-tac: spec.md §1 calls a TAC pretty-printer out of scope for the
// compiler proper, but a flat debugging dump costs nothing extra here.
func dumpInstructions(instrs []tac.Instruction) string {
	var b strings.Builder
	for _, instr := range instrs {
		fmt.Fprintf(&b, "%-14s %-16s %-16s %-16s\n", instr.Op, instr.Arg1, instr.Arg2, instr.Result)
	}
	return b.String()
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
