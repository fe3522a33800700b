package hlasmcore

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/fixture"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/obslog"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/pipeline"
	"github.com/spf13/cobra"
)

var (
	colorError   = color.New(color.FgRed, color.Bold)
	colorWarning = color.New(color.FgYellow)
	colorInfo    = color.New(color.FgCyan)
	colorHint    = color.New(color.FgHiBlack)
	colorSuccess = color.New(color.FgGreen)
	colorHeader  = color.New(color.FgWhite, color.Bold, color.Underline)
	colorValue   = color.New(color.FgWhite, color.Bold)
	colorSymbol  = color.New(color.FgHiGreen)

	legacyFixture bool
	verboseTrace  bool
)

var checkCmd = &cobra.Command{
	Use:   "check <fixture.yaml>",
	Short: "Run a statement fixture through the pipeline and print diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&legacyFixture, "legacy", false, "decode the fixture with the legacy yaml.v2 dialect")
	checkCmd.Flags().BoolVarP(&verboseTrace, "verbose", "v", false, "trace dependency-resolution rounds, cycle detection, and USING resolution to stderr")
}

func runCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("hlasmcore: read fixture: %w", err)
	}

	store := ids.New()
	collector := diag.NewCollector()
	p := pipeline.NewPipeline(store, collector)
	if verboseTrace {
		p.Logger = obslog.New(os.Stderr, obslog.NewRing(256))
	}

	loader := fixture.New(store, p.Ctx.Arena)
	var statements []*pipeline.Statement
	if legacyFixture {
		statements, err = loader.LoadLegacy(data)
	} else {
		statements, err = loader.Load(data)
	}
	if err != nil {
		return fmt.Errorf("hlasmcore: load fixture: %w", err)
	}

	p.Run(statements)

	printDiagnostics(cmd, collector.Items())
	printSymbolTable(cmd, store, p.Ctx.Symbols)

	if collector.HasErrors() {
		return fmt.Errorf("hlasmcore: fixture failed with errors")
	}
	return nil
}

func printDiagnostics(cmd *cobra.Command, items []diag.Diagnostic) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		colorSuccess.Fprintln(out, "no diagnostics")
		return
	}

	colorHeader.Fprintln(out, "diagnostics:")
	for _, d := range items {
		severityColor(d.Severity).Fprintf(out, "  %s:%d:%d: %s", d.Code, d.Range.Start.Line, d.Range.Start.Column, d.Severity)
		fmt.Fprintf(out, ": %s\n", d.Message)
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.Error:
		return colorError
	case diag.Warning:
		return colorWarning
	case diag.Info:
		return colorInfo
	default:
		return colorHint
	}
}

func printSymbolTable(cmd *cobra.Command, store *ids.Store, symbols *context.SymbolTable) {
	out := cmd.OutOrStdout()
	colorHeader.Fprintln(out, "symbols:")
	for _, sym := range symbols.All() {
		colorSymbol.Fprintf(out, "  %-16s", store.Name(sym.Name))
		switch sym.Value().Kind() {
		case context.ValueUndef:
			colorWarning.Fprint(out, "UNDEF")
		case context.ValueAbs:
			colorValue.Fprintf(out, "X'%X'", sym.Value().AbsOrZero())
		case context.ValueReloc:
			colorValue.Fprint(out, "RELOC")
		}
		fmt.Fprintln(out)
	}
}
