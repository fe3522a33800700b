package hlasmcore

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/fixture"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/pipeline"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/query"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse <fixture.yaml>",
	Short: "Browse a fixture's symbols interactively",
	Long: `browse loads a statement fixture and opens a terminal symbol browser
over the resulting query.Engine. It is a demonstration of the
definition/references/hover/semantic_tokens query surface, not a language
server: there is no protocol transport here, only a list and a text pane.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&legacyFixture, "legacy", false, "decode the fixture with the legacy yaml.v2 dialect")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("hlasmcore: read fixture: %w", err)
	}

	store := ids.New()
	collector := diag.NewCollector()
	p := pipeline.NewPipeline(store, collector)

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
	engine := query.NewEngine(store, p, statements)

	return runBrowserApp(store, p, engine)
}

// runBrowserApp wires a symbol list and a hover/references detail pane into
// one tview application: selecting a symbol shows its Hover text and every
// recorded reference site.
func runBrowserApp(store *ids.Store, p *pipeline.Pipeline, engine *query.Engine) error {
	list := tview.NewList().ShowSecondaryText(false)
	detail := tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	detail.SetBorder(true).SetTitle("detail")
	list.SetBorder(true).SetTitle("symbols")

	for _, sym := range p.Ctx.Symbols.All() {
		name := sym.Name
		label := store.Name(name)
		list.AddItem(label, "", 0, func() {
			showSymbolDetail(detail, p, engine, name, label)
		})
	}

	if list.GetItemCount() > 0 {
		first := p.Ctx.Symbols.All()[0]
		showSymbolDetail(detail, p, engine, first.Name, store.Name(first.Name))
	}

	flex := tview.NewFlex().
		AddItem(list, 0, 1, true).
		AddItem(detail, 0, 2, false)

	app := tview.NewApplication()
	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(flex, true).SetFocus(list).Run()
}

func showSymbolDetail(detail *tview.TextView, p *pipeline.Pipeline, engine *query.Engine, name ids.Index, label string) {
	detail.Clear()
	fmt.Fprintf(detail, "[yellow]%s[-]\n\n", label)

	if defRange, ok := p.DefSites[name]; ok {
		if text, ok := engine.Hover(defRange.Start); ok {
			fmt.Fprintf(detail, "%s\n\n", text)
		}
		fmt.Fprintf(detail, "defined at line %d\n", defRange.Start.Line)
	}

	refs := engine.References(name)
	fmt.Fprintf(detail, "references: %d\n", len(refs))
	for _, r := range refs {
		fmt.Fprintf(detail, "  line %d\n", r.Start.Line)
	}
}
