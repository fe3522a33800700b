package hlasmcore

import (
	"fmt"
	"os"
	"strings"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/instr"
	"github.com/hlasm-tools/hlasmcore/pkg/utils"
	"github.com/spf13/cobra"
)

var supportedDocModules = map[string]func() string{
	"instructions": instr.DocString,
	"mnemonics":    instr.MnemonicDocString,
	"assembler":    instr.AssemblerDocString,
	"ca":           instr.CaDocString,
}

var docsCmd = &cobra.Command{
	Use:   "docs module",
	Short: "Show hlasmcore documentation",
	Long: `Dumps the documentation of the specified hlasmcore module.
By default the tool dumps the documentation to stdout, but it can be
redirected to a file using the --output flag.

Supported modules:
` + strings.Join(utils.Map(utils.Keys(supportedDocModules), func(m string) string { return "  " + m }), "\n"),
	Args:      cobra.MatchAll(cobra.OnlyValidArgs, cobra.MaximumNArgs(1), cobra.MinimumNArgs(1)),
	ValidArgs: utils.Keys(supportedDocModules),
	RunE: func(cmd *cobra.Command, args []string) error {
		module := args[0]
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			file, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("hlasmcore: create output file: %w", err)
			}
			defer file.Close()
			fmt.Fprintln(file, supportedDocModules[module]())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), supportedDocModules[module]())
		return nil
	},
}

func init() {
	docsCmd.Flags().StringP("output", "o", "", "output file; if not specified, documentation is dumped to stdout")
}
