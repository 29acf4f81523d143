package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fdg/internal/gadget"
)

var gadgetsKind string

var gadgetsCmd = &cobra.Command{
	Use:   "gadgets <library>",
	Short: "Extract the public API surface of a library",
	Long: `Extract the exported functions, macros and types declared in the
library's top-level headers. Names on the library's ban list are dropped.

Examples:
  fdg gadgets cjson
  fdg gadgets --kind=function libpng`,
	Args: cobra.ExactArgs(1),
	Run:  runGadgets,
}

func init() {
	gadgetsCmd.Flags().StringVar(&gadgetsKind, "kind", "",
		"Only list gadgets of this kind: function, macro, or type")
	rootCmd.AddCommand(gadgetsCmd)
}

func runGadgets(cmd *cobra.Command, args []string) {
	cfg, proj, logger, err := setup(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resolver, closeCache, err := newResolver(cfg, proj, logger, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeCache()

	ctx := context.Background()
	libHeaders, err := resolver.LibHeaders(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving headers: %v\n", err)
		os.Exit(1)
	}

	gadgets, err := gadget.NewExtractor().ExtractProject(ctx, proj, libHeaders)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting gadgets: %v\n", err)
		os.Exit(1)
	}

	if gadgetsKind != "" {
		filtered := gadgets[:0]
		for _, g := range gadgets {
			if string(g.Kind) == gadgetsKind {
				filtered = append(filtered, g)
			}
		}
		gadgets = filtered
	}

	if formatFlag == "human" {
		for _, g := range gadgets {
			fmt.Printf("%-8s %s  (%s:%d)\n", g.Kind, g.Signature, g.Header, g.Line)
		}
		return
	}

	out, _ := json.MarshalIndent(gadgets, "", "  ")
	fmt.Println(string(out))
}
