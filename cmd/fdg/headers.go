package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var headersNoCache bool

var headersCmd = &cobra.Command{
	Use:   "headers <library>",
	Short: "Resolve the top-level headers of a built library",
	Long: `Resolve which headers of a built library a consumer should include
directly, and which system headers they transitively require.

Each header is traced through the compiler's include trace; headers another
header already pulls in are dropped, and mutually-including groups are
collapsed to one representative.

Examples:
  fdg headers cjson
  fdg headers --no-cache libpng
  fdg headers --format=human zlib`,
	Args: cobra.ExactArgs(1),
	Run:  runHeaders,
}

func init() {
	headersCmd.Flags().BoolVar(&headersNoCache, "no-cache", false,
		"Ignore the persistent header cache and re-trace")
	rootCmd.AddCommand(headersCmd)
}

// headersResponse is the JSON output of the headers command
type headersResponse struct {
	Library    string   `json:"library"`
	LibHeaders []string `json:"libHeaders"`
	SysHeaders []string `json:"sysHeaders"`
}

func runHeaders(cmd *cobra.Command, args []string) {
	cfg, proj, logger, err := setup(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resolver, closeCache, err := newResolver(cfg, proj, logger, !headersNoCache)
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
	sysHeaders, err := resolver.SysHeaders(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving system headers: %v\n", err)
		os.Exit(1)
	}

	if formatFlag == "human" {
		fmt.Printf("Library headers of %s:\n", proj.Name)
		for _, h := range libHeaders {
			fmt.Printf("  #include \"%s\"\n", h)
		}
		fmt.Println("System headers:")
		for _, h := range sysHeaders {
			fmt.Printf("  #include <%s>\n", h)
		}
		return
	}

	out, _ := json.MarshalIndent(headersResponse{
		Library:    proj.Name,
		LibHeaders: libHeaders,
		SysHeaders: sysHeaders,
	}, "", "  ")
	fmt.Println(string(out))
}
