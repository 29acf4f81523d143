package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fdg/internal/driver"
	"fdg/internal/gadget"
	"fdg/internal/llm"
	"fdg/internal/prompt"
)

var (
	generateSamples int
	generateDryRun  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <library>",
	Short: "Generate fuzz driver candidates for a library",
	Long: `Generate fuzz driver candidates by prompting a language model with
the library's resolved headers and extracted API surface. Each candidate is
saved into the library's driver directory together with a manifest.

The OPENAI_API_KEY environment variable must be set.

Examples:
  fdg generate cjson
  fdg generate --samples=3 libpng
  fdg generate --dry-run cjson`,
	Args: cobra.ExactArgs(1),
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateSamples, "samples", 0,
		"Number of candidates to sample (default from config)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false,
		"Print the rendered prompt instead of calling the model")
	rootCmd.AddCommand(generateCmd)
}

// generateResponse is the JSON output of the generate command
type generateResponse struct {
	Library string   `json:"library"`
	Model   string   `json:"model"`
	Drivers []string `json:"drivers"`
}

func runGenerate(cmd *cobra.Command, args []string) {
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
	sysHeaders, err := resolver.SysHeadersString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving system headers: %v\n", err)
		os.Exit(1)
	}

	gadgets, err := gadget.NewExtractor().ExtractProject(ctx, proj, libHeaders)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting gadgets: %v\n", err)
		os.Exit(1)
	}

	p := prompt.NewBuilder(proj).Build(sysHeaders, gadgets)

	if generateDryRun {
		fmt.Println("--- system ---")
		fmt.Println(p.System)
		fmt.Println("--- user ---")
		fmt.Println(p.User)
		return
	}

	client, err := llm.NewClient(cfg.LLM, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	samples := generateSamples
	if samples < 1 {
		samples = cfg.LLM.NSample
	}

	logger.Info("generating driver candidates", map[string]interface{}{
		"library": proj.Name,
		"model":   cfg.LLM.Model,
		"samples": samples,
	})

	sources, err := client.Generate(ctx, p, samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating drivers: %v\n", err)
		os.Exit(1)
	}

	sysList, _ := resolver.SysHeaders(ctx)
	var saved []string
	for _, source := range sources {
		prog := driver.NewProgram(source, cfg.LLM.Model)
		path, err := driver.Save(proj, prog, libHeaders, sysList)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving driver: %v\n", err)
			os.Exit(1)
		}
		saved = append(saved, path)
	}

	if formatFlag == "human" {
		for _, path := range saved {
			fmt.Println(path)
		}
		return
	}

	out, _ := json.MarshalIndent(generateResponse{
		Library: proj.Name,
		Model:   cfg.LLM.Model,
		Drivers: saved,
	}, "", "  ")
	fmt.Println(string(out))
}
