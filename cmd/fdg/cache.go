package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fdg/internal/config"
	"fdg/internal/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent header-resolution cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <library>",
	Short: "Drop cached header resolutions for a library",
	Args:  cobra.ExactArgs(1),
	Run:   runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig(workspaceFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	db, err := storage.Open(workspaceFlag, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := storage.NewCache(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cache.Invalidate(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing cache: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Cleared cached header resolutions for %s\n", args[0])
}
