package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/japanmethod/cmd/cli/catalog"
	"github.com/myrjola/japanmethod/cmd/cli/checkouts"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(catalog.Group)
	rootCmd.AddCommand(catalog.Validate, catalog.List, catalog.Score)
	rootCmd.AddGroup(checkouts.Group)
	rootCmd.AddCommand(checkouts.Plans, checkouts.Stats)
}

var rootCmd = &cobra.Command{
	Use:          "japanmethod-cli",
	Long:         `Command line utilities for Japan Method https://japanmethod.com`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
