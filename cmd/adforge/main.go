package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "adforge",
	Short: "Generate ad campaign structures with an LLM",
	Long: `adforge turns a campaign brief into a validated JSON campaign structure.

It builds one prompt per campaign type, calls the configured model once,
recovers the JSON object from the reply and checks its shape.

Settings come from the environment, optionally seeded from --env-file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env.dev", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd, generateCmd, promptCmd, parseBriefCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
