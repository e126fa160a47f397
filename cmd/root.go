// Package cmd implements the CLI commands for urlcleaner.
package cmd

import "github.com/spf13/cobra"

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "urlcleaner",
	Short:         "urlcleaner — declarative, concurrent URL cleaning engine",
	SilenceErrors: true,
	SilenceUsage:  true,
	Long: `urlcleaner strips tracking parameters, unshortens redirects,
normalizes hosts, and canonicalizes URL formats, driven by a declarative
JSON rule document (a "cleaner"). It reads one task per input line and
streams cleaned URLs (or structured errors) to stdout, fanning work out
across a worker pool.

Homepage: https://github.com/tariktz/urlcleaner`,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version of urlcleaner",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("urlcleaner", Version)
		},
	})
}

// Execute runs the root command. It is the single entry point called by main.
func Execute() error {
	return rootCmd.Execute()
}
