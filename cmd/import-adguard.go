package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	jsoniter "github.com/json-iterator/go"

	"github.com/tariktz/urlcleaner/internal/cleaner/adguard"
)

type importAdguardOptions struct {
	input  string
	output string
}

func init() {
	opts := &importAdguardOptions{}

	importCmd := &cobra.Command{
		Use:   "import-adguard",
		Short: "Convert an AdGuard $removeparam filter list into a Cleaner document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportAdguard(opts)
		},
	}

	importCmd.Flags().StringVar(&opts.input, "input", "", "Path to an AdGuard filter list (default: stdin)")
	importCmd.Flags().StringVar(&opts.output, "output", "", "Path to write the resulting Cleaner JSON document (default: stdout)")

	rootCmd.AddCommand(importCmd)
}

func runImportAdguard(opts *importAdguardOptions) error {
	in := os.Stdin
	if opts.input != "" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("import-adguard: %w", err)
		}
		defer f.Close()
		in = f
	}

	c, err := adguard.FromAdGuardRules(bufio.NewScanner(in))
	if err != nil {
		return err
	}

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("import-adguard: encoding cleaner: %w", err)
	}

	out := os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("import-adguard: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("import-adguard: writing output: %w", err)
	}
	return nil
}
