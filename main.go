package main

import (
	"fmt"
	"os"

	"github.com/tariktz/urlcleaner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "urlcleaner:", err)
		os.Exit(1)
	}
}
