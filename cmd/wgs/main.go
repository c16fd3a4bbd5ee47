package main

import (
	"os"

	"github.com/bnema/wg-scraper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
