// ABOUTME: Entry point for the inventory-admin CLI
// ABOUTME: Terminal admin panel and one-shot commands for the IT asset inventory

package main

import (
	"fmt"
	"os"

	"github.com/ptisa/inventory-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
