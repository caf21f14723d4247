package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		page, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to create manpage: %w", err)
		}

		page = page.WithSection("Keys", "Library: enter open, tab next category, / search, a add, e edit, x delete, c add category, C delete category.\n"+
			"Reader: space play/pause, s stop, r repeat, +/- rate, [/] pitch, v voice, P paragraph mode, n/p next/previous paragraph, y copy, e edit, b back.")
		fmt.Println(page.Build(roff.NewDocument()))
		return nil
	},
}
