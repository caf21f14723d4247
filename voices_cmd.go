package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawflow/lawflow/tts"
)

const voicesTimeout = 10 * time.Second

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voices of the configured speech engine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, _, err := configuredSynthesizer()
		if err != nil {
			return err
		}
		if err := s.Available(); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), voicesTimeout)
		defer cancel()
		voices, err := s.Voices(ctx)
		if err != nil {
			return fmt.Errorf("unable to list voices: %w", err)
		}
		printVoices(cmd.OutOrStdout(), voices)
		return nil
	},
}

func printVoices(w io.Writer, voices []tts.Voice) {
	if len(voices) == 0 {
		fmt.Fprintln(w, subtle("ยังไม่พบเสียงอ่าน"))
		return
	}
	for _, v := range voices {
		mark := "  "
		if v.IsThai() {
			mark = keyword("th")
		}
		fmt.Fprintf(w, "%s %s %s\n", mark, v.ID, subtle(v.String()))
	}
	if len(tts.ThaiVoices(voices)) == 0 {
		fmt.Fprintln(w, subtle("\nไม่พบเสียงภาษาไทย"))
	}
}
