package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lawflow/lawflow/internal/library"
	"github.com/lawflow/lawflow/tts"
	para "github.com/lawflow/lawflow/tts/paragraph"
)

var readParagraph int

var readCmd = &cobra.Command{
	Use:     "read [ID|-]",
	Short:   "Read an article aloud without the TUI",
	Long:    paragraph(fmt.Sprintf("\n%s an article from the library, or text from stdin, printing each sentence as it is spoken. Ctrl+C stops.", keyword("Read"))),
	Example: paragraph("lawflow read 2\nlawflow read 2 --paragraph 3\nlawflow read --repeat 1\necho 'ผู้ใดฆ่าผู้อื่น' | lawflow read -"),
	Args:    cobra.MaximumNArgs(1),
	RunE:    runRead,
}

func init() {
	readCmd.Flags().IntVar(&readParagraph, "paragraph", 0, "read only paragraph N (1-based)")
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readSource returns the text named by args: an article id, or stdin for
// "-" or a pipe.
func readSource(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		if len(args) == 0 {
			pipe, err := stdinIsPipe()
			if err != nil {
				return "", err
			}
			if !pipe {
				return "", errors.New("specify an article id, or pipe text to read")
			}
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return string(b), nil
	}

	id, err := parseID(args[0])
	if err != nil {
		return "", err
	}
	var a library.Article
	err = withLibrary(func(lib *library.Library) error {
		a, err = lib.Get(id)
		return err
	})
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return a.Content, nil
}

// selectParagraph returns paragraph n (1-based) of text, or all of it for
// n == 0.
func selectParagraph(text string, n int) (string, error) {
	if n == 0 {
		return text, nil
	}
	nav := para.New(nil)
	nav.Enable(text)
	if n < 0 || n > nav.Len() {
		return "", fmt.Errorf("paragraph %d out of range: the text has %d", n, nav.Len())
	}
	for nav.Index() < n-1 {
		nav.Next()
	}
	return nav.Current(), nil
}

func runRead(cmd *cobra.Command, args []string) error {
	text, err := readSource(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if text, err = selectParagraph(text, readParagraph); err != nil {
		return err
	}

	sp, err := openSpeech()
	if err != nil {
		return err
	}
	defer sp.Close() //nolint:errcheck

	loop := tts.NewLoop()
	ctrl := tts.NewController(sp.engine, loop)
	ctrl.SetRepeat(viper.GetBool("tts.repeat"))
	if err := ctrl.SetSettings(initialSettings()); err != nil {
		return err //nolint:wrapcheck
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	var readErr error
	last := -1
	ctrl.OnStateChange(func(s tts.Snapshot) {
		if s.State == tts.StateSpeaking && s.SentenceIndex != last {
			last = s.SentenceIndex
			fmt.Fprintf(out, "%s %s\n", subtle(fmt.Sprintf("[%d/%d]", s.SentenceIndex+1, s.Total)), s.Chunk.Text)
		}
		if s.Status == tts.StatusFinished {
			cancel()
		}
	})
	ctrl.OnError(func(err error) {
		readErr = err
		cancel()
	})
	loop.Do(func() {
		if err := ctrl.Start(text); err != nil {
			readErr = err
			cancel()
		}
	})

	log.Debug("Reading", "engine", sp.name, "chars", len(text))
	if err := loop.Run(ctx, ctrl); err != nil && !errors.Is(err, context.Canceled) {
		return err //nolint:wrapcheck
	}
	ctrl.Stop()

	if errors.Is(readErr, tts.ErrEmptyInput) {
		return errors.New(tts.StatusNoText)
	}
	return readErr
}
