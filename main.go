// Package main provides the entry point for the LawFlow CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lawflow/lawflow/internal/library"
	"github.com/lawflow/lawflow/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool

	rootCmd = &cobra.Command{
		Use:   "lawflow",
		Short: "Listen to Thai legal articles, one sentence at a time",
		Long: paragraph(
			fmt.Sprintf("\nKeep a library of legal articles and %s, sentence by sentence or one paragraph at a time.", keyword("listen to them")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI()
		},
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if err := loadConfigFlag(cmd); err != nil {
		return err
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")

	rate := viper.GetFloat64("tts.rate")
	pitch := viper.GetFloat64("tts.pitch")
	if err := initialSettings().Validate(); err != nil {
		return fmt.Errorf("invalid speech settings (rate %.1f, pitch %.1f): %w", rate, pitch, err)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// loadConfigFlag reads the file given with --config in place of the one
// found in the default places. The config command creates a missing file,
// so it skips the read.
func loadConfigFlag(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("config") || cmd == configCmd {
		return nil
	}
	configFile = expandPath(configFile)
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file %s: %w", configFile, err)
	}
	log.Debug("Using configuration file", "path", configFile)
	return nil
}

func runTUI() error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or auto if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil || cfg.GlamourStyle == "" {
		cfg.GlamourStyle = style
	}
	cfg.GlamourStyle = expandStylePath(cfg.GlamourStyle)

	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.ParagraphMode = cfg.ParagraphMode || viper.GetBool("paragraph")

	settings := initialSettings()
	cfg.Repeat = viper.GetBool("tts.repeat")
	cfg.Rate = settings.Rate
	cfg.Pitch = settings.Pitch
	cfg.Voice = settings.VoiceID

	lib, st, err := openLibrary()
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	sp, err := openSpeech()
	if err != nil {
		return err
	}
	defer sp.Close() //nolint:errcheck
	cfg.EngineName = sp.name

	p := ui.NewProgram(cfg, lib, sp.engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := lib.Watch(ctx, func() { p.Send(ui.LibraryChangedMsg{}) })
		switch {
		case errors.Is(err, library.ErrNotWatchable):
			log.Debug("Storage backend can't be watched, external edits won't show up")
		case err != nil:
			log.Warn("Could not watch library", "err", err)
		}
	}()

	// Run Bubble Tea program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// expandStylePath expands ~ in a JSON style path and leaves style names
// alone.
func expandStylePath(style string) string {
	if _, ok := styles.DefaultStyles[style]; ok || style == styles.AutoStyle {
		return style
	}
	return expandPath(style)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("engine", "e", engineEspeak, "speech engine: espeak, piper or mock")
	flags.String("fallback", engineMock, "engine used when the main one is missing or keeps failing")
	flags.String("voice", "", "voice id (default: first Thai voice)")
	flags.Float64("rate", 0.8, "speech rate, 0.5 to 2.0")
	flags.Float64("pitch", 1.0, "speech pitch, 0.0 to 2.0")
	flags.Bool("repeat", false, "start over when the end is reached")
	flags.String("storage", "file", "storage backend: file or badger")
	flags.String("data-dir", "", "directory holding the library")

	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to fit the terminal)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	rootCmd.Flags().BoolP("paragraph", "P", false, "open articles in paragraph mode")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("paragraph", rootCmd.Flags().Lookup("paragraph"))
	_ = viper.BindPFlag("tts.engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("tts.fallback", flags.Lookup("fallback"))
	_ = viper.BindPFlag("tts.voice", flags.Lookup("voice"))
	_ = viper.BindPFlag("tts.rate", flags.Lookup("rate"))
	_ = viper.BindPFlag("tts.pitch", flags.Lookup("pitch"))
	_ = viper.BindPFlag("tts.repeat", flags.Lookup("repeat"))
	_ = viper.BindPFlag("storage.backend", flags.Lookup("storage"))
	_ = viper.BindPFlag("storage.dir", flags.Lookup("data-dir"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("tts.engine", engineEspeak)
	viper.SetDefault("tts.fallback", engineMock)
	viper.SetDefault("tts.rate", 0.8)
	viper.SetDefault("tts.pitch", 1.0)
	viper.SetDefault("tts.espeak.voice", "th")
	viper.SetDefault("tts.piper.models", "~/.local/share/piper")
	viper.SetDefault("tts.cache.max_size", 100)
	viper.SetDefault("storage.backend", "file")

	rootCmd.AddCommand(
		configCmd, manCmd, readCmd, listCmd, addCmd, editCmd, rmCmd,
		categoriesCmd, importCmd, exportCmd, voicesCmd, cacheCmd,
	)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "lawflow")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lawflow")}, dirs...)
	}

	if c := os.Getenv("LAWFLOW_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lawflow")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lawflow")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], "lawflow.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
		return
	}
	viper.SetConfigFile(configFile)
}
