package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// LAWFLOW_TTS_ENGINE sets tts.engine.
var envKeyReplacer = strings.NewReplacer(".", "_")

// expandPath expands tilde and all environment variables from the given
// path.
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// parseID parses an article id argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || id <= 0 {
		return 0, &invalidIDError{arg}
	}
	return id, nil
}

type invalidIDError struct{ arg string }

func (e *invalidIDError) Error() string {
	return "invalid article id " + strconv.Quote(e.arg)
}
