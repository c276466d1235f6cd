package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pcc/internal/infer"
	"github.com/roach88/pcc/internal/parser"
	"github.com/roach88/pcc/internal/render"
)

// readSource returns the comprehension text from a file path, or from
// stdin when the path is "-". Surrounding whitespace is trimmed so a
// trailing newline in a source file is not a parse error.
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// errorCode maps a pipeline error to its CLI error code.
func errorCode(err error) string {
	switch {
	case parser.IsSyntaxError(err):
		return ErrCodeSyntax
	case parser.IsUnsupportedError(err), render.IsUnsupportedError(err):
		return ErrCodeUnsupported
	case infer.IsFallbackError(err):
		return ErrCodeType
	default:
		return ErrCodeGeneric
	}
}

// fail reports err through the formatter and returns the matching
// ExitError for cobra.
func fail(formatter *OutputFormatter, exitCode int, code, message string) error {
	if err := formatter.Error(code, message, nil); err != nil {
		return err
	}
	return NewExitError(exitCode, message)
}
