package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/thenoetrevino/quadro/internal/models"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
	Out   io.Writer // stdout when nil
	Err   io.Writer // stderr when nil
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}

func (f *OutputFormatter) err() io.Writer {
	if f.Err == nil {
		return os.Stderr
	}
	return f.Err
}

// Success outputs a successful result. human renders the default mode and
// may be nil, in which case data is printed with %+v.
func (f *OutputFormatter) Success(data any, human func(w io.Writer) error) error {
	if f.Quiet {
		// Extract ID if possible
		if idGetter, ok := data.(interface{ GetID() string }); ok {
			_, err := fmt.Fprintln(f.out(), idGetter.GetID())
			return err
		}
		return nil
	}

	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	if human != nil {
		return human(f.out())
	}
	_, err := fmt.Fprintf(f.out(), "%+v\n", data)
	return err
}

// Error outputs a command failure
func (f *OutputFormatter) Error(err error) error {
	return f.ErrorWithSuggestion(err, suggestionFor(err))
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(err error, suggestion string) error {
	message := err.Error()
	var me *models.Error
	if errors.As(err, &me) && me.Message != "" {
		message = me.Message
	}

	if f.JSON {
		errData := map[string]any{
			"code":    ErrorCode(err),
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.err(), "Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.err(), "Suggestion: %s\n", suggestion)
	}
	return nil
}

func suggestionFor(err error) string {
	switch ExitCodeFor(err) {
	case ExitNotFound:
		return "check the ID with 'quadro board show <board-id>'"
	case ExitConflict:
		return "another change won the race; retry the command"
	case ExitUsage:
		return "see --help for usage"
	default:
		return ""
	}
}

// Deleted is the result of a delete command
type Deleted struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// GetID returns the deleted entity's ID
func (d *Deleted) GetID() string { return d.ID }

// Human prints a one-line confirmation
func (d *Deleted) Human(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Deleted %s %s\n", d.Kind, d.ID)
	return err
}
