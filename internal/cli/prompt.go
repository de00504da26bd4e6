package cli

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mrz1836/signet/internal/errors"
)

// formRunner is an interface that matches huh.Form's Run method.
type formRunner interface {
	Run() error
}

// terminalCheck is a variable for the terminal check function, allowing tests to override it.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var terminalCheck = isTerminal

// isTerminal reports whether stdin is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// createConfirmForm and createTextForm build the Charm Huh forms. Tests
// replace them to inject answers.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var (
	createConfirmForm = defaultCreateConfirmForm
	createTextForm    = defaultCreateTextForm
)

// defaultCreateConfirmForm creates a yes/no confirmation form.
func defaultCreateConfirmForm(title, description string, confirm *bool) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(confirm),
		),
	).WithTheme(huh.ThemeCharm())
}

// defaultCreateTextForm creates a multi-line text entry form that refuses
// blank input.
func defaultCreateTextForm(title string, value *string) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Description("The text is signed exactly as entered.").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.ErrEmptyText
					}
					return nil
				}).
				Value(value),
		),
	).WithTheme(huh.ThemeCharm())
}

// promptConfirm asks a yes/no question. Aborting the form counts as
// ErrOperationCanceled.
func promptConfirm(title, description string) (bool, error) {
	var confirm bool
	if err := runForm(createConfirmForm(title, description, &confirm)); err != nil {
		return false, err
	}
	return confirm, nil
}

// promptText asks for text to sign.
func promptText(title string) (string, error) {
	var value string
	if err := runForm(createTextForm(title, &value)); err != nil {
		return "", err
	}
	return value, nil
}

func runForm(form formRunner) error {
	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return errors.ErrOperationCanceled
		}
		return err
	}
	return nil
}
