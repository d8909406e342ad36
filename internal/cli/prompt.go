package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"cashmonitor/internal/gate"
)

// Prompter asks the user for input the commands cannot take from flags.
type Prompter interface {
	PIN(title string) (string, error)
	Confirm(question string) (bool, error)
}

var errNoTerminal = errors.New("not running in a terminal")

// huhPrompter prompts on the terminal. Without a terminal PIN fails and
// Confirm answers no.
type huhPrompter struct{}

func (huhPrompter) PIN(title string) (string, error) {
	if !isTerminal() {
		return "", fmt.Errorf("%w: pass --pin", errNoTerminal)
	}
	var pin string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		CharLimit(gate.MaxPINLength).
		Validate(gate.ValidatePIN).
		Value(&pin).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return pin, nil
}

func (huhPrompter) Confirm(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}
	var confirm bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Ja").
		Negative("Nein").
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm).
		Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
