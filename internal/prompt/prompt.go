package prompt

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/xgui3783/ebrains-util/internal/ui"
)

var ErrUserCancelled = errors.New("cancelled by user")

// ReadSecret asks for a value without echoing it.
func ReadSecret(title, description string) (string, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description(description).
				EchoMode(huh.EchoModePassword).
				Value(&value).
				Validate(func(s string) error {
					if len(s) == 0 {
						return errors.New("value cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(ui.HuhTheme()).WithOutput(os.Stderr)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrUserCancelled
		}
		return "", err
	}
	return value, nil
}

// Confirm wraps ui.Confirm, mapping an aborted form to ErrUserCancelled.
func Confirm(question string) (bool, error) {
	ok, err := ui.Confirm(question)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, ErrUserCancelled
	}
	return ok, err
}
