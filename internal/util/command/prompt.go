package command

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// MinPasswordLength is enforced for new keystore passwords.
const MinPasswordLength = 8

// PromptPassword reads a secret from the terminal without echoing it. The prompt goes to stderr.
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}

	return string(passwordBytes), nil
}

// PromptNewPassword asks for a password twice and checks both entries match.
func PromptNewPassword() (string, error) {
	password, err := PromptPassword(fmt.Sprintf("Enter password for keystore (min %d characters): ", MinPasswordLength))
	if err != nil {
		return "", err
	}

	if len(password) < MinPasswordLength {
		return "", errors.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	confirm, err := PromptPassword("Confirm password: ")
	if err != nil {
		return "", err
	}

	if password != confirm {
		return "", errors.New("passwords do not match")
	}

	return password, nil
}
