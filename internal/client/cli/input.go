package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/srolel/passkeep/internal/shared"
)

// promptPassword reads a password without echoing it. The caller owns the
// returned buffer and should wipe it after use.
func promptPassword(label string) ([]byte, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("password read error: %w", err)
	}
	if len(password) == 0 {
		return nil, errors.New("empty password")
	}
	return password, nil
}

// promptNewPassword asks for a password twice and rejects a mismatch.
func promptNewPassword() ([]byte, error) {
	password, err := promptPassword("New password")
	if err != nil {
		return nil, err
	}

	repeat, err := promptPassword("Repeat password")
	if err != nil {
		return nil, err
	}
	defer shared.WipeByteArray(repeat)

	if !bytes.Equal(password, repeat) {
		shared.WipeByteArray(password)
		return nil, errors.New("passwords do not match")
	}

	return password, nil
}
