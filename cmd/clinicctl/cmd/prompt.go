package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

var (
	stdinOnce   sync.Once
	stdinReader *bufio.Reader
)

func stdin() *bufio.Reader {
	stdinOnce.Do(func() { stdinReader = bufio.NewReader(os.Stdin) })
	return stdinReader
}

// prompt asks for one line on stderr and returns it trimmed.
func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := stdin().ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads a line without echo when stdin is a terminal.
func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin().ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// confirm asks a yes/no question; only "y" or "yes" agree.
func confirm(question string) bool {
	if assumeYes {
		return true
	}
	switch strings.ToLower(prompt(question + " (yes/no): ")) {
	case "y", "yes":
		return true
	}
	return false
}

// valueOrPrompt returns the flag value, prompting for it when empty.
func valueOrPrompt(value, label string) string {
	if value != "" {
		return value
	}
	return prompt(label)
}
