package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks questions on a terminal. It satisfies category.Confirmer.
type Prompter struct {
	writer io.Writer
	reader *NonBlockingReader
	// fd is the input's file descriptor when it is a terminal, else -1.
	fd int
}

// NewPrompter creates a prompter. Nil arguments default to stdin/stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	fd := -1
	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{reader: NewNonBlockingReader(reader), writer: writer, fd: fd}
}

// Confirm asks a yes/no question. Only y, yes, s or sim (any case) count as yes.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt+" [y/N]")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "sim":
		return true, nil
	default:
		return false, nil
	}
}

// Ask reads a free-form answer. An empty answer yields def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt += " [" + def + "]"
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt+":")); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskSecret reads an answer without echo when the input is a terminal.
func (p *Prompter) AskSecret(ctx context.Context, label string) (string, error) {
	if p.fd < 0 {
		return p.Ask(ctx, label, "")
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label+":")); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	secret, err := term.ReadPassword(p.fd)
	_, _ = fmt.Fprintln(p.writer)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(secret), nil
}

// AutoConfirm approves every prompt. It backs --force.
type AutoConfirm struct{}

// Confirm implements category.Confirmer.
func (AutoConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}
