// Package snake asks the questions a command needs answered before it acts:
// whether to go ahead with a cascade or a conflicting booking, and free text
// when an argument was left off.
package snake

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// ErrNotInteractive is returned when a question needs an answer but nobody is
// at a terminal to give one.
var ErrNotInteractive = errors.New("confirmation required: rerun with --yes or from a terminal")

// Prompter asks questions on In and Out. When Assume is set every
// confirmation takes that answer without prompting.
type Prompter struct {
	In     io.Reader
	Out    io.Writer
	Assume *bool
}

// New returns a Prompter on the process terminal.
func New() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// AssumeYes answers every confirmation with yes.
func (p *Prompter) AssumeYes() {
	yes := true
	p.Assume = &yes
}

// Interactive reports whether In is a terminal.
func (p *Prompter) Interactive() bool {
	f, ok := p.In.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm asks a yes/no question. Answering no is not an error.
func (p *Prompter) Confirm(label string) (bool, error) {
	if p.Assume != nil {
		return *p.Assume, nil
	}
	if !p.Interactive() {
		return false, ErrNotInteractive
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     io.NopCloser(p.In),
		Stdout:    NopCloser(p.Out),
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return true, nil
}

// Ask reads one line of text. An empty answer falls back to def; when def is
// empty too the prompt insists on an answer.
func (p *Prompter) Ask(label, def string) (string, error) {
	if !p.Interactive() {
		if def != "" {
			return def, nil
		}
		return "", ErrNotInteractive
	}

	validate := func(input string) error {
		if strings.TrimSpace(input) == "" && def == "" {
			return errors.New("empty")
		}
		return nil
	}

	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}

	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		Templates: templates,
		Validate:  validate,
		Stdin:     io.NopCloser(p.In),
		Stdout:    NopCloser(p.Out),
	}

	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	if strings.TrimSpace(result) == "" {
		result = def
	}
	return strings.TrimSpace(result), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
