package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks questions on a terminal. The zero value uses stdin and
// stdout.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	r *bufio.Reader
}

func (p *Prompter) reader() *bufio.Reader {
	if p.r == nil {
		in := p.In
		if in == nil {
			in = os.Stdin
		}
		p.r = bufio.NewReader(in)
	}
	return p.r
}

func (p *Prompter) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Prompter) line() string {
	line, _ := p.reader().ReadString('\n')
	return strings.TrimSpace(line)
}

// Confirm asks a yes/no question. Anything but y/yes is no.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out(), "%s [y/N]: ", StyleWarning.Render(prompt))
	ans := strings.ToLower(p.line())
	return ans == "y" || ans == "yes"
}

// ConfirmDanger is like Confirm but styled with the error color (for destructive actions).
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.out(), "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	ans := strings.ToLower(p.line())
	return ans == "y" || ans == "yes"
}

// Input asks for a value, returning def when the answer is empty.
func (p *Prompter) Input(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out(), "%s %s: ", StyleValue.Render(label), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(p.out(), "%s: ", StyleValue.Render(label))
	}
	if ans := p.line(); ans != "" {
		return ans
	}
	return def
}

var stdPrompter = &Prompter{}

// Confirm prompts on the terminal. Returns true for yes.
func Confirm(prompt string) bool { return stdPrompter.Confirm(prompt) }

// ConfirmDanger prompts on the terminal with the danger style.
func ConfirmDanger(prompt string) bool { return stdPrompter.ConfirmDanger(prompt) }

// PromptInput asks for a value on the terminal.
func PromptInput(label, def string) string { return stdPrompter.Input(label, def) }
