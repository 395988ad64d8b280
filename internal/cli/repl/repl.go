package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// DefaultPrompt is the shell prompt.
const DefaultPrompt = "gamesvc> "

// Executor runs one command line.
type Executor func(ctx context.Context, args []string) error

// REPL reads lines, splits them and runs them until exit or end of input.
//
// Built-in lines: exit and quit end the session, history prints it.
type REPL struct {
	in      io.Reader
	out     io.Writer
	prompt  string
	history *History
	exec    Executor
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.in = in
		r.out = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) { r.prompt = prompt }
}

// WithHistory sets the history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// New creates a REPL running lines through exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		in:     strings.NewReader(""),
		out:    io.Discard,
		prompt: DefaultPrompt,
		exec:   exec,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	return r
}

// History returns the session history.
func (r *REPL) History() *History { return r.history }

// Run loops until exit, end of input or ctx ends. Command errors are
// printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.out, "warning: history not loaded: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.out, "warning: history not saved: %v\n", err)
		}
	}()

	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(r.out, r.prompt)
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case err := <-readErr:
			fmt.Fprintln(r.out)
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.history.Add(line)

		switch line {
		case "exit", "quit":
			return nil
		case "history":
			for i, h := range r.history.Entries() {
				fmt.Fprintf(r.out, "%4d  %s\n", i+1, h)
			}
			continue
		}

		args, err := Split(line)
		if err == nil {
			err = r.exec(ctx, args)
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

// ErrUnterminatedQuote is returned by Split for an unclosed quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Split breaks line into arguments on whitespace. Single and double quotes
// group words; a backslash escapes the next character outside single
// quotes.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case unicode.IsSpace(c):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
