package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one command line that is not a built-in.
type Executor func(args []string) error

// Config configures a REPL.
type Config struct {
	Prompt  string
	Input   io.Reader
	Output  io.Writer
	History *History
	Execute Executor
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	prompt  string
	input   io.Reader
	output  io.Writer
	history *History
	execute Executor
}

// New creates a REPL. Missing fields default to stdin, stdout, an
// in-memory history and the prompt "respkv> ".
func New(cfg Config) *REPL {
	r := &REPL{
		prompt:  cfg.Prompt,
		input:   cfg.Input,
		output:  cfg.Output,
		history: cfg.History,
		execute: cfg.Execute,
	}
	if r.prompt == "" {
		r.prompt = "respkv> "
	}
	if r.input == nil {
		r.input = os.Stdin
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.history == nil {
		r.history = NewHistory("")
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input.
// Execution errors are printed and the loop continues.
func (r *REPL) Run() error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history not loaded: %v\n", err)
	}
	defer r.history.Save()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		atEOF := err == io.EOF

		line = strings.TrimSpace(line)
		if line != "" {
			if done := r.handle(line); done {
				return nil
			}
		}
		if atEOF {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// handle processes one non-empty line and reports whether to stop.
func (r *REPL) handle(line string) bool {
	r.history.Add(line)

	args, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(r.output, "(error) %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	switch strings.ToLower(args[0]) {
	case "exit", "quit":
		return true
	case "help":
		fmt.Fprintln(r.output, "Type a command as you would send it, e.g. SET key \"some value\" EX 10.")
		fmt.Fprintln(r.output, "Built-ins: help, history, exit, quit")
		return false
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false
	}

	if r.execute == nil {
		fmt.Fprintln(r.output, "(error) not connected")
		return false
	}
	if err := r.execute(args); err != nil {
		fmt.Fprintf(r.output, "(error) %v\n", err)
	}
	return false
}
