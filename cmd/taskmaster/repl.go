package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aihya/taskmaster/internal/control"
)

const prompt = "\033[1;32mTaskmaster > \033[0m"

// runREPL reads whitespace-tokenised commands from in and dispatches them to
// surface, writing responses to out, until `exit`, end-of-input, or ctx being
// cancelled (e.g. by a SIGINT caught elsewhere) terminates the loop.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, surface *control.Surface, diag *slog.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(out, prompt)
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			name, args := tokenize(line)
			if name == "" {
				continue
			}
			if dispatch(name, args, surface, diag, out) {
				return
			}
		}
	}
}

func tokenize(line string) (cmd string, args []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// dispatch runs one command and returns true if the REPL should terminate.
func dispatch(name string, args []string, surface *control.Surface, diag *slog.Logger, out io.Writer) bool {
	switch name {
	case "exit", "EOF":
		surface.Exit()
		return true
	case "start":
		printLines(out, surface.Start(args))
	case "stop":
		printLines(out, surface.Stop(args))
	case "restart":
		printLines(out, surface.Restart(args))
	case "status":
		printLines(out, surface.Status(args))
	case "full_status":
		printLines(out, surface.FullStatus(args))
	case "full_restart":
		if len(args) > 0 {
			fmt.Fprintln(out, "\033[33mWarning:\033[0m full_restart takes no arguments")
			return false
		}
		surface.FullRestart()
	case "reload":
		if err := surface.Reload(); err != nil {
			fmt.Fprintf(out, "\033[33mWarning:\033[0m error reloading (%v)\n", err)
		}
	case "log":
		if err := surface.Log(out); err != nil {
			fmt.Fprintf(out, "\033[33mWarning:\033[0m error streaming log (%v)\n", err)
		}
	default:
		fmt.Fprintf(out, "\033[33mWarning:\033[0m unknown command %q\n", name)
	}
	return false
}

func printLines(out io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}
