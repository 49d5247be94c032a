package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/odrive-host/odrive-go/pkg/inspect"
	"github.com/odrive-host/odrive-go/pkg/odrive"
	"github.com/odrive-host/odrive-go/pkg/schema"
)

var commandNames = []string{
	"call", "export", "help", "info", "quit", "read", "reload", "stats", "tree", "write",
}

// Shell handles interactive mode for odrivectl.
type Shell struct {
	runner  *Runner
	session *odrive.Session
	rl      *readline.Instance
}

// New creates a shell over session.
func New(session *odrive.Session, reload ReloadFunc) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "odrive> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    &completer{schema: session.Schema},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Shell{
		runner:  NewRunner(session, reload),
		session: session,
		rl:      rl,
	}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop. It returns when the user
// quits, input ends, or ctx is done.
func (s *Shell) Run(ctx context.Context) {
	defer s.rl.Close()

	out := s.rl.Stdout()
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "help", "?":
			s.printHelp()
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Exiting...")
			return
		}

		if err := s.runner.Execute(ctx, out, cmd, parts[1:]); err != nil {
			if errors.Is(err, ErrUnknownCommand) {
				fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", cmd)
				continue
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
ODrive Commands:
  Schema:
    tree [prefix]        - Show the endpoint tree
    info <path>          - Show endpoint id, type and access
    reload               - Download the schema again
    export               - Print the schema as YAML

  Endpoints:
    read <path>...       - Read values
    write <path> <value> - Write a value
    call <path>          - Invoke a function

  General:
    stats                - Show exchange counters
    help                 - Show this help
    quit                 - Exit

  Paths are dotted names, e.g. axis0.controller.input_vel
  Press Tab to complete commands and paths.`)
}

// completer completes command names in the first word and schema paths
// after it.
type completer struct {
	schema func() *schema.Root
}

// Do implements readline.AutoCompleter.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	word := head
	first := true
	if i := strings.LastIndexByte(head, ' '); i >= 0 {
		word = head[i+1:]
		first = strings.TrimSpace(head[:i]) == ""
	}

	var candidates []string
	if first {
		for _, name := range commandNames {
			if strings.HasPrefix(name, word) {
				candidates = append(candidates, name+" ")
			}
		}
	} else {
		candidates = inspect.Complete(c.schema(), word)
	}

	out := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, []rune(cand[len(word):]))
	}
	return out, len([]rune(word))
}
