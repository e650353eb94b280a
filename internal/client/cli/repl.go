package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// command is one REPL verb.
type command struct {
	name  string
	args  string
	help  string
	admin bool
	run   func(ctx context.Context, args []string) error
}

// runREPL reads a line from reader, parses the first token as the command and
// dispatches it. The loop exits on EOF or when the user types "exit" or
// "quit". A failing command is reported by its handler and does not stop
// the loop.
func runREPL(ctx context.Context, cmds []command, statusFn func() string, reader *bufio.Reader) {
	byName := make(map[string]command, len(cmds))
	for _, c := range cmds {
		byName[c.name] = c
	}

	for {
		printlnFn(fmt.Sprintf("cb (%s)> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := strings.ToLower(parts[0]), parts[1:]

		switch name {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help", "?":
			printlnFn(helpText(cmds))
			continue
		}

		c, ok := byName[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		_ = c.run(ctx, args)
	}
}

func helpText(cmds []command) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range cmds {
		usage := strings.TrimSpace(c.name + " " + c.args)
		mark := ""
		if c.admin {
			mark = " (admin)"
		}
		fmt.Fprintf(&b, "  %-28s %s%s\n", usage, c.help, mark)
	}
	b.WriteString("  help                         show this list\n")
	b.WriteString("  exit | quit                  leave the program")
	return b.String()
}
