package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isConfigured(ctx context.Context) bool
	Status(ctx context.Context) error
	Enable(ctx context.Context, prefix string) error
	Disable(ctx context.Context) error
	Sync(ctx context.Context, silent bool) error
	Import(ctx context.Context, silent bool) error
	List(ctx context.Context) error
	Add(ctx context.Context, path string) error
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id string) error
	Statuses(ctx context.Context) error
}

// hasSilentFlag reports whether the command arguments request a
// non-interactive run.
func hasSilentFlag(args []string) bool {
	for _, a := range args {
		if a == "-silent" || a == "--silent" {
			return true
		}
	}
	return false
}

// runREPL starts a simple read–eval–print loop for the shelfsync CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Sync not configured:
//	  - help             — show available commands
//	  - enable <prefix>  — turn syncing on under a key prefix
//	  - list | add | delete | export — manage the local library
//	    (delete prompts for the id when none is given)
//	  - exit | quit      — leave the program
//
//	Sync configured:
//	  - help             — show available commands
//	  - status           — show sync configuration and engine state
//	  - sync [-silent]   — push the library to the remote store
//	  - import [-silent] — pull remote records into the library
//	  - statuses         — per-record outcome of the last run
//	  - disable          — turn syncing off, terminating active runs
//	  - list | add | delete | export — manage the local library
//	  - exit | quit      — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("shelf> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isConfigured(ctx) {
				printlnFn("Available commands: status, sync [-silent], import [-silent], statuses, disable, (l)ist, add <file>, delete [id], export <id>, exit")
			} else {
				printlnFn("Available commands: enable <prefix>, (l)ist, add <file>, delete [id], export <id>, exit")
			}

		case "status":
			_ = a.Status(ctx)

		case "enable":
			if len(args) == 0 {
				printlnFn("Usage: enable <prefix>")
				continue
			}
			_ = a.Enable(ctx, args[0])

		case "disable":
			_ = a.Disable(ctx)

		case "sync":
			_ = a.Sync(ctx, hasSilentFlag(args))

		case "import":
			_ = a.Import(ctx, hasSilentFlag(args))

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <file>")
				continue
			}
			_ = a.Add(ctx, args[0])

		case "delete":
			// Without an argument the handler prompts for the id.
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			_ = a.Delete(ctx, id)

		case "export":
			if len(args) == 0 {
				printlnFn("Usage: export <id>")
				continue
			}
			_ = a.Export(ctx, args[0])

		case "statuses":
			_ = a.Statuses(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
