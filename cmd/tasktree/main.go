package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"tasktree-cli/internal/cli"
	"tasktree-cli/internal/store"
)

// rewriteDirectTaskLookupArgs turns `tasktree <task-id>` into `tasktree tasks show <task-id>`.
// Persistent flags may come first, so it looks for the first positional token.
func rewriteDirectTaskLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so a task id is never swallowed.
	valueFlags := map[string]bool{
		"--dir":          true,
		"--driver":       true,
		"--dsn":          true,
		"--project":      true,
		"--format":       true,
		"--log-level":    true,
		"--metrics-file": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insertShow := func(at int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:at]...)
		out = append(out, "tasks", "show")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && store.LooksLikeTaskID(argv[i+1]) {
				return insertShow(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if store.LooksLikeTaskID(a) {
			return insertShow(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectTaskLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
