package main

import (
	"os"
	"strings"

	"kb-cli/internal/cli"
)

var itemIDPrefixes = []string{"cat-", "fld-", "art-", "file-"}

func isItemID(s string) bool {
	s = strings.TrimSpace(s)
	for _, p := range itemIDPrefixes {
		if strings.HasPrefix(s, p) && len(s) > len(p) {
			return true
		}
	}
	return false
}

// rewriteDirectItemLookupArgs makes `kb <item-id>` work like `kb items show <item-id>`.
// Cobra treats the first positional token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first.
func rewriteDirectItemLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--config":    true,
		"--book":      true,
		"--format":    true,
		"--log-level": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		if !isItemID(a) {
			return argv
		}
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "items", "show")
		out = append(out, argv[i:]...)
		return out
	}
	return argv
}

func main() {
	os.Args = rewriteDirectItemLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
