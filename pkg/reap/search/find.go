package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Find searches by running find(1):
//
//	find <root> -name <name> -type f
//
// Pattern metacharacters in name are escaped so find compares it
// literally.
// stderr is discarded. find exits 1 when some directories were unreadable;
// that is accepted as long as it printed results.
type Find struct {
	// Command is the executable to run (default "find").
	Command string
}

// NewFind returns a find backend.
func NewFind() *Find {
	return &Find{Command: "find"}
}

// Name implements BroadSearch.
func (f *Find) Name() string { return BackendFind }

// Search implements BroadSearch.
func (f *Find) Search(ctx context.Context, name, root string) ([]string, error) {
	bin, err := exec.LookPath(f.Command)
	if err != nil {
		return nil, facilityError(BackendFind, err)
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, root, "-name", escapePattern(name), "-type", "f")
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	runErr := cmd.Run()
	paths := parseLines(stdout.Bytes())

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && exitErr.ExitCode() == 1 && len(paths) > 0 {
			return paths, nil
		}
		if ctx.Err() != nil {
			return paths, facilityError(BackendFind, ctx.Err())
		}
		return paths, facilityError(BackendFind, fmt.Errorf("%s: %w", bin, runErr))
	}

	return paths, nil
}

// escapePattern backslash-escapes the fnmatch metacharacters of name.
func escapePattern(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseLines(out []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
