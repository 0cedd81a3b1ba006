// Package git shells out to the git binary for the few repository
// operations gitseal needs.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Binary is the git executable looked up on PATH.
var Binary = "git"

// Available reports whether the git binary can be found.
func Available() bool {
	_, err := exec.LookPath(Binary)
	return err == nil
}

// Stage runs `git add -A` in root so the index matches the working tree.
func Stage(ctx context.Context, root string) error {
	_, err := run(ctx, root, "add", "-A")
	return err
}

// StagedPaths lists paths in the index that differ from HEAD, slash separated.
func StagedPaths(ctx context.Context, root string) ([]string, error) {
	out, err := run(ctx, root, "diff", "--cached", "--name-only", "-z")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range strings.Split(out, "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func run(ctx context.Context, root string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, Binary, append([]string{"-C", root}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}
