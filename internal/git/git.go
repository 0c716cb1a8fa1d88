package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
)

const gitignore = ".gitignore"

// FileStatus is one entry of the index as compared with HEAD.
type FileStatus struct {
	Path   string
	Status string // first letter of git's name-status code: M, A, D, R, C, T
	From   string // source path of a rename or copy
}

func (f FileStatus) StatusLabel() string {
	switch f.Status {
	case "M":
		return "modified"
	case "A":
		return "added"
	case "D":
		return "deleted"
	case "R":
		return "renamed"
	case "C":
		return "copied"
	case "T":
		return "type changed"
	default:
		return f.Status
	}
}

type Repository struct {
	path string
}

// New opens the repository containing dir. An empty dir means the working
// directory.
func New(ctx context.Context, dir string) (*Repository, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("not a git repository")
	}
	return &Repository{path: strings.TrimSpace(string(out))}, nil
}

// Path is the repository top level.
func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s failed: %w\n%s", args[0], err, bytes.TrimSpace(exitErr.Stderr))
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(out), nil
}

func (r *Repository) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("git %s failed: %w\n%s", args[0], err, bytes.TrimSpace(out))
		}
		return fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return nil
}

// StagedFiles lists what the next commit would record, in the order git
// reports it.
func (r *Repository) StagedFiles(ctx context.Context) ([]FileStatus, error) {
	out, err := r.output(ctx, "diff", "--cached", "--name-status", "-M", "-z")
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out)
}

// parseNameStatus reads NUL-separated name-status output. Renames and copies
// carry a similarity score and two paths; every other code carries one.
func parseNameStatus(out string) ([]FileStatus, error) {
	fields := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	if len(fields) == 1 && fields[0] == "" {
		return nil, nil
	}

	var files []FileStatus
	for i := 0; i < len(fields); {
		code := fields[i]
		if code == "" {
			return nil, fmt.Errorf("malformed name-status output")
		}
		f := FileStatus{Status: code[:1]}
		switch f.Status {
		case "R", "C":
			if i+2 >= len(fields) {
				return nil, fmt.Errorf("truncated name-status entry %q", code)
			}
			f.From, f.Path = fields[i+1], fields[i+2]
			i += 3
		default:
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("truncated name-status entry %q", code)
			}
			f.Path = fields[i+1]
			i += 2
		}
		files = append(files, f)
	}
	return files, nil
}

// TrackedFiles lists the paths in the index, relative to the top level.
func (r *Repository) TrackedFiles(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "ls-files")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// EnsureGitignoreTracked stages the root .gitignore when the index has no
// ignore file entry and one exists on disk.
func (r *Repository) EnsureGitignoreTracked(ctx context.Context) error {
	files, err := r.TrackedFiles(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		if path.Base(f) == gitignore {
			return nil
		}
	}

	if _, err := os.Stat(filepath.Join(r.path, gitignore)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return r.run(ctx, "add", "--", gitignore)
}

func (r *Repository) StageAll(ctx context.Context) error {
	return r.run(ctx, "add", "-A")
}

// StagedDiff returns the index diff against HEAD, or "" when nothing is staged.
func (r *Repository) StagedDiff(ctx context.Context) (string, error) {
	return r.output(ctx, "diff", "--cached")
}

// Commit records the index using the contents of messageFile as the message.
func (r *Repository) Commit(ctx context.Context, messageFile string) error {
	return r.run(ctx, "commit", "-F", messageFile)
}

// Push sends the current branch to its upstream.
func (r *Repository) Push(ctx context.Context) error {
	return r.run(ctx, "push")
}
