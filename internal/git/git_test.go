package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hluaguo/ponopush/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStatusStatusLabel(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"modified", "M", "modified"},
		{"added", "A", "added"},
		{"deleted", "D", "deleted"},
		{"renamed", "R", "renamed"},
		{"copied", "C", "copied"},
		{"type changed", "T", "type changed"},
		{"unknown", "X", "X"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := git.FileStatus{Path: "test.go", Status: tt.status}
			assert.Equal(t, tt.expected, fs.StatusLabel())
		})
	}
}

// runGit runs git in dir and fails the test on error.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

func setupTestRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	repo, err := git.New(context.Background(), dir)
	require.NoError(t, err)
	return dir, repo
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func TestNewOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	_, err := git.New(context.Background(), dir)
	assert.EqualError(t, err, "not a git repository")
}

func TestNewResolvesTopLevel(t *testing.T) {
	dir, _ := setupTestRepo(t)
	sub := filepath.Join(dir, "pkg", "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	repo, err := git.New(context.Background(), sub)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStageAllAndStagedFiles(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "docs/readme.md", "# hi\n")

	files, err := repo.StagedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files, "nothing staged yet")

	require.NoError(t, repo.StageAll(ctx))

	files, err = repo.StagedFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, "added", f.StatusLabel(), f.Path)
	}
}

func TestStagedFilesAfterCommit(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	writeFile(t, dir, "keep.go", "package keep\n")
	writeFile(t, dir, "gone.go", "package gone\n")
	writeFile(t, dir, "old name.go", "package moved\n\nfunc A() {}\nfunc B() {}\nfunc C() {}\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	writeFile(t, dir, "keep.go", "package keep\n\nvar x = 1\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "gone.go")))
	runGit(t, dir, "mv", "old name.go", "new name.go")
	require.NoError(t, repo.StageAll(ctx))

	files, err := repo.StagedFiles(ctx)
	require.NoError(t, err)

	byPath := map[string]git.FileStatus{}
	for _, f := range files {
		byPath[f.Path] = f
	}
	require.Len(t, byPath, 3)
	assert.Equal(t, "deleted", byPath["gone.go"].StatusLabel())
	assert.Equal(t, "modified", byPath["keep.go"].StatusLabel())
	assert.Equal(t, "renamed", byPath["new name.go"].StatusLabel())
	assert.Equal(t, "old name.go", byPath["new name.go"].From)
}

func TestStagedDiff(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	diff, err := repo.StagedDiff(ctx)
	require.NoError(t, err)
	assert.Empty(t, diff, "nothing staged yet")

	writeFile(t, dir, "parser.go", "package parser\n\nvar Limit = 10\n")
	writeFile(t, dir, "unstaged.go", "package parser\n\nvar Hidden = 1\n")
	runGit(t, dir, "add", "parser.go")

	diff, err = repo.StagedDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, diff, "var Limit = 10")
	assert.NotContains(t, diff, "Hidden", "unstaged changes must not appear")
}

func TestEnsureGitignoreTracked(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	writeFile(t, dir, ".gitignore", "bin/\n")
	require.NoError(t, repo.EnsureGitignoreTracked(ctx))

	tracked, err := repo.TrackedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore"}, tracked)
}

func TestEnsureGitignoreTrackedWithoutFile(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "main.go", "package main\n")

	require.NoError(t, repo.EnsureGitignoreTracked(ctx))

	tracked, err := repo.TrackedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracked)
}

func TestEnsureGitignoreTrackedAlreadyTracked(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	writeFile(t, dir, "web/.gitignore", "node_modules/\n")
	writeFile(t, dir, ".gitignore", "bin/\n")
	runGit(t, dir, "add", "web/.gitignore")

	require.NoError(t, repo.EnsureGitignoreTracked(ctx))

	tracked, err := repo.TrackedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"web/.gitignore"}, tracked, "an existing ignore entry satisfies the check")
}

func TestCommitUsesMessageFile(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	writeFile(t, dir, "parser.go", "package parser\n")
	require.NoError(t, repo.StageAll(ctx))

	msgFile := filepath.Join(t.TempDir(), "msg")
	require.NoError(t, os.WriteFile(msgFile, []byte("Fix off-by-one in parser\n\nBody line.\n"), 0600))
	require.NoError(t, repo.Commit(ctx, msgFile))

	log := runGit(t, dir, "log", "-1", "--format=%B")
	assert.Equal(t, "Fix off-by-one in parser\n\nBody line.\n", strings.TrimRight(log, "\n")+"\n")
}

func TestCommitNothingStaged(t *testing.T) {
	_, repo := setupTestRepo(t)

	msgFile := filepath.Join(t.TempDir(), "msg")
	require.NoError(t, os.WriteFile(msgFile, []byte("Empty\n"), 0600))

	err := repo.Commit(context.Background(), msgFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git commit failed")
}

func TestPush(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	remote := t.TempDir()
	runGit(t, remote, "init", "-q", "--bare")
	runGit(t, dir, "remote", "add", "origin", remote)

	writeFile(t, dir, "a.txt", "one\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "first")
	runGit(t, dir, "push", "-q", "-u", "origin", "HEAD")

	writeFile(t, dir, "a.txt", "two\n")
	require.NoError(t, repo.StageAll(ctx))
	msgFile := filepath.Join(t.TempDir(), "msg")
	require.NoError(t, os.WriteFile(msgFile, []byte("second\n"), 0600))
	require.NoError(t, repo.Commit(ctx, msgFile))
	require.NoError(t, repo.Push(ctx))

	local := strings.TrimSpace(runGit(t, dir, "rev-parse", "HEAD"))
	branch := strings.TrimSpace(runGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"))
	pushed := strings.TrimSpace(runGit(t, remote, "rev-parse", branch))
	assert.Equal(t, local, pushed)
}

func TestPushWithoutRemote(t *testing.T) {
	dir, repo := setupTestRepo(t)
	ctx := context.Background()

	writeFile(t, dir, "a.txt", "one\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "first")

	err := repo.Push(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git push failed")
}
