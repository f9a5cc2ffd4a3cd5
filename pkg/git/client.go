// Package git drives the git CLI for locally hosted sites.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LockFile is the name of the per-site lock file.
const LockFile = ".minbar.lock"

// Client wraps git command execution with a file-based lock for process safety.
type Client struct {
	WorkDir  string
	Logger   *slog.Logger
	lockPath string
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir:  workDir,
		Logger:   logger,
		lockPath: LockFile,
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires the file lock, polling until it is free or ctx is done.
func (c *Client) Lock(ctx context.Context) (func(), error) {
	fullLockPath := filepath.Join(c.WorkDir, c.lockPath)

	for {
		// Try to create lock file atomically
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Run executes a raw git command in the working directory.
// NOTE: It does NOT acquire the lock automatically. The caller must manage transaction safety via Client.Lock().
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return strings.TrimSpace(output), nil
}

// IsRepo reports whether WorkDir is the top of a git repository.
func (c *Client) IsRepo() bool {
	info, err := os.Stat(filepath.Join(c.WorkDir, ".git"))
	return err == nil && info.IsDir()
}

// Init initializes a repository whose first commit will land on branch.
// A local identity is configured so commits work on machines without one.
func (c *Client) Init(ctx context.Context, branch string) error {
	if _, err := c.Run(ctx, "init"); err != nil {
		return err
	}
	if branch != "" {
		if _, err := c.Run(ctx, "symbolic-ref", "HEAD", "refs/heads/"+branch); err != nil {
			return err
		}
	}
	if _, err := c.Run(ctx, "config", "user.name", "minbar"); err != nil {
		return err
	}
	_, err := c.Run(ctx, "config", "user.email", "minbar@localhost")
	return err
}

// Add adds files to the stage.
func (c *Client) Add(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, files...)
	_, err := c.Run(ctx, args...)
	return err
}

// Commit records the staged changes. A write that leaves content unchanged
// still gets its commit so every operation shows up in the history.
func (c *Client) Commit(ctx context.Context, msg string) error {
	_, err := c.Run(ctx, "commit", "--allow-empty", "-m", msg)
	return err
}

// LogEntry is one commit as reported by Log.
type LogEntry struct {
	SHA     string
	Message string
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Log returns up to limit commits reachable from HEAD, newest first.
// A repository without commits yields an empty log.
func (c *Client) Log(ctx context.Context, limit int) ([]LogEntry, error) {
	args := []string{"log", "--format=%H" + fieldSep + "%B" + recordSep}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	out, err := c.Run(ctx, args...)
	if err != nil {
		if strings.Contains(out, "does not have any commits") {
			return nil, nil
		}
		return nil, err
	}

	var entries []LogEntry
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		sha, msg, _ := strings.Cut(record, fieldSep)
		entries = append(entries, LogEntry{SHA: sha, Message: strings.TrimSpace(msg)})
	}
	return entries, nil
}
