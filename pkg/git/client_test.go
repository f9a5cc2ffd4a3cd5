package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	unlock, err := client.Lock(context.Background())
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, LockFile)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	// A second acquisition must wait; give up after a short deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Lock(ctx); err == nil {
		t.Error("expected contended lock to time out")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestBlobSHA(t *testing.T) {
	if got := BlobSHA([]byte("hello\n")); got != "ce013625030ba8dba906f756967f9e9ca394464a" {
		t.Errorf("unexpected blob sha %s", got)
	}
	if got := BlobSHA(nil); got != "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391" {
		t.Errorf("unexpected empty blob sha %s", got)
	}
}

func requireGit(t *testing.T) {
	t.Helper()
	if !IsInstalled() {
		t.Skip("git not installed")
	}
}

func TestClient_InitCommitLog(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if err := client.Init(ctx, "main"); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if !client.IsRepo() {
		t.Fatal(".git directory not created")
	}

	entries, err := client.Log(ctx, 10)
	if err != nil {
		t.Fatalf("Log on empty repo failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty log, got %v", entries)
	}

	content := []byte(`{"visible":false}`)
	for i, msg := range []string{"chore: initialize eid", "feat: set eid\n\nPowered-by: Minbar"} {
		if err := os.WriteFile(filepath.Join(tmpDir, "eid.json"), append(content, byte('0'+i)), 0644); err != nil {
			t.Fatal(err)
		}
		if err := client.Add(ctx, "eid.json"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := client.Commit(ctx, msg); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
	}

	entries, err = client.Log(ctx, 1)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "feat: set eid\n\nPowered-by: Minbar" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}

	branch, err := client.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if branch != "main" {
		t.Errorf("expected branch main, got %s", branch)
	}

	// the stored blob id matches BlobSHA
	out, err := exec.Command("git", "-C", tmpDir, "rev-parse", "HEAD:eid.json").Output()
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(out)); got != BlobSHA(append(content, '1')) {
		t.Errorf("blob id %s does not match BlobSHA", got)
	}
}
