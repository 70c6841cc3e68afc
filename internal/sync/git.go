// Package sync keeps the data directory in a git repository: it initialises
// the repo, commits state changes with readable messages and pulls or pushes
// when a remote is configured.
package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	gosync "sync"
	"time"

	"lifethoughts/internal/fsutil"
	"lifethoughts/internal/store"
)

// ErrNotRepo is returned when the data directory has not been initialised.
var ErrNotRepo = errors.New("not a git repository - run 'thoughts sync --init' first")

// Config holds git sync configuration.
type Config struct {
	Enabled       bool
	AutoCommit    bool
	AutoPush      bool
	PullOnStartup bool
	CommitMessage string // "auto" or a fixed message
}

// Status represents the current git status.
type Status struct {
	IsRepo       bool
	HasRemote    bool
	RemoteName   string
	RemoteURL    string
	Branch       string
	Ahead        int
	Behind       int
	HasChanges   bool
	LastCommitAt *time.Time
}

const gitignore = `# thoughts - git sync ignore file
backups/
logs/
*.bak
*.corrupt.*
*.tmp-*
`

const (
	defaultGitTimeout  = 10 * time.Second
	pullPushGitTimeout = 60 * time.Second
	commitGitTimeout   = 15 * time.Second
)

// GitSync manages git operations for the data directory.
type GitSync struct {
	dataDir string
	config  Config
	logger  *slog.Logger

	// describe turns a quote ID into commit message text.
	describe func(id string) string

	mu           gosync.Mutex
	pendingFiles map[string]struct{}
	pending      []store.SaveContext
	commitTimer  *time.Timer
	debounce     time.Duration

	// Serializes git operations to avoid index/lock conflicts.
	opMu gosync.Mutex
}

// New creates a GitSync for dataDir.
func New(dataDir string, cfg Config, logger *slog.Logger) *GitSync {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GitSync{
		dataDir:      dataDir,
		config:       cfg,
		logger:       logger,
		pendingFiles: make(map[string]struct{}),
		debounce:     2 * time.Second,
	}
}

// SetDescriber sets how quote IDs are rendered in commit messages.
func (g *GitSync) SetDescriber(fn func(id string) string) {
	g.mu.Lock()
	g.describe = fn
	g.mu.Unlock()
}

// IsGitInstalled checks if git is available on the system.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether the data directory is a git repository.
func (g *GitSync) IsRepo() bool {
	info, err := os.Stat(filepath.Join(g.dataDir, ".git"))
	return err == nil && info.IsDir()
}

// Init creates the repository, writes .gitignore and makes the first commit.
func (g *GitSync) Init(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !IsGitInstalled() {
		return errors.New("git is not installed")
	}
	if err := os.MkdirAll(g.dataDir, 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if _, err := g.git(ctx, commitGitTimeout, "init"); err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(g.dataDir, ".gitignore"), []byte(gitignore), 0600); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	files := []string{".gitignore"}
	if fsutil.Exists(filepath.Join(g.dataDir, store.StateFile)) {
		files = append(files, store.StateFile)
	}
	if _, err := g.git(ctx, defaultGitTimeout, append([]string{"add"}, files...)...); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	if _, err := g.git(ctx, commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", "Initialize thoughts data repository"); err != nil {
		if !isGitNothingToCommit(err) {
			return fmt.Errorf("failed to create initial commit: %w", err)
		}
	}
	return nil
}

// Status returns the current git status.
func (g *GitSync) Status(ctx context.Context) (*Status, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	status := &Status{IsRepo: g.IsRepo()}
	if !status.IsRepo {
		return status, nil
	}

	if branch, err := g.git(ctx, defaultGitTimeout, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		status.Branch = trimOutput(branch)
	}

	// First line looks like "origin\tgit@host:me/thoughts.git (fetch)".
	if remotes, err := g.git(ctx, defaultGitTimeout, "remote", "-v"); err == nil && trimOutput(remotes) != "" {
		status.HasRemote = true
		first, _, _ := strings.Cut(trimOutput(remotes), "\n")
		if parts := strings.Fields(first); len(parts) >= 2 {
			status.RemoteName = parts[0]
			status.RemoteURL = parts[1]
		}
	}

	if out, err := g.git(ctx, defaultGitTimeout, "status", "--porcelain"); err == nil {
		status.HasChanges = trimOutput(out) != ""
	}

	if status.HasRemote && status.Branch != "" {
		upstream := status.RemoteName + "/" + status.Branch
		if out, err := g.git(ctx, defaultGitTimeout, "rev-list", "--left-right", "--count", status.Branch+"..."+upstream); err == nil {
			_, _ = fmt.Sscanf(trimOutput(out), "%d\t%d", &status.Ahead, &status.Behind)
		}
	}

	if out, err := g.git(ctx, defaultGitTimeout, "log", "-1", "--format=%ci"); err == nil && trimOutput(out) != "" {
		if t, err := time.Parse("2006-01-02 15:04:05 -0700", trimOutput(out)); err == nil {
			status.LastCommitAt = &t
		}
	}
	return status, nil
}

// CommitAll stages and commits every change with message.
func (g *GitSync) CommitAll(ctx context.Context, message string) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return ErrNotRepo
	}
	if message == "" {
		message = "Update thoughts data"
	}
	return g.commitLocked(ctx, []string{"-A"}, message)
}

// Pull fetches and rebases onto the remote.
func (g *GitSync) Pull(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.requireRemoteLocked(ctx); err != nil {
		return err
	}
	if _, err := g.git(ctx, pullPushGitTimeout, "pull", "--rebase"); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	return nil
}

// Push pushes local commits to the remote.
func (g *GitSync) Push(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()
	return g.pushLocked(ctx)
}

func (g *GitSync) pushLocked(ctx context.Context) error {
	if err := g.requireRemoteLocked(ctx); err != nil {
		return err
	}
	if _, err := g.git(ctx, pullPushGitTimeout, "push"); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	return nil
}

func (g *GitSync) requireRemoteLocked(ctx context.Context) error {
	if !g.IsRepo() {
		return ErrNotRepo
	}
	remotes, err := g.git(ctx, defaultGitTimeout, "remote")
	if err != nil || trimOutput(remotes) == "" {
		return errors.New("no remote configured - add one with 'thoughts sync --remote <url>'")
	}
	return nil
}

// AddRemote adds the named remote, or updates its URL if it exists.
func (g *GitSync) AddRemote(ctx context.Context, name, url string) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return ErrNotRepo
	}
	if name == "" {
		return errors.New("remote name is required")
	}
	if url == "" {
		return errors.New("remote URL is required")
	}

	remotes, _ := g.git(ctx, defaultGitTimeout, "remote")
	action := "add"
	if slices.Contains(strings.Fields(remotes), name) {
		action = "set-url"
	}
	if _, err := g.git(ctx, defaultGitTimeout, "remote", action, name, url); err != nil {
		return fmt.Errorf("failed to %s remote: %w", action, err)
	}
	return nil
}

// =============================================================================
// Auto-commit
// =============================================================================

// OnSave queues a store change for a debounced commit. Wire it with
// store.SetOnSave.
func (g *GitSync) OnSave(sc store.SaveContext) {
	if !g.config.Enabled || !g.config.AutoCommit || !g.IsRepo() {
		return
	}
	if sc.Filename == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.pendingFiles[sc.Filename] = struct{}{}
	g.pending = append(g.pending, sc)

	if g.commitTimer != nil {
		g.commitTimer.Stop()
	}
	g.commitTimer = time.AfterFunc(g.debounce, g.flushPending)
}

// Flush commits pending changes now instead of waiting for the debounce.
func (g *GitSync) Flush() {
	g.mu.Lock()
	if g.commitTimer != nil {
		g.commitTimer.Stop()
		g.commitTimer = nil
	}
	g.mu.Unlock()

	g.flushPending()
}

func (g *GitSync) flushPending() {
	g.mu.Lock()
	files := make([]string, 0, len(g.pendingFiles))
	for f := range g.pendingFiles {
		files = append(files, f)
	}
	slices.Sort(files)
	contexts := g.pending
	describe := g.describe
	g.pendingFiles = make(map[string]struct{})
	g.pending = nil
	g.mu.Unlock()

	if len(files) == 0 {
		return
	}

	message := g.commitMessage(contexts, describe)

	g.opMu.Lock()
	defer g.opMu.Unlock()

	ctx := context.Background()
	if err := g.commitLocked(ctx, files, message); err != nil {
		g.logger.Warn("auto-commit failed", "err", err)
		return
	}
	if g.config.AutoPush {
		if err := g.pushLocked(ctx); err != nil {
			g.logger.Warn("committed locally, but push failed", "err", err)
		}
	}
}

// commitLocked stages paths and commits if anything is staged.
func (g *GitSync) commitLocked(ctx context.Context, paths []string, message string) error {
	if !g.IsRepo() {
		return ErrNotRepo
	}
	if _, err := g.git(ctx, defaultGitTimeout, append([]string{"add"}, paths...)...); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}

	staged, err := g.git(ctx, defaultGitTimeout, "diff", "--cached", "--name-only")
	if err != nil {
		return fmt.Errorf("failed to check staged changes: %w", err)
	}
	if trimOutput(staged) == "" {
		return nil
	}

	if _, err := g.git(ctx, commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	g.logger.Debug("committed", "message", message)
	return nil
}

// =============================================================================
// Commit messages
// =============================================================================

var verbs = map[string]string{
	"save":   "Save",
	"unsave": "Remove",
	"show":   "Show",
	"update": "Update",
	"import": "Import",
}

// commitMessage summarises contexts, e.g. "Save thought: The obstacle is the way",
// "Save 3 thoughts" or "Update: 4 changes".
func (g *GitSync) commitMessage(contexts []store.SaveContext, describe func(string) string) string {
	if g.config.CommitMessage != "" && g.config.CommitMessage != "auto" {
		return g.config.CommitMessage
	}
	switch len(contexts) {
	case 0:
		return "Update thoughts data"
	case 1:
		return formatSemanticMessage(contexts[0], describe)
	}

	first := contexts[0]
	for _, sc := range contexts[1:] {
		if sc.Operation != first.Operation || sc.ItemType != first.ItemType {
			return fmt.Sprintf("Update: %d changes", len(contexts))
		}
	}
	return fmt.Sprintf("%s %d %ss", verb(first.Operation), len(contexts), first.ItemType)
}

func formatSemanticMessage(sc store.SaveContext, describe func(string) string) string {
	name := sc.ItemName
	if sc.ItemType == "thought" && describe != nil && name != "" {
		if d := describe(name); d != "" {
			name = d
		}
	}
	if name == "" {
		return fmt.Sprintf("%s %s", verb(sc.Operation), sc.ItemType)
	}
	return fmt.Sprintf("%s %s: %s", verb(sc.Operation), sc.ItemType, truncateForCommit(name, 50))
}

func verb(op string) string {
	if v, ok := verbs[op]; ok {
		return v
	}
	if op == "" {
		return "Update"
	}
	return strings.ToUpper(op[:1]) + op[1:]
}

func truncateForCommit(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes-1]) + "…"
}

// =============================================================================
// git plumbing
// =============================================================================

func (g *GitSync) git(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dataDir
	cmd.Env = envWithOverrides(os.Environ(), map[string]string{
		"GIT_TERMINAL_PROMPT": "0",
		"GIT_ASKPASS":         "",
		"SSH_ASKPASS":         "",
	})
	cmd.Stdin = bytes.NewReader(nil)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), timeout)
		}
		// "nothing to commit" is printed on stdout.
		msg := trimOutput(stderr.String())
		if msg == "" {
			msg = trimOutput(stdout.String())
		}
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.New(msg)
	}
	return stdout.String(), nil
}

func envWithOverrides(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, k+"="+overrides[k])
	}
	return out
}

func isGitNothingToCommit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}

func trimOutput(s string) string {
	return strings.TrimSpace(s)
}
