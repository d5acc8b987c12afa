// Package transport invokes the ssh and rsync binaries via os/exec to
// move code and commands between the control plane and fleet nodes.
// Handling the SSH protocol itself is explicitly out of scope (spec.md
// §1 Non-goals) — this package shells out to whatever ssh client is on
// PATH rather than embedding one.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// Timeouts matching original_source/slm-server/services/sync_orchestrator.py.
const (
	PullTimeout     = 5 * time.Minute
	SyncTimeout     = 120 * time.Second
	PostSyncTimeout = 5 * time.Minute
	RestartTimeout  = 60 * time.Second
)

// sshKeyPathEnv names the environment variable holding the private key
// path used for every ssh/rsync invocation.
const sshKeyPathEnv = "SSH_KEY_PATH"

// defaultSSHKeyPath mirrors the source's SLM_SSH_KEY default.
const defaultSSHKeyPath = "/home/autobot/.ssh/autobot_key"

// maxConcurrentSSHEnv caps the number of outbound ssh/rsync child
// processes in flight at once, so a large fan-out doesn't exhaust a
// remote sshd's MaxStartups. Additional callers block until a slot
// frees up rather than failing outright.
const maxConcurrentSSHEnv = "MAX_CONCURRENT_SSH"

const defaultMaxConcurrentSSH = 16

var (
	sshLimiterOnce sync.Once
	sshLimiter     chan struct{}
)

func acquireSSHSlot(ctx context.Context) error {
	sshLimiterOnce.Do(func() {
		n := defaultMaxConcurrentSSH
		if v := os.Getenv(maxConcurrentSSHEnv); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				n = parsed
			}
		}
		sshLimiter = make(chan struct{}, n)
	})
	select {
	case sshLimiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func releaseSSHSlot() {
	<-sshLimiter
}

// Target is the remote endpoint an operation runs against.
type Target struct {
	User string
	Host string
	Port int
}

func (t Target) userHost() string {
	return fmt.Sprintf("%s@%s", t.User, t.Host)
}

func sshKeyPath() string {
	if p := os.Getenv(sshKeyPathEnv); p != "" {
		return p
	}
	return defaultSSHKeyPath
}

// sshFlags builds the ssh option flags for a direct ssh invocation;
// sshCommandString joins the same flags into the string rsync's -e wants.
func sshFlags(port int) []string {
	flags := []string{
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "ConnectTimeout=30",
	}
	if port != 0 && port != 22 {
		flags = append(flags, "-p", fmt.Sprintf("%d", port))
	}
	if keyPath := sshKeyPath(); fileExists(keyPath) {
		flags = append(flags, "-i", keyPath)
	}
	return flags
}

func sshCommandString(port int) string {
	cmd := "ssh"
	for _, f := range sshFlags(port) {
		cmd += " " + f
	}
	return cmd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// pullExcludes are skipped on the control-plane-to-cache pull; they
// match slm-server's exact list for pulling a full repo checkout.
var pullExcludes = []string{".git", "__pycache__", "*.pyc", "node_modules", "venv", ".venv"}

// syncExcludes are skipped on the cache-to-node push, a narrower list
// since the cache has already stripped VCS/dependency directories.
var syncExcludes = []string{"__pycache__", "*.pyc"}

// Result is the outcome of a subprocess invocation.
type Result struct {
	ExitCode int
	Output   string
}

func (r Result) Success() bool { return r.ExitCode == 0 }

// run executes name with args, capturing combined stdout+stderr, bounded
// by ctx. A context deadline exceeded surfaces as an error distinct from
// a nonzero exit code. Every invocation counts against the shared
// MAX_CONCURRENT_SSH ceiling; callers queue for a slot rather than race
// ahead of it.
func run(ctx context.Context, name string, args ...string) (Result, error) {
	if err := acquireSSHSlot(ctx); err != nil {
		return Result{}, fmt.Errorf("%s: waiting for ssh slot: %w", name, err)
	}
	defer releaseSSHSlot()

	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("%s timed out: %w", name, ctx.Err())
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return Result{ExitCode: exitErr.ExitCode(), Output: buf.String()}, nil
		}
		return Result{}, fmt.Errorf("%s: %w", name, err)
	}
	return Result{ExitCode: 0, Output: buf.String()}, nil
}

func rsyncArgs(excludes []string, extra ...string) []string {
	args := []string{"-avz", "--delete"}
	for _, e := range excludes {
		args = append(args, "--exclude", e)
	}
	return append(args, extra...)
}

// Pull mirrors repoPath on the source node into localDest (the code
// cache). Used once per commit, by the Cache Manager.
func Pull(ctx context.Context, src Target, repoPath, localDest string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, PullTimeout)
	defer cancel()

	args := rsyncArgs(pullExcludes,
		"-e", sshCommandString(src.Port),
		fmt.Sprintf("%s:%s/", src.userHost(), repoPath),
		localDest+"/",
	)
	return run(ctx, "rsync", args...)
}

// Push syncs localSrc (a path within the code cache) to remotePath on
// dst. trailingSlash mirrors the source path's own trailing slash,
// which rsync treats as "sync contents" rather than "sync directory".
func Push(ctx context.Context, dst Target, localSrc string, trailingSlash bool, remotePath string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, SyncTimeout)
	defer cancel()

	source := localSrc
	if trailingSlash {
		source += "/"
	}
	args := rsyncArgs(syncExcludes,
		"-e", sshCommandString(dst.Port),
		source,
		fmt.Sprintf("%s:%s/", dst.userHost(), remotePath),
	)
	return run(ctx, "rsync", args...)
}

// RunCommand runs cmd on dst over ssh, bounded by timeout.
func RunCommand(ctx context.Context, dst Target, timeout time.Duration, cmd string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(sshFlags(dst.Port), dst.userHost(), cmd)
	return run(ctx, "ssh", args...)
}

// RunPostSyncCommand runs a role's configured post_sync_cmd on dst.
// Failure here is logged by the caller, not fatal to the sync.
func RunPostSyncCommand(ctx context.Context, dst Target, cmd string) (Result, error) {
	return RunCommand(ctx, dst, PostSyncTimeout, cmd)
}

// RestartService restarts a systemd unit on dst via sudo.
func RestartService(ctx context.Context, dst Target, unit string) (Result, error) {
	return RunCommand(ctx, dst, RestartTimeout, fmt.Sprintf("sudo systemctl restart %s", unit))
}
