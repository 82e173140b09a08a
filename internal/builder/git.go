package builder

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/amanmcp/amanmcp-flat/internal/fragment"
)

// refreshGitMetadata sets idx.LatestCommitHash and idx.IsDirty by shelling
// out to git in idx.Path, matching the vjache-cie tools.GitExecutor idiom:
// exec.CommandContext, buffered stdout/stderr, errors folded into a safe
// default rather than propagated (spec §4.5: fallback "unknown" on error;
// any status error counts as dirty).
func refreshGitMetadata(ctx context.Context, idx *fragment.Index) {
	idx.LatestCommitHash = gitRevParseHead(ctx, idx.Path)
	idx.IsDirty = gitIsDirty(ctx, idx.Path)
}

func gitRevParseHead(ctx context.Context, repoPath string) string {
	out, err := runGit(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "unknown"
	}
	hash := strings.TrimSpace(out)
	if hash == "" {
		return "unknown"
	}
	return hash
}

func gitIsDirty(ctx context.Context, repoPath string) bool {
	out, err := runGit(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		return true
	}
	return strings.TrimSpace(out) != ""
}

func runGit(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}
