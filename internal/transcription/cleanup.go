package transcription

import (
	"context"
	"os"
)

// cleanupTempDir removes a temporary directory, logs warning if fails
func (a *implAdapter) cleanupTempDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		a.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	} else {
		a.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
	}
}
