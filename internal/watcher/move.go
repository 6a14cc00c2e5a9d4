package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// moveFile renames src to dst. An existing dst is kept and the new file
// gets a timestamp before its extension instead.
func moveFile(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(dst)
		dst = fmt.Sprintf("%s-%s%s", strings.TrimSuffix(dst, ext), time.Now().Format("20060102-150405.000"), ext)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(src), err)
	}
	return nil
}
