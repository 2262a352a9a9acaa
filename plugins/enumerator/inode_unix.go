//go:build !windows

package enumerator

import (
	"fmt"
	"os"
	"syscall"
)

// deviceInodeKey identifies a directory by (device, inode) so the
// enumerator can detect a symlink cycle without relying on depth alone.
func deviceInodeKey(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%d:%d", stat.Dev, stat.Ino), true
}
