//go:build windows

package enumerator

// deviceInodeKey has no portable equivalent via os.FileInfo on Windows;
// cycle protection there falls back to the depth bound alone (spec.md
// §4.A allows either mechanism).
func deviceInodeKey(path string) (string, bool) {
	return "", false
}
