// Package enumerator implements the File Enumerator (spec.md §4.A):
// recursive, cycle-bounded, deterministically ordered discovery of .evtx
// paths under a file or directory root.
package enumerator

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huntops/evtxscan/internal"
	"github.com/karrick/godirwalk"
	"github.com/sirupsen/logrus"
)

// MaxDepth bounds traversal depth as a defense against symlink cycles that
// the visited-inode set alone wouldn't catch on exotic filesystems
// (spec.md §4.A).
const MaxDepth = 64

// Enumerate collects every .evtx file reachable from root. A root that is
// itself a regular .evtx file is returned as a single-element slice. A
// directory root is walked recursively with karrick/godirwalk; unreadable
// entries are pushed to errs and skipped, never fatal. The result is
// always lexicographically sorted so repeated runs over the same tree
// produce identical ordering (spec.md invariant 1).
func Enumerate(root string, errs internal.ErrorSink, log logrus.FieldLogger) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, internal.NewError(internal.KindIO, err)
	}

	if !info.IsDir() {
		if strings.HasSuffix(root, ".evtx") {
			return []string{root}, nil
		}
		return nil, internal.Errorf(internal.KindConfig, "--filepath only accepts .evtx files")
	}

	visited := make(map[string]struct{})
	var found []string

	err = godirwalk.Walk(root, &godirwalk.Options{
		FollowSymbolicLinks: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if strings.Count(path, string(os.PathSeparator))-strings.Count(root, string(os.PathSeparator)) > MaxDepth {
				return filepath.SkipDir
			}

			if de.IsDir() {
				key, ok := deviceInodeKey(path)
				if ok {
					if _, dup := visited[key]; dup {
						return filepath.SkipDir
					}
					visited[key] = struct{}{}
				}
				return nil
			}

			if de.IsRegular() && strings.HasSuffix(path, ".evtx") {
				found = append(found, path)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			errs.Push("enumerating %s: %v", path, err)
			if log != nil {
				log.WithField("path", path).WithError(err).Warn("skipping unreadable entry")
			}
			return godirwalk.SkipNode
		},
		Unsorted: false,
	})
	if err != nil {
		return nil, internal.NewError(internal.KindIO, err)
	}

	sort.Strings(found)
	return found, nil
}
