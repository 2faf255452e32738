package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd tries to find the project root "darasa".
// go-test changes the working directory to the test package being run during tests...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	root := "darasa"
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(currDir); err == nil {
			if filepath.Base(currDir) == root && fi.IsDir() {
				return currDir
			}
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // fall back to the actual working directory
		}
		currDir = newDir
	}
}

// ID-slice helpers. Every mirrored relationship in the store goes through
// these so that both sides of a link are always updated the same way.

// ContainsID reports whether id is in ids.
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID appends id to ids if absent.
func AddID(ids []string, id string) []string {
	if ContainsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveID returns ids without any occurrence of id. It always allocates:
// filtering the shared backing array in place would corrupt row snapshots
// handed out by earlier reads.
func RemoveID(ids []string, id string) []string {
	res := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			res = append(res, v)
		}
	}
	return res
}

// DiffIDs returns the ids present in new but not old (added) and those
// present in old but not new (removed).
func DiffIDs(old, new []string) (added, removed []string) {
	for _, id := range new {
		if !ContainsID(old, id) {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !ContainsID(new, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// CopyIDs returns a copy of ids, never nil.
func CopyIDs(ids []string) []string {
	res := make([]string, len(ids))
	copy(res, ids)
	return res
}
