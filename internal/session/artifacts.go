package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

var lastStamp atomic.Int64

// nextStamp returns a millisecond timestamp that is strictly greater than
// every stamp returned before in this process.
func nextStamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := lastStamp.Load()
		if now <= last {
			now = last + 1
		}
		if lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScopeName turns a test name into a directory name.
func ScopeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		return "session"
	}
	return s
}

// ArtifactDir is a directory that is created on first use
type ArtifactDir struct {
	root string
}

// NewArtifactDir scopes root by the sanitized name. An empty root means the
// current directory.
func NewArtifactDir(root, name string) *ArtifactDir {
	if root == "" {
		root = "."
	}
	return &ArtifactDir{root: filepath.Join(root, ScopeName(name))}
}

// Path returns the directory path
func (a *ArtifactDir) Path() string {
	return a.root
}

// Ensure creates the directory if it is missing. Concurrent callers may race
// on creation; any of them succeeding is success for all.
func (a *ArtifactDir) Ensure() error {
	info, err := os.Stat(a.root)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("artifact path %s is not a directory", a.root)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat artifact directory: %w", err)
	}
	if err := os.MkdirAll(a.root, 0o755); err != nil {
		if info, statErr := os.Stat(a.root); statErr == nil && info.IsDir() {
			return nil
		}
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return nil
}

// NewFile ensures the directory and returns a fresh "<label>-<millis>.<ext>" path.
func (a *ArtifactDir) NewFile(label, ext string) (string, error) {
	if err := a.Ensure(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%d.%s", ScopeName(label), nextStamp(), strings.TrimPrefix(ext, "."))
	return filepath.Join(a.root, name), nil
}
