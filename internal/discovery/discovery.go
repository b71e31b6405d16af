// Package discovery provides media file discovery for batch runs.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// Kind selects which media types a scan accepts.
type Kind int

const (
	// KindVideo matches video container extensions.
	KindVideo Kind = iota
	// KindAudio matches audio extensions.
	KindAudio
	// KindAny matches both.
	KindAny
)

func (k Kind) matches(path string) bool {
	switch k {
	case KindVideo:
		return util.IsVideoFile(path)
	case KindAudio:
		return util.IsAudioFile(path)
	default:
		return util.IsVideoFile(path) || util.IsAudioFile(path)
	}
}

// Result contains the results of file discovery with metadata.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindMediaFiles finds matching media files in the given directory.
// Hidden files and subdirectories are skipped; results are sorted
// alphabetically by filename.
func FindMediaFiles(inputDir string, kind Kind) (*Result, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, errors.NewIOError("directory does not exist: "+inputDir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewIOError(inputDir+" is not a directory", nil)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, errors.NewIOError("cannot read directory "+inputDir, err)
	}

	result := &Result{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		fullPath := filepath.Join(inputDir, name)
		if kind.matches(fullPath) {
			result.Files = append(result.Files, fullPath)
		} else {
			result.SkippedCount++
		}
	}

	if len(result.Files) == 0 {
		return nil, errors.NewNoFilesFoundError(inputDir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(result.Files[i])) < strings.ToLower(filepath.Base(result.Files[j]))
	})

	return result, nil
}

// FindVideoFiles finds video files in the given directory.
func FindVideoFiles(inputDir string) ([]string, error) {
	result, err := FindMediaFiles(inputDir, KindVideo)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}
