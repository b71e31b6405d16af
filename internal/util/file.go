package util

import (
	"os"
	"path/filepath"
	"strings"
)

// VideoExtensions is the list of supported video file extensions.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".mkv":  true,
	".mpg":  true,
	".mpeg": true,
	".wmv":  true,
	".flv":  true,
	".ts":   true,
	".ogv":  true,
}

// AudioExtensions is the list of supported audio file extensions.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
}

// IsVideoFile checks if the given path is an existing video file.
func IsVideoFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return VideoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudioFile checks if the given path is an existing audio file.
func IsAudioFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return AudioExtensions[strings.ToLower(filepath.Ext(path))]
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
