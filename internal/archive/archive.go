// Package archive bundles pipeline artifacts into a single ZIP file.
package archive

import (
	"io"
	"os"

	"github.com/klauspost/compress/zip"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
)

// Entry is one file to include in an archive.
type Entry struct {
	// Name is the path of the entry inside the archive.
	Name string
	// Path is the file on disk to read.
	Path string
}

// ProgressFunc receives the overall completion percentage as bytes are
// compressed.
type ProgressFunc func(percent float64)

// Create writes the given entries into a ZIP archive at zipPath. Entries
// are stored in order. onProgress, when set, is called as input bytes are
// consumed and once more with 100 on completion.
func Create(zipPath string, entries []Entry, onProgress ProgressFunc) error {
	if len(entries) == 0 {
		return errors.NewInvalidOptionsError("no entries to archive", nil)
	}

	var totalBytes int64
	for _, entry := range entries {
		info, err := os.Stat(entry.Path)
		if err != nil {
			return errors.NewIOError("stat "+entry.Path, err)
		}
		totalBytes += info.Size()
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return errors.NewIOError("creating archive "+zipPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	var doneBytes int64

	for _, entry := range entries {
		w, err := zw.Create(entry.Name)
		if err != nil {
			return errors.NewIOError("adding archive entry "+entry.Name, err)
		}

		in, err := os.Open(entry.Path)
		if err != nil {
			return errors.NewIOError("opening "+entry.Path, err)
		}

		n, err := io.Copy(w, &progressReader{
			r: in,
			onRead: func(read int64) {
				if onProgress != nil && totalBytes > 0 {
					onProgress(float64(doneBytes+read) / float64(totalBytes) * 100)
				}
			},
		})
		in.Close()
		if err != nil {
			return errors.NewIOError("compressing "+entry.Name, err)
		}
		doneBytes += n
	}

	if err := zw.Close(); err != nil {
		return errors.NewIOError("finalizing archive "+zipPath, err)
	}
	if onProgress != nil {
		onProgress(100)
	}
	return nil
}

// progressReader reports cumulative bytes read through it.
type progressReader struct {
	r      io.Reader
	read   int64
	onRead func(read int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.onRead(p.read)
	}
	return n, err
}
