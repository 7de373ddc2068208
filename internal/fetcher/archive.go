package fetcher

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSourceFormat marks an archive whose contents do not match the
// expected shape: no file entries, a missing named entry, or an ambiguous
// multi-entry container when no entry name was given.
var ErrSourceFormat = errors.New("unexpected source format")

// extractArchive opens the zip container and returns the bytes of the
// feed entry. The historical archives each hold exactly one report file;
// anything else is a format error, not something to guess around.
func extractArchive(data []byte, entryName string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrSourceFormat, err)
	}

	var files []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: archive contains no file entries", ErrSourceFormat)
	}

	var target *zip.File
	if entryName != "" {
		for _, f := range files {
			if strings.EqualFold(f.Name, entryName) {
				target = f
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("%w: entry %q not found in archive", ErrSourceFormat, entryName)
		}
	} else {
		if len(files) != 1 {
			return nil, fmt.Errorf("%w: expected exactly one entry, archive holds %d", ErrSourceFormat, len(files))
		}
		target = files[0]
	}

	rc, err := target.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open entry %q: %v", ErrSourceFormat, target.Name, err)
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read entry %q: %v", ErrSourceFormat, target.Name, err)
	}
	return out, nil
}
