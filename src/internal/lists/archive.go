package lists

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/utils"
)

// Extract unpacks every entry of the zip archive into destDir, overwriting files that
// already exist. It returns the paths of the regular files it wrote.
func Extract(archivePath, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.NewArchiveError(fmt.Sprintf("failed to open archive %s", archivePath), err)
	}
	defer utils.CloseOrWarn(reader)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.NewArchiveError(fmt.Sprintf("failed to create directory %s", destDir), err)
	}

	var written []string
	for _, entry := range reader.File {
		target := filepath.Join(destDir, entry.Name)
		if !utils.IsWithinDir(destDir, target) {
			return written, errors.NewArchiveError(fmt.Sprintf("archive entry %q escapes %s", entry.Name, destDir), nil)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, errors.NewArchiveError(fmt.Sprintf("failed to create directory %s", target), err)
			}
			continue
		}

		if err := extractEntry(entry, target); err != nil {
			return written, errors.NewArchiveError(fmt.Sprintf("failed to extract %s", entry.Name), err)
		}
		log.Debugf("Extracted %s", target)
		written = append(written, target)
	}

	log.Infof("Extracted %d files into %s", len(written), destDir)
	return written, nil
}

func extractEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer utils.CloseOrWarn(src)

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
