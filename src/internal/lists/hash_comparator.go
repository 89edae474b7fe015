package lists

import (
	"errors"
	"io"
	"os"

	"github.com/ipmerge/ipmerge/src/internal/hashing"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/utils"
)

// ChecksumPath returns the sidecar file holding the checksum of filePath.
func ChecksumPath(filePath string) string {
	return filePath + ".md5"
}

// IsFileChanged compares the provider's checksum with the one stored next to filePath.
// A missing file or checksum counts as changed.
func IsFileChanged(checksumProxy hashing.ChecksumProvider, filePath string) (bool, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return true, nil
	}

	md5, err := checksumProxy.GetChecksum()
	if err != nil {
		return false, err
	}

	checksumFilePath := ChecksumPath(filePath)
	checksum, err := readChecksum(checksumFilePath)
	if err != nil {
		log.Debugf("Failed to read checksum file '%s', assuming it's changed: %v", checksumFilePath, err)
		return true, nil
	}
	return string(checksum) != md5, nil
}

func readChecksum(checksumFilePath string) ([]byte, error) {
	checksumFile, err := os.Open(checksumFilePath)
	if err != nil {
		return nil, err
	}
	defer utils.CloseOrWarn(checksumFile)

	return io.ReadAll(checksumFile)
}

func WriteChecksum(checksumProxy hashing.ChecksumProvider, filePath string) error {
	checksum, err := checksumProxy.GetChecksum()
	if err != nil {
		return err
	}
	return os.WriteFile(ChecksumPath(filePath), []byte(checksum), 0644)
}
