package lists

import (
	"fmt"
	"os"
	"strings"

	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/utils"
)

// WriteList replaces the content of path with records joined by "\n".
// No trailing newline is written.
func WriteList(path string, records []string) error {
	content := strings.Join(records, "\n")
	if err := utils.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		return errors.NewListError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// ReadList returns the non-empty records of a list written by WriteList.
func ReadList(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewListError(fmt.Sprintf("list %s is not readable", path), err)
	}

	var records []string
	if err := iterateOverFile(path, func(record string) {
		records = append(records, record)
	}); err != nil {
		return nil, errors.NewListError(fmt.Sprintf("failed to read %s", path), err)
	}
	return records, nil
}
