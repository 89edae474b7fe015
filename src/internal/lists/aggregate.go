package lists

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ipmerge/ipmerge/src/internal/errors"
	"github.com/ipmerge/ipmerge/src/internal/log"
	"github.com/ipmerge/ipmerge/src/internal/utils"
)

const maxLineLength = 1024 * 1024

// AddressSet is a set of address records keyed on exact string equality.
// Slice returns records in first-insertion order.
type AddressSet struct {
	index   map[string]struct{}
	records []string
}

func NewAddressSet() *AddressSet {
	return &AddressSet{index: make(map[string]struct{})}
}

// Add inserts a record and reports whether it was new.
func (s *AddressSet) Add(record string) bool {
	if _, ok := s.index[record]; ok {
		return false
	}
	s.index[record] = struct{}{}
	s.records = append(s.records, record)
	return true
}

func (s *AddressSet) Contains(record string) bool {
	_, ok := s.index[record]
	return ok
}

func (s *AddressSet) Len() int {
	return len(s.records)
}

// Slice returns a copy of the records.
func (s *AddressSet) Slice() []string {
	out := make([]string, len(s.records))
	copy(out, s.records)
	return out
}

// Aggregate walks dir, including subdirectories, and collects the trimmed
// non-empty lines of every file whose name ends with suffix. The output file
// outputName directly under dir is never read.
func Aggregate(dir, outputName, suffix string) (*AddressSet, error) {
	set := NewAddressSet()
	files := 0

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == outputName {
			return nil
		}

		lines, added := 0, 0
		err = iterateOverFile(path, func(record string) {
			lines++
			if set.Add(record) {
				added++
			}
		})
		if err != nil {
			return fmt.Errorf("failed to read list %s: %w", path, err)
		}

		files++
		log.Debugf("List %s: %d records, %d new", rel, lines, added)
		return nil
	})
	if err != nil {
		return nil, errors.NewListError(fmt.Sprintf("failed to scan %s", dir), err)
	}

	log.Infof("Collected %d unique addresses from %d files", set.Len(), files)
	return set, nil
}

// iterateOverFile calls fn for every trimmed non-empty line. Both "\n" and "\r\n"
// terminate a line; a byte order mark counts as whitespace.
func iterateOverFile(path string, fn func(record string)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer utils.CloseOrWarn(file)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		record := strings.TrimFunc(scanner.Text(), isBlank)
		if record == "" {
			continue
		}
		fn(record)
	}
	return scanner.Err()
}

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
