package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

type ChecksumProvider interface {
	GetChecksum() (string, error)
}

// ChecksumReaderProxy calculates the MD5 checksum and size of data as it's read.
type ChecksumReaderProxy struct {
	reader   io.Reader
	checksum hash.Hash
	size     int64
}

func NewMD5ReaderProxy(reader io.Reader) *ChecksumReaderProxy {
	return &ChecksumReaderProxy{
		reader:   reader,
		checksum: md5.New(),
	}
}

// Read reads from the underlying reader and feeds the bytes into the checksum.
func (p *ChecksumReaderProxy) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		// hash.Hash.Write never returns an error
		_, _ = p.checksum.Write(buf[:n])
		p.size += int64(n)
	}
	return n, err
}

// GetChecksum returns the MD5 of everything read so far as a hex string.
func (p *ChecksumReaderProxy) GetChecksum() (string, error) {
	return hex.EncodeToString(p.checksum.Sum(nil)), nil
}

// Size returns the number of bytes read so far.
func (p *ChecksumReaderProxy) Size() int64 {
	return p.size
}

// GitBlobSHA returns the object id git assigns to a blob with the given content.
// The GitHub contents API reports this value as a file's "sha".
func GitBlobSHA(content []byte) string {
	h := sha1.New()
	_, _ = fmt.Fprintf(h, "blob %d\x00", len(content))
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
