package duplicates

import (
	"hash"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/zeebo/blake3"

	"sweepcore/internal/fsmodel"
)

func newHasher() hash.Hash {
	return blake3.New()
}

// mmapHash hashes a file's full contents through a memory mapping, which
// avoids a userspace copy for large files. The mapping is read-only and
// closed before returning.
func mmapHash(file *os.File, size int64) (fsmodel.ContentHash, error) {
	var zero fsmodel.ContentHash
	m, err := mmap.MapRegion(file, int(size), mmap.RDONLY, 0, 0)
	if err != nil {
		return zero, err
	}
	defer m.Unmap()

	hasher := blake3.New()
	if _, err := hasher.Write(m); err != nil {
		return zero, err
	}
	var out fsmodel.ContentHash
	copy(out[:], hasher.Sum(nil))
	return out, nil
}
