package atomictx

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

// defaultCopyBufferSize is the fixed buffer streamCopy uses unless
// overridden by SetBufferSize. 4 KiB matches the default block size of
// most of the filesystems this package targets, so reads rarely come
// back short because of the buffer itself.
const defaultCopyBufferSize = 4096

var copyBufferSizeVal = func() *atomic.Int64 {
	v := &atomic.Int64{}
	v.Store(defaultCopyBufferSize)
	return v
}()

// copyBufferSize returns the buffer size streamCopy currently uses.
func copyBufferSize() int {
	return int(copyBufferSizeVal.Load())
}

// SetBufferSize overrides the fixed buffer size streamCopy uses to move
// data between descriptors, for callers (the CLI's buffer_size config
// default) that want a larger chunk than the 4 KiB built-in default. It
// panics if n is not positive.
func SetBufferSize(n int) {
	if n <= 0 {
		panic("atomictx: buffer size must be positive")
	}
	copyBufferSizeVal.Store(int64(n))
}

// streamCopy copies bytes from src to dst, tolerating interrupted syscalls
// and short reads/writes, until src reports EOF. It never seeks either
// descriptor; callers that need to retry from the start are responsible
// for repositioning both src and dst first.
//
// This is the leaf "Stream Copier" component: every other copy path in
// this package (verifiedCopy) is built on top of it.
func streamCopy(src, dst *os.File) error {
	buf := make([]byte, copyBufferSize())
	for {
		n, err := readFull(src, buf)
		if n > 0 {
			if werr := writeFull(dst, buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// readFull fills buf as much as a single "logical" read can: it retries
// on EINTR and accumulates short reads until buf is full or the source
// hits EOF. On EOF it returns io.EOF only once no bytes at all were read;
// a zero-length read without an error is also reported as io.EOF, along
// with whatever bytes were accumulated before it.
func readFull(src *os.File, buf []byte) (int, error) {
	var total int
	for total < len(buf) {
		n, err := src.Read(buf[total:])
		total += n
		if err != nil {
			if errors.Is(err, os.ErrClosed) {
				return total, err
			}
			if isEINTR(err) {
				continue
			}
			if err == io.EOF {
				if total > 0 {
					return total, nil
				}
				return 0, io.EOF
			}
			return total, err
		}
		if n == 0 {
			// Regular files signal EOF via (0, io.EOF) in Go's os.File, but
			// guard against a zero-length read that isn't EOF to avoid
			// spinning.
			return total, io.EOF
		}
	}
	return total, nil
}

// writeFull writes all of buf to dst, retrying on EINTR and on short
// writes until every byte has been flushed.
func writeFull(dst *os.File, buf []byte) error {
	for len(buf) > 0 {
		n, err := dst.Write(buf)
		if err != nil {
			if isEINTR(err) {
				continue
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}
