package transfer

import (
	"io"
	"os"
)

// Sized is a reader that knows how many bytes it will yield in total.
type Sized interface {
	io.Reader
	Len() int64
}

// ProgressReader reports every read to Update, composed over any reader of
// known length.
type ProgressReader struct {
	r      io.Reader
	size   int64
	read   int64
	Update func(read, total int64)
}

func NewProgressReader(r io.Reader, size int64, update func(read, total int64)) *ProgressReader {
	return &ProgressReader{r: r, size: size, Update: update}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.Update != nil {
			p.Update(p.read, p.size)
		}
	}
	return n, err
}

func (p *ProgressReader) Len() int64 {
	return p.size
}

// Close closes the underlying reader when it is closable.
func (p *ProgressReader) Close() error {
	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenProgress opens path for reading with its size taken from stat.
func OpenProgress(path string, update func(read, total int64)) (*ProgressReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return NewProgressReader(f, info.Size(), update), nil
}
