package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileSource streams signed 8-bit IF samples from a capture file. A
// sample-width multiplier of w consumes w bytes per sample, taking the
// leading byte of each group; width 1 is the plain real-sample layout.
type FileSource struct {
	f     *os.File
	width int
	buf   []byte
}

// OpenFile opens a capture file with the given sample-width
// multiplier.
func OpenFile(path string, sampleWidth int) (*FileSource, error) {
	if sampleWidth < 1 {
		return nil, fmt.Errorf("sample width must be >= 1, got %d", sampleWidth)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	return &FileSource{f: f, width: sampleWidth}, nil
}

func (s *FileSource) Seek(_ context.Context, sampleOffset int64) error {
	if _, err := s.f.Seek(sampleOffset*int64(s.width), io.SeekStart); err != nil {
		return fmt.Errorf("seek capture: %w", err)
	}
	return nil
}

func (s *FileSource) Read(ctx context.Context, dst []int8) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	need := len(dst) * s.width
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]
	n, err := io.ReadFull(s.f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return &Shortfall{Wanted: len(dst), Got: n / s.width}
	}
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}
	for i := range dst {
		dst[i] = int8(buf[i*s.width])
	}
	return nil
}

func (s *FileSource) Close() error { return s.f.Close() }
