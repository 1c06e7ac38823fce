// Package source supplies raw IF samples to the tracking driver. The
// driver owns framing: it asks for exactly one epoch's worth of
// samples at a time and never rereads.
package source

import (
	"context"
	"errors"
)

// ErrExhausted reports that the stream ended before a full epoch could
// be read. The driver treats this as the end of the run, never as
// data.
var ErrExhausted = errors.New("source: sample stream exhausted")

// Source captures the minimal sample operations the driver requires.
// Read must either fill dst completely or return an error; a partial
// final block surfaces as ErrExhausted (possibly wrapped with the
// shortfall).
type Source interface {
	// Seek positions the stream at the given sample offset from the
	// start, honoring the source's sample width.
	Seek(ctx context.Context, sampleOffset int64) error
	// Read fills dst with the next len(dst) samples.
	Read(ctx context.Context, dst []int8) error
	Close() error
}

// Shortfall describes an exhausted read: how many samples were wanted
// and how many the stream still held.
type Shortfall struct {
	Wanted int
	Got    int
}

func (s *Shortfall) Error() string {
	return ErrExhausted.Error()
}

func (s *Shortfall) Unwrap() error { return ErrExhausted }
