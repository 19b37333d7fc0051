// Package ratelimit provides token-bucket io.Reader/Writer wrappers used
// to shape a single overlay edge to its planner-allocated bandwidth
// (internal/fabric.RateLimitShaper hands one Limiter per sender/target
// pair to the transfer code moving bytes across that edge).
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

const (
	minBurstBytes = 64 * 1024
	maxBurstBytes = 4 * 1024 * 1024
)

// Limiter throttles the byte rate of a single edge's Reader/Writer pair.
type Limiter struct {
	limiter *rate.Limiter
	enabled bool
}

// New builds a Limiter capped at bytesPerSecond. bytesPerSecond <= 0
// means the edge carries no shaping and every wrapper is a no-op, which
// is how an unshaped origin-to-first-hop edge is represented.
func New(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return &Limiter{enabled: false}
	}

	// Burst is one second's worth of the allocated rate, clamped to a
	// sane window so a very large or very small edge allocation still
	// gets smooth token-bucket behavior.
	burst := bytesPerSecond
	if burst < minBurstBytes {
		burst = minBurstBytes
	}
	if burst > maxBurstBytes {
		burst = maxBurstBytes
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
		enabled: true,
	}
}

// Enabled reports whether l actually throttles, as opposed to being the
// unshaped no-op case.
func (l *Limiter) Enabled() bool {
	return l != nil && l.enabled
}

// Reader returns a rate-limited reader
func (l *Limiter) Reader(r io.Reader) io.Reader {
	if !l.Enabled() {
		return r
	}
	return &LimitedReader{
		r:       r,
		limiter: l.limiter,
		ctx:     context.Background(),
	}
}

// ReaderContext returns a rate-limited reader with context
func (l *Limiter) ReaderContext(ctx context.Context, r io.Reader) io.Reader {
	if !l.Enabled() {
		return r
	}
	return &LimitedReader{
		r:       r,
		limiter: l.limiter,
		ctx:     ctx,
	}
}

// Writer returns a rate-limited writer
func (l *Limiter) Writer(w io.Writer) io.Writer {
	if !l.Enabled() {
		return w
	}
	return &LimitedWriter{
		w:       w,
		limiter: l.limiter,
		ctx:     context.Background(),
	}
}

// WriterContext returns a rate-limited writer with context
func (l *Limiter) WriterContext(ctx context.Context, w io.Writer) io.Writer {
	if !l.Enabled() {
		return w
	}
	return &LimitedWriter{
		w:       w,
		limiter: l.limiter,
		ctx:     ctx,
	}
}

// LimitedReader wraps io.Reader with rate limiting
type LimitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

// Read implements io.Reader with rate limiting
func (lr *LimitedReader) Read(p []byte) (n int, err error) {
	n, err = lr.r.Read(p)
	if n > 0 {
		// Wait for permission to have read n bytes
		if waitErr := lr.limiter.WaitN(lr.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// LimitedWriter wraps io.Writer with rate limiting
type LimitedWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

// Write implements io.Writer with rate limiting
func (lw *LimitedWriter) Write(p []byte) (n int, err error) {
	// Wait for permission before writing
	if err := lw.limiter.WaitN(lw.ctx, len(p)); err != nil {
		return 0, err
	}
	return lw.w.Write(p)
}
