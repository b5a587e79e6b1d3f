package ezfs

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledBackend wraps another Backend with a byte-rate limiter.
//
// Reads and writes wait on a shared token bucket sized in bytes per second
// before touching the inner backend, which keeps bulk transfers from
// saturating a shared link or exhausting a provider quota. Metadata
// operations (Exists, Remove, Rename) are not throttled.
type ThrottledBackend struct {
	inner   Backend
	limiter *rate.Limiter
}

var _ Backend = (*ThrottledBackend)(nil)

// NewThrottledBackend wraps inner with a limiter allowing bytesPerSec
// sustained throughput and bursts up to burst bytes. A burst below 1 is
// raised to 1; the wait loop reserves budget in burst-sized chunks and needs
// every chunk to make progress.
func NewThrottledBackend(inner Backend, bytesPerSec float64, burst int) *ThrottledBackend {
	if burst < 1 {
		burst = 1
	}
	return &ThrottledBackend{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
	}
}

// wait reserves n bytes of budget, splitting requests larger than the burst
// size so they remain admissible.
func (b *ThrottledBackend) wait(ctx context.Context, n int) error {
	burst := b.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := b.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// ReadBytes fetches content from the inner backend, then charges its size
// against the rate budget. The size is unknown up front, so the charge
// happens after the fetch and delays subsequent operations instead.
func (b *ThrottledBackend) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	data, err := b.inner.ReadBytes(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := b.wait(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// WriteBytes waits for rate budget covering data, then stores it.
func (b *ThrottledBackend) WriteBytes(ctx context.Context, path string, data []byte) error {
	if err := b.wait(ctx, len(data)); err != nil {
		return err
	}
	return b.inner.WriteBytes(ctx, path, data)
}

// Exists reports whether path refers to stored content.
func (b *ThrottledBackend) Exists(ctx context.Context, path string) (bool, error) {
	return b.inner.Exists(ctx, path)
}

// Remove deletes the content at path.
func (b *ThrottledBackend) Remove(ctx context.Context, path string) error {
	return b.inner.Remove(ctx, path)
}

// Rename moves content from src to dst.
func (b *ThrottledBackend) Rename(ctx context.Context, src, dst string) error {
	return b.inner.Rename(ctx, src, dst)
}
