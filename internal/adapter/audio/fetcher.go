package audio

import (
	"context"
	"errors"
	"fmt"
	"os"

	"peora/internal/domain"
)

// FileFetcher reads recordings from the local filesystem.
type FileFetcher struct{}

// Fetch returns the bytes of the recording referenced by h.
func (FileFetcher) Fetch(ctx context.Context, h domain.AudioHandle) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h.IsZero() {
		return nil, fmt.Errorf("%w: empty handle", domain.ErrAudioFetch)
	}
	data, err := os.ReadFile(h.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAudioFetch, err)
	}
	return data, nil
}

// Release deletes the recording. A file that is already gone is fine.
func (FileFetcher) Release(h domain.AudioHandle) error {
	if h.IsZero() {
		return nil
	}
	if err := os.Remove(h.URI); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

var _ domain.AudioFetcher = FileFetcher{}
