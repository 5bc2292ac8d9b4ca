package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peora/internal/domain"
)

func TestFileFetcherMissingFile(t *testing.T) {
	h := domain.AudioHandle{URI: filepath.Join(t.TempDir(), "gone.webm")}

	_, err := FileFetcher{}.Fetch(context.Background(), h)
	assert.ErrorIs(t, err, domain.ErrAudioFetch)
	assert.NoError(t, FileFetcher{}.Release(h), "releasing a missing file is fine")
}

func TestFileFetcherZeroHandle(t *testing.T) {
	_, err := FileFetcher{}.Fetch(context.Background(), domain.AudioHandle{})
	assert.ErrorIs(t, err, domain.ErrAudioFetch)
	assert.NoError(t, FileFetcher{}.Release(domain.AudioHandle{}))
}

func TestFileFetcherCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.webm")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileFetcher{}.Fetch(ctx, domain.AudioHandle{URI: path})
	assert.ErrorIs(t, err, context.Canceled)
}
