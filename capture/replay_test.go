package capture

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 200, A: 0xff})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestListFrames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-10.png", "frame-2.png", "frame-1.JPG"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "frame-3.png"), 0o700))

	frames, err := ListFrames(dir)
	require.NoError(t, err)

	numbers := make([]int, len(frames))
	for i, f := range frames {
		numbers[i] = f.Frame
	}
	assert.Equal(t, []int{1, 2, 10}, numbers)
	assert.Equal(t, filepath.Join(dir, "frame-1.JPG"), frames[0].Path)
}

func TestListFrames_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := ListFrames(filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})

	t.Run("unnumbered image", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.png"), []byte("x"), 0o600))

		_, err := ListFrames(dir)
		assert.ErrorContains(t, err, "cover.png")
	})
}

func TestOpenReplay_Empty(t *testing.T) {
	_, err := OpenReplay(Config{Directory: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestReplay_Run(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame-1.png"), 8, 4)
	writePNG(t, filepath.Join(dir, "frame-2.png"), 6, 6)

	src, err := Open(Config{Directory: dir, FrameInterval: 100 * time.Millisecond}, nil)
	require.NoError(t, err)
	defer src.Close()

	buf := NewFrameBuffer()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, buf) }()

	first, seq, err := buf.Next(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, first.Width)
	assert.Equal(t, 4, first.Height)
	assert.Equal(t, []byte{200, 0, 0}, first.Data[:3], "frames are RGB")

	second, _, err := buf.Next(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, 6, second.Width)

	cancel()
	assert.NoError(t, <-done)
}
