package preview

import (
	"image/color"
	"os"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorePutIfAbsent(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	created, err := s.PutIfAbsent("a.jpg", []byte("first"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.PutIfAbsent("a.jpg", []byte("second"))
	require.NoError(t, err)
	assert.False(t, created)

	b, err := os.ReadFile(s.Path("a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))
}

func TestFSStoreRejectsPathKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.PutIfAbsent("../escape.jpg", []byte("x"))
	assert.Error(t, err)
}

func TestFSStoreConcurrentWritersCreateOnce(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.PutIfAbsent("same.jpg", []byte("payload"))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriterSaveIsContentAddressed(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	w := NewWriter(s, nil, WithMaxWidth(10))

	img := imaging.New(40, 20, color.White)
	k1, err := w.Save(img, 1)
	require.NoError(t, err)
	k2, err := w.Save(img, 2)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Regexp(t, `^preview_[0-9a-f]{64}\.jpg$`, k1)

	stored, err := imaging.Open(s.Path(k1))
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Bounds().Dx())
	assert.Equal(t, 5, stored.Bounds().Dy())
}

func TestWriterNilImage(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key, err := NewWriter(s, nil).Save(nil, 1)
	require.NoError(t, err)
	assert.Empty(t, key)
}
