package collection

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sno-scene-tools/internal/sno"
)

// emptyDocument encodes a version 6.4 document with no arrays.
func emptyDocument(tile uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString(sno.Magic)
	w := func(v uint32) { buf.Write(binary.LittleEndian.AppendUint32(nil, v)) }
	w(6)
	w(4)
	for i := 0; i < 5; i++ {
		w(0) // counts
	}
	for i := 0; i < 9; i++ {
		w(0) // bounding box and centroid
	}
	w(tile)
	w(0)
	w(0)
	w(0)
	w(0) // checksum
	w(0) // logical meshes
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func tempTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.scn"), emptyDocument(1))
	writeFile(t, filepath.Join(root, "zone", "b.SCN"), emptyDocument(2))
	writeFile(t, filepath.Join(root, "zone", "broken.scn"), []byte("SNOX"))
	writeFile(t, filepath.Join(root, "readme.txt"), []byte("not a scene"))
	return root
}

func TestOpenIndexesByExtension(t *testing.T) {
	root := tempTree(t)
	c, err := Open(root)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.scn"),
		filepath.Join(root, "zone", "b.SCN"),
		filepath.Join(root, "zone", "broken.scn"),
	}
	assert.Equal(t, want, slices.Collect(c.Paths()))
	assert.Equal(t, 3, c.Len())
	for _, p := range want {
		assert.False(t, c.Cached(p), "nothing decoded at open")
	}
}

func TestOpenCustomExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x.sno"), emptyDocument(0))
	writeFile(t, filepath.Join(root, "y.scn"), emptyDocument(0))

	c, err := Open(root, WithExtension("sno"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "x.sno")}, slices.Collect(c.Paths()))
}

func TestOpenRejectsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.scn")
	writeFile(t, file, nil)

	_, err := Open(file)
	assert.Error(t, err)
	_, err = Open(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetMemoizes(t *testing.T) {
	root := tempTree(t)
	var decodes atomic.Int32
	c, err := Open(root, WithDecoder(func(path string) (*sno.Document, error) {
		decodes.Add(1)
		return sno.DecodeFile(path)
	}))
	require.NoError(t, err)

	path := filepath.Join(root, "a.scn")
	first, err := c.Get(path)
	require.NoError(t, err)
	second, err := c.Get(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), decodes.Load())
	assert.Equal(t, uint32(1), first.Tile)
	assert.True(t, c.Cached(path))
}

func TestGetConcurrentSingleDecode(t *testing.T) {
	root := tempTree(t)
	var decodes atomic.Int32
	release := make(chan struct{})
	c, err := Open(root, WithDecoder(func(path string) (*sno.Document, error) {
		decodes.Add(1)
		<-release
		return sno.DecodeFile(path)
	}))
	require.NoError(t, err)

	path := filepath.Join(root, "a.scn")
	const n = 16
	docs := make([]*sno.Document, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := c.Get(path)
			assert.NoError(t, err)
			docs[i] = doc
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), decodes.Load())
	for _, d := range docs {
		assert.Same(t, docs[0], d)
	}
}

func TestGetErrorIsolated(t *testing.T) {
	root := tempTree(t)
	c, err := Open(root)
	require.NoError(t, err)

	good := filepath.Join(root, "a.scn")
	_, err = c.Get(good)
	require.NoError(t, err)

	broken := filepath.Join(root, "zone", "broken.scn")
	_, err = c.Get(broken)
	assert.ErrorIs(t, err, sno.ErrFormatMismatch)
	assert.False(t, c.Cached(broken))
	assert.True(t, c.Cached(good))

	// Batch-style iteration continues past the failure.
	var ok, failed int
	for p := range c.Paths() {
		if _, err := c.Get(p); err != nil {
			failed++
			continue
		}
		ok++
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

func TestGetErrorNotCached(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "late.scn")
	writeFile(t, path, []byte("SN"))

	c, err := Open(root)
	require.NoError(t, err)
	_, err = c.Get(path)
	require.ErrorIs(t, err, sno.ErrTruncatedInput)

	writeFile(t, path, emptyDocument(5))
	doc, err := c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), doc.Tile)
}

func TestPathsRestartableSnapshot(t *testing.T) {
	root := tempTree(t)
	c, err := Open(root)
	require.NoError(t, err)

	seq := c.Paths()
	first := slices.Collect(seq)
	_, _ = c.Get(first[0])
	c.addPath(filepath.Join(root, "new.scn"))
	assert.Equal(t, first, slices.Collect(seq))
	assert.Len(t, slices.Collect(c.Paths()), 4)

	var stopped []string
	for p := range seq {
		stopped = append(stopped, p)
		break
	}
	assert.Equal(t, first[:1], stopped)
}

func TestEvict(t *testing.T) {
	root := tempTree(t)
	var decodes atomic.Int32
	c, err := Open(root, WithDecoder(func(path string) (*sno.Document, error) {
		decodes.Add(1)
		return sno.DecodeFile(path)
	}))
	require.NoError(t, err)

	path := filepath.Join(root, "a.scn")
	_, err = c.Get(path)
	require.NoError(t, err)
	c.Evict(path)
	assert.False(t, c.Cached(path))
	_, err = c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, int32(2), decodes.Load())
}

func TestEvictDuringDecodeNotCached(t *testing.T) {
	root := tempTree(t)
	path := filepath.Join(root, "a.scn")

	entered := make(chan struct{})
	release := make(chan struct{})
	var decodes atomic.Int32
	c, err := Open(root, WithDecoder(func(string) (*sno.Document, error) {
		n := decodes.Add(1)
		if n == 1 {
			close(entered)
			<-release
		}
		return &sno.Document{Tile: uint32(n)}, nil
	}))
	require.NoError(t, err)

	done := make(chan *sno.Document)
	go func() {
		doc, err := c.Get(path)
		assert.NoError(t, err)
		done <- doc
	}()

	<-entered
	c.Evict(path)

	// A lookup after the eviction decodes afresh instead of joining the
	// decode of the old bytes.
	fresh, err := c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), fresh.Tile)

	close(release)
	old := <-done
	assert.Equal(t, uint32(1), old.Tile)

	cached, err := c.Get(path)
	require.NoError(t, err)
	assert.Same(t, fresh, cached, "the older decode must not overwrite the newer one")
	assert.Equal(t, int32(2), decodes.Load())
}

func TestEvictDuringOnlyDecode(t *testing.T) {
	root := tempTree(t)
	path := filepath.Join(root, "a.scn")

	entered := make(chan struct{})
	release := make(chan struct{})
	c, err := Open(root, WithDecoder(func(string) (*sno.Document, error) {
		close(entered)
		<-release
		return &sno.Document{}, nil
	}))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Get(path)
		assert.NoError(t, err)
	}()

	<-entered
	c.Evict(path)
	close(release)
	<-done

	assert.False(t, c.Cached(path))
}

func TestWatchTracksChanges(t *testing.T) {
	root := tempTree(t)
	c, err := Open(root)
	require.NoError(t, err)

	path := filepath.Join(root, "a.scn")
	_, err = c.Get(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, ready) }()
	<-ready

	writeFile(t, path, emptyDocument(9))
	assert.Eventually(t, func() bool {
		doc, err := c.Get(path)
		return err == nil && doc.Tile == 9
	}, 2*time.Second, 10*time.Millisecond)

	added := filepath.Join(root, "c.scn")
	writeFile(t, added, emptyDocument(3))
	assert.Eventually(t, func() bool {
		return slices.Contains(slices.Collect(c.Paths()), added)
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(added))
	assert.Eventually(t, func() bool {
		return !slices.Contains(slices.Collect(c.Paths()), added)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestDecodeErrorWrapsPath(t *testing.T) {
	root := tempTree(t)
	c, err := Open(root)
	require.NoError(t, err)

	broken := filepath.Join(root, "zone", "broken.scn")
	_, err = c.Get(broken)
	var fe *sno.FormatMismatchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), broken)
}
