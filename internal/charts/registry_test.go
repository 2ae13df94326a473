package charts

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChart struct{ body string }

func (f fakeChart) Render(w io.Writer) error {
	_, err := io.WriteString(w, f.body)
	return err
}

func TestRegistryAtMostOneLivePerMount(t *testing.T) {
	reg := NewRegistry(MountPrice, MountMA)

	var handles []*Handle
	for i := 0; i < 5; i++ {
		h := NewHandle(MountPrice, KindLine, "price", fakeChart{body: "v"})
		require.NoError(t, reg.Mount(h))
		handles = append(handles, h)
		assert.Equal(t, 1, reg.Live(MountPrice))
	}

	for _, h := range handles[:4] {
		assert.True(t, h.Disposed())
	}
	assert.False(t, handles[4].Disposed())

	current, ok := reg.Get(MountPrice)
	require.True(t, ok)
	assert.Same(t, handles[4], current)
	assert.Equal(t, 0, reg.Live(MountMA))
}

func TestRegistryUnknownMount(t *testing.T) {
	reg := NewRegistry(MountPrice)

	err := reg.Mount(NewHandle("nowhere", KindLine, "x", fakeChart{}))
	assert.True(t, errors.Is(err, ErrUnknownMount))

	var buf bytes.Buffer
	assert.ErrorIs(t, reg.Render(&buf, "nowhere"), ErrUnknownMount)
	assert.ErrorIs(t, reg.Render(&buf, MountPrice), ErrNoChart)
}

func TestRegistryRenderAfterReset(t *testing.T) {
	reg := NewRegistry(MountPrice)
	require.NoError(t, reg.Mount(NewHandle(MountPrice, KindLine, "x", fakeChart{body: "<html>price</html>"})))

	var buf bytes.Buffer
	require.NoError(t, reg.Render(&buf, MountPrice))
	assert.Equal(t, "<html>price</html>", buf.String())

	reg.Reset()
	assert.Equal(t, 0, reg.Live(MountPrice))
	assert.ErrorIs(t, reg.Render(&buf, MountPrice), ErrNoChart)
}

func TestRegistryReset(t *testing.T) {
	reg := NewRegistry(AllMounts()...)
	h1 := NewHandle(MountPrice, KindLine, "a", fakeChart{})
	h2 := NewHandle(MountExchangeBar, KindBar, "b", fakeChart{})
	require.NoError(t, reg.Mount(h1))
	require.NoError(t, reg.Mount(h2))
	assert.Len(t, reg.Mounted(), 2)

	reg.Reset()

	assert.Empty(t, reg.Mounted())
	assert.True(t, h1.Disposed())
	assert.True(t, h2.Disposed())
	assert.Equal(t, 0, reg.Live(MountPrice))
}

func TestHandleRenderAfterDispose(t *testing.T) {
	h := NewHandle(MountPrice, KindLine, "x", fakeChart{body: "x"})
	h.Dispose()
	h.Dispose()

	var buf bytes.Buffer
	assert.ErrorIs(t, h.Render(&buf), ErrNoChart)
}
