package flash

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConsumesWholeGranulesOnly(t *testing.T) {
	dev := NewMemDevice(64)
	cur := OpenCursor(dev, 0, 64)

	n, err := cur.Write([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, uint32(4), cur.Written())

	// below a granule nothing is consumed
	n, err = cur.Write([]byte{9, 9})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, uint32(4), cur.Written())
}

func TestArbitraryPartitionsEqualOneWrite(t *testing.T) {
	content := make([]byte, 61)
	for i := range content {
		content[i] = byte(i * 7)
	}

	write := func(pieces [][]byte) []byte {
		dev := NewMemDevice(128)
		cur := OpenCursor(dev, 8, 64)
		var pending []byte
		for _, p := range pieces {
			pending = append(pending, p...)
			n, err := cur.Write(pending)
			require.NoError(t, err)
			pending = pending[n:]
		}
		require.Less(t, len(pending), Granularity)
		require.NoError(t, cur.Flush(pending))
		require.Equal(t, uint32(len(content)), cur.Written())
		return append([]byte(nil), dev.Bytes()[8:8+len(content)]...)
	}

	whole := write([][]byte{content})
	for _, sizes := range [][]int{
		{1, 2, 3, 55},
		{61},
		{60, 1},
		{7, 7, 7, 7, 7, 7, 7, 7, 5},
		{31, 30},
	} {
		var pieces [][]byte
		off := 0
		for _, s := range sizes {
			pieces = append(pieces, content[off:off+s])
			off += s
		}
		require.Equal(t, len(content), off)
		assert.Equal(t, whole, write(pieces))
	}
}

func TestFlushPadsToGranule(t *testing.T) {
	dev := NewMemDevice(16)
	cur := OpenCursor(dev, 0, 16)
	require.NoError(t, cur.Flush([]byte{0xAA, 0xBB}))
	assert.Equal(t, []byte{0xAA, 0xBB, ErasedByte, ErasedByte}, dev.Bytes()[:4])
	assert.Equal(t, uint32(2), cur.Written())
}

func TestFlushRejectsFullGranule(t *testing.T) {
	dev := NewMemDevice(16)
	cur := OpenCursor(dev, 0, 16)
	err := cur.Flush([]byte{1, 2, 3, 4})
	assert.Error(t, err)
}

func TestWritePastCapacity(t *testing.T) {
	dev := NewMemDevice(64)
	cur := OpenCursor(dev, 0, 8)

	_, err := cur.Write(make([]byte, 8))
	require.NoError(t, err)

	_, err = cur.Write(make([]byte, 4))
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, uint32(8), capErr.Capacity)
}

func TestMemDeviceBounds(t *testing.T) {
	dev := NewMemDevice(8)
	_, err := dev.WriteAt([]byte{1, 2}, 7)
	assert.Error(t, err)

	require.Equal(t, bytes.Repeat([]byte{ErasedByte}, 8), dev.Bytes())

	_, err = dev.WriteAt([]byte{1, 2}, 6)
	require.NoError(t, err)
	buf := make([]byte, 2)
	_, err = dev.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, buf)
}
