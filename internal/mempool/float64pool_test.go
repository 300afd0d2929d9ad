package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	assert.Equal(t, 1024, sizeClass(1))
	assert.Equal(t, 1024, sizeClass(1024))
	assert.Equal(t, 2048, sizeClass(1025))
	assert.Equal(t, 10240, sizeClass(10000))
}

func TestGetFloat64ReturnsZeroedBuffer(t *testing.T) {
	buf := GetFloat64(500)
	require.Len(t, buf, 500)
	buf[0] = 3.5
	buf[499] = -1
	PutFloat64(buf)

	again := GetFloat64(500)
	require.Len(t, again, 500)
	for i, v := range again {
		require.Zerof(t, v, "index %d not zeroed", i)
	}
	PutFloat64(again)
}

func TestGetFloat64LargeSizes(t *testing.T) {
	buf := GetFloat64(1 << 20)
	require.Len(t, buf, 1<<20)
	PutFloat64(buf)
}

func TestPutFloat64Nil(t *testing.T) {
	assert.NotPanics(t, func() { PutFloat64(nil) })
}
