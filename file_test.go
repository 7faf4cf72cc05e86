package fat32

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSFNRoundTrip(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("cnb.txt"))

	f, err := root.OpenFile("cnb.txt")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte("hello"), Overwrite))

	f2, err := root.OpenFile("cnb.txt")
	require.NoError(t, err)
	require.EqualValues(t, 5, f2.Len())
	buf := make([]byte, f2.Len())
	n, err := f2.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	entry, ok, err := root.Exist("cnb.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 5, entry.Length)
}

func TestFileCrossClusterWrite(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("big.bin"))
	f, err := root.OpenFile("big.bin")
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0x30}, 10241)
	require.NoError(t, f.Write(data, Overwrite))

	clusterSize := vol.ClusterSize()
	numClusters := 0
	chain := newOwnedFATChain(&vol.g, vol.device, f.cluster)
	for {
		_, ok, err := chain.next()
		require.NoError(t, err)
		if !ok {
			break
		}
		numClusters++
	}
	assert.EqualValues(t, (10241+int(clusterSize)-1)/int(clusterSize), numClusters)

	f2, err := root.OpenFile("big.bin")
	require.NoError(t, err)
	buf := make([]byte, f2.Len())
	n, err := f2.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 10241, n)
	assert.True(t, bytes.Equal(buf, data))
}

func TestFileAppendAcrossClusterBoundary(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("a.bin"))
	f, err := root.OpenFile("a.bin")
	require.NoError(t, err)

	head := []byte("停留牛逼，测试一把梭")
	require.NoError(t, f.Write(head, Overwrite))

	tail := bytes.Repeat([]byte{0x30}, 10240)
	require.NoError(t, f.Write(tail, Append))

	f2, err := root.OpenFile("a.bin")
	require.NoError(t, err)
	require.EqualValues(t, len(head)+10240, f2.Len())
	buf := make([]byte, f2.Len())
	n, err := f2.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(head)+len(tail), n)
	assert.True(t, bytes.Equal(buf[:len(head)], head))
	assert.True(t, bytes.Equal(buf[len(head):], tail))
}

func TestFileAppendZeroBytesIsNoop(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("e.bin"))
	f, err := root.OpenFile("e.bin")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte("abc"), Overwrite))
	beforeCluster := f.cluster

	require.NoError(t, f.Write(nil, Append))
	assert.EqualValues(t, 3, f.length)
	assert.Equal(t, beforeCluster, f.cluster)
}

func TestFileReadBufTooSmall(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("r.bin"))
	f, err := root.OpenFile("r.bin")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte("hello world"), Overwrite))

	f2, err := root.OpenFile("r.bin")
	require.NoError(t, err)
	small := make([]byte, 3)
	marker := []byte{0xAA, 0xAA, 0xAA}
	copy(small, marker)
	n, err := f2.Read(small)
	assert.ErrorIs(t, err, ErrBufTooSmall)
	assert.Zero(t, n)
	assert.Equal(t, marker, small)
}

func TestFileExactClusterMultipleAllocation(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("k.bin"))
	f, err := root.OpenFile("k.bin")
	require.NoError(t, err)

	clusterSize := int(vol.ClusterSize())
	data := bytes.Repeat([]byte{0x42}, 3*clusterSize)
	require.NoError(t, f.Write(data, Overwrite))

	chain := newOwnedFATChain(&vol.g, vol.device, f.cluster)
	count := 0
	for {
		_, ok, err := chain.next()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 3, count)
}
