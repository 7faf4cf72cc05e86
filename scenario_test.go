package fat32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInvariantNonRootDotEntries checks §8's "for every non-root directory,
// its first two 32-byte records are '.' (cluster = self) and '..' (cluster
// = parent), both with attribute 0x10."
func TestInvariantNonRootDotEntries(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateDir("child"))
	child, err := root.Cd("child")
	require.NoError(t, err)

	var sector [512]byte
	base := vol.g.clusterSector(child.cluster)
	_, err = vol.device.ReadBlocks(sector[:], base)
	require.NoError(t, err)

	dot := parseDirRecord(sector[0:32])
	dotdot := parseDirRecord(sector[32:64])
	require.Equal(t, kindDot, dot.kind)
	require.Equal(t, kindDot, dotdot.kind)
	assert.True(t, dot.isDir)
	assert.True(t, dotdot.isDir)
	assert.Equal(t, child.cluster, dot.cluster)
	assert.Equal(t, root.cluster, dotdot.cluster)
}

// TestInvariantLFNChecksumMatchesSFN checks §8's "every fragment's checksum
// byte equals LFN_checksum(S.name_bytes)".
func TestInvariantLFNChecksumMatchesSFN(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	const name = "a rather long name that needs an lfn group.txt"
	require.NoError(t, root.CreateFile(name))

	it, err := root.newIter()
	require.NoError(t, err)
	var lastChecksum byte
	sawLFN := false
	for {
		rec, ok, err := it.next()
		require.NoError(t, err)
		if !ok {
			t.Fatal("companion SFN not found")
		}
		if rec.kind == kindLFN {
			lastChecksum = rec.checksum
			sawLFN = true
			continue
		}
		if rec.kind == kindSFN {
			require.True(t, sawLFN)
			assert.Equal(t, lfnChecksum(rec.shortName), lastChecksum)
			break
		}
	}
}

// TestInvariantFreeClusterIsZero checks §8's "for every free cluster c,
// FAT[c] == 0".
func TestInvariantFreeClusterIsZero(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("x.bin"))
	f, err := root.OpenFile("x.bin")
	require.NoError(t, err)
	require.NoError(t, f.Write([]byte{1, 2, 3}, Overwrite))
	usedCluster := f.cluster

	require.NoError(t, root.DeleteFile("x.bin"))

	chain := newOwnedFATChain(&vol.g, vol.device, 0)
	entry, err := chain.readEntry(usedCluster)
	require.NoError(t, err)
	assert.Zero(t, entry)
}

// TestInvariantChainTerminatesInEOC checks §8's "the last FAT entry is in
// [0x0FFFFFF8, 0x0FFFFFFF]; intermediate entries are in [2, max_cluster]".
func TestInvariantChainTerminatesInEOC(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("chain.bin"))
	f, err := root.OpenFile("chain.bin")
	require.NoError(t, err)
	clusterSize := int(vol.ClusterSize())
	require.NoError(t, f.Write(make([]byte, 3*clusterSize), Overwrite))

	chain := newOwnedFATChain(&vol.g, vol.device, f.cluster)
	maxCluster := vol.g.totalClusters()
	var last uint32
	for {
		c, ok, err := chain.next()
		require.NoError(t, err)
		if !ok {
			break
		}
		last = c
		if c != f.cluster {
			assert.GreaterOrEqual(t, c, uint32(2))
			assert.LessOrEqual(t, c, maxCluster)
		}
	}
	entry, err := chain.readEntry(last)
	require.NoError(t, err)
	assert.True(t, isEOC(entry))
}
