package fat32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirCreateFileAndExist(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	require.NoError(t, root.CreateFile("cnb.txt"))
	entry, ok, err := root.Exist("cnb.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, entry.IsDir)
	assert.Equal(t, "CNB.TXT", entry.Name)
}

func TestDirCreateDirListsNoEntries(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	require.NoError(t, root.CreateDir("sub"))
	child, err := root.Cd("sub")
	require.NoError(t, err)

	it, err := newDirIter(&vol.g, vol.device, child.cluster)
	require.NoError(t, err)
	_, ok, err := it.next()
	require.NoError(t, err)
	// ForEachFile/next both skip dot entries (§4.4 step 3), so a freshly
	// created, otherwise empty directory yields no visible entries.
	assert.False(t, ok)
}

func TestDirCreateDuplicateNameFails(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	require.NoError(t, root.CreateFile("dup.txt"))
	err := root.CreateFile("dup.txt")
	assert.ErrorIs(t, err, ErrFileHasExist)

	require.NoError(t, root.CreateDir("dupdir"))
	err = root.CreateDir("dupdir")
	assert.ErrorIs(t, err, ErrDirHasExist)
}

func TestDirIllegalCharRejected(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	err := root.CreateFile("bad:name")
	assert.ErrorIs(t, err, ErrIllegalChar)
	_, ok, err := root.Exist("bad:name")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirCdOnFileFails(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	require.NoError(t, root.CreateFile("notadir"))
	_, err := root.Cd("notadir")
	assert.ErrorIs(t, err, ErrNoMatchDir)
}

func TestDirOpenFileOnDirFails(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	require.NoError(t, root.CreateDir("notafile"))
	_, err := root.OpenFile("notafile")
	assert.ErrorIs(t, err, ErrNoMatchFile)
}

func TestDirLongFileName(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	const name = "Rust牛逼.txt"
	require.NoError(t, root.CreateFile(name))
	entry, ok, err := root.Exist(name)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, entry.IsDir)
	assert.Equal(t, 1, lfnFragmentCount("Rust牛逼"))
}

func TestDeleteRecoversSpace(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()

	require.NoError(t, root.CreateDir("d"))
	sub, err := root.Cd("d")
	require.NoError(t, err)
	require.NoError(t, sub.CreateFile("f"))
	fileEntry, ok, err := sub.Exist("f")
	require.NoError(t, err)
	require.True(t, ok)
	dirEntry, ok, err := root.Exist("d")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, root.DeleteDir("d"))

	_, ok, err = root.Exist("d")
	require.NoError(t, err)
	assert.False(t, ok)

	freeChain := newOwnedFATChain(&vol.g, vol.device, 0)
	entry, err := freeChain.readEntry(dirEntry.Cluster)
	require.NoError(t, err)
	assert.Zero(t, entry)
	entry, err = freeChain.readEntry(fileEntry.Cluster)
	require.NoError(t, err)
	assert.Zero(t, entry)
}

func TestDeleteFileThenExistIsNone(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateDir("n"))
	child, err := root.Cd("n")
	require.NoError(t, err)
	require.NoError(t, child.CreateFile("m"))

	_, ok, err := child.Exist("m")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, child.DeleteFile("m"))
	_, ok, err = child.Exist("m")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestForEachFileCombinesLFNAndSFN(t *testing.T) {
	vol := formatTestVolume(t, 32000)
	root := vol.RootDir()
	require.NoError(t, root.CreateFile("short.txt"))
	require.NoError(t, root.CreateFile("a very long file name.txt"))

	var names []string
	err := root.ForEachFile(func(fi FileInfo) bool {
		names = append(names, fi.Name)
		return true
	})
	require.NoError(t, err)
	assert.Contains(t, names, "SHORT.TXT")
	assert.Contains(t, names, "a very long file name.txt")
}
