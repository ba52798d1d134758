package tabledb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileDigest(t *testing.T, path string) uint64 {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return xxhash.Sum64(data)
}

func TestOpenCreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "new.db")
	pager, err := openPager(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), pager.numPages)
	assert.Equal(t, int64(0), pager.fileLength)
	require.NoError(t, pager.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestOpenRejectsCorruptLength(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupt.db")
	require.NoError(t, os.WriteFile(path, make([]byte, PageSize+100), 0600))

	_, err := openPager(path)
	require.ErrorIs(t, err, ErrCorruptFile)
}

func TestOpenLocksFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "locked.db")
	pager, err := openPager(path)
	require.NoError(t, err)
	defer pager.Close()

	_, err = openPager(path)
	require.ErrorIs(t, err, ErrDatabaseLocked)
}

func TestGetPageOutOfBounds(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bounds.db")
	pager, err := openPager(path)
	require.NoError(t, err)
	defer pager.Close()

	_, err = pager.GetPage(maxPages)
	require.ErrorIs(t, err, ErrPageOutOfBounds)
}

func TestGetPageAliasesCache(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "alias.db")
	pager, err := openPager(path)
	require.NoError(t, err)
	defer pager.Close()

	page, err := pager.GetPage(0)
	require.NoError(t, err)
	page.data[100] = 0xAB

	again, err := pager.GetPage(0)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), again.data[100])
	assert.Same(t, page, again)
}

func TestGetPageGrowsPageCount(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "grow.db")
	pager, err := openPager(path)
	require.NoError(t, err)
	defer pager.Close()

	_, err = pager.GetPage(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), pager.numPages)
}

func TestFlushUnallocatedPage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flush.db")
	pager, err := openPager(path)
	require.NoError(t, err)
	defer pager.Close()

	err = pager.Flush(0)
	require.ErrorIs(t, err, ErrFlushNilPage)
}

func TestCloseFlushesPages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "persist.db")
	pager, err := openPager(path)
	require.NoError(t, err)

	page, err := pager.GetPage(0)
	require.NoError(t, err)
	page.data[0] = 0x42
	page.data[PageSize-1] = 0x24
	require.NoError(t, pager.Close())

	pager, err = openPager(path)
	require.NoError(t, err)
	defer pager.Close()

	assert.Equal(t, uint32(1), pager.numPages)
	page, err = pager.GetPage(0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), page.data[0])
	assert.Equal(t, byte(0x24), page.data[PageSize-1])
}

func TestReopenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "idempotent.db")

	db, err := Open(path)
	require.NoError(t, err)
	for i := uint32(1); i <= 30; i++ {
		require.NoError(t, db.Insert(testRow(i)))
	}
	require.NoError(t, db.Close())
	digest := fileDigest(t, path)

	// Open and close without touching anything: the file must stay
	// bit-identical.
	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.Equal(t, digest, fileDigest(t, path))

	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.Equal(t, digest, fileDigest(t, path))
}
