package tabledb

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInitializesRootLeaf(t *testing.T) {
	t.Parallel()

	db, _ := setup(t)

	root, err := db.pager.GetPage(0)
	require.NoError(t, err)
	assert.Equal(t, leafNode, root.nodeType())
	assert.True(t, root.isRoot())
	assert.Equal(t, uint32(0), root.leafNumCells())
}

func TestPersistenceAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "persist.db")

	db, err := Open(path)
	require.NoError(t, err)
	for i := uint32(1); i <= 50; i++ {
		require.NoError(t, db.Insert(testRow(i)))
	}

	var dumpBefore bytes.Buffer
	require.NoError(t, db.DumpTree(&dumpBefore))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	validateTree(t, db)

	var rows []Row
	require.NoError(t, db.Scan(func(row *Row) error {
		rows = append(rows, *row)
		return nil
	}))
	require.Len(t, rows, 50)
	for i, row := range rows {
		assert.Equal(t, uint32(i+1), row.ID)
		assert.Equal(t, fmt.Sprintf("user%d", i+1), row.Username)
		assert.Equal(t, fmt.Sprintf("person%d@example.com", i+1), row.Email)
	}

	// The tree shape survives the round trip, not just the row set.
	var dumpAfter bytes.Buffer
	require.NoError(t, db.DumpTree(&dumpAfter))
	assert.Equal(t, dumpBefore.String(), dumpAfter.String())
}

func TestDumpTreeSingleLeaf(t *testing.T) {
	t.Parallel()

	db, _ := setup(t)
	for _, id := range []uint32{3, 1, 2} {
		require.NoError(t, db.Insert(testRow(id)))
	}

	var buf bytes.Buffer
	require.NoError(t, db.DumpTree(&buf))
	assert.Equal(t, "- leaf (size 3)\n  - 1\n  - 2\n  - 3\n", buf.String())
}

func TestDumpTreeAfterLeafSplit(t *testing.T) {
	t.Parallel()

	db, _ := setup(t)
	for i := uint32(1); i <= LeafNodeMaxCells+1; i++ {
		require.NoError(t, db.Insert(testRow(i)))
	}

	var buf bytes.Buffer
	require.NoError(t, db.DumpTree(&buf))

	want := "- internal (size 1)\n" +
		"  - leaf (size 7)\n" +
		"    - 1\n" +
		"    - 2\n" +
		"    - 3\n" +
		"    - 4\n" +
		"    - 5\n" +
		"    - 6\n" +
		"    - 7\n" +
		"  - key 7\n" +
		"  - leaf (size 7)\n" +
		"    - 8\n" +
		"    - 9\n" +
		"    - 10\n" +
		"    - 11\n" +
		"    - 12\n" +
		"    - 13\n" +
		"    - 14\n"
	assert.Equal(t, want, buf.String())
}

func TestCloseTwice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "close.db")
	db, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.ErrorIs(t, db.Close(), ErrDatabaseClosed)
	require.ErrorIs(t, db.Insert(testRow(1)), ErrDatabaseClosed)

	_, err = db.Start()
	require.ErrorIs(t, err, ErrDatabaseClosed)
}

func TestOpenSecondHandleFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "locked.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = Open(path)
	require.ErrorIs(t, err, ErrDatabaseLocked)
}
