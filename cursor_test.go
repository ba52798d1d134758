package tabledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOnEmptyTable(t *testing.T) {
	t.Parallel()

	db, _ := setup(t)

	cursor, err := db.Start()
	require.NoError(t, err)
	assert.True(t, cursor.EndOfTable())
}

func TestCursorAdvanceWithinLeaf(t *testing.T) {
	t.Parallel()

	db, _ := setup(t)

	for i := uint32(1); i <= 3; i++ {
		require.NoError(t, db.Insert(testRow(i)))
	}

	cursor, err := db.Start()
	require.NoError(t, err)

	var ids []uint32
	for !cursor.EndOfTable() {
		row, err := cursor.Row()
		require.NoError(t, err)
		ids = append(ids, row.ID)
		require.NoError(t, cursor.Advance())
	}
	assert.Equal(t, []uint32{1, 2, 3}, ids)
}

func TestCursorAdvanceAcrossLeaves(t *testing.T) {
	t.Parallel()

	db, _ := setup(t)

	// Three leaves' worth of rows, so the cursor must follow two leaf
	// links.
	numRows := uint32(LeafNodeMaxCells) * 2
	for i := uint32(1); i <= numRows; i++ {
		require.NoError(t, db.Insert(testRow(i)))
	}

	cursor, err := db.Start()
	require.NoError(t, err)

	startPage := cursor.pageNum
	sawNewLeaf := false
	var count uint32
	for !cursor.EndOfTable() {
		if cursor.pageNum != startPage {
			sawNewLeaf = true
		}
		count++
		require.NoError(t, cursor.Advance())
	}

	assert.Equal(t, numRows, count)
	assert.True(t, sawNewLeaf, "scan must cross leaf boundaries")
}

func TestCursorValueIsMutableView(t *testing.T) {
	t.Parallel()

	db, _ := setup(t)
	require.NoError(t, db.Insert(testRow(1)))

	cursor, err := db.Find(1)
	require.NoError(t, err)
	value, err := cursor.Value()
	require.NoError(t, err)

	// Mutations through the view are observed by subsequent reads.
	serializeRow(&Row{ID: 1, Username: "patched", Email: "p@example.com"}, value)

	row, err := cursor.Row()
	require.NoError(t, err)
	assert.Equal(t, "patched", row.Username)
}
