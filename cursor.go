package tabledb

// Cursor is a position in the ordered sequence of rows, always anchored in
// a leaf. Cursors borrow the pager's buffers and must not outlive the
// operation that produced them.
type Cursor struct {
	db         *DB
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
}

// EndOfTable reports whether the cursor has run past the last row.
func (c *Cursor) EndOfTable() bool {
	return c.endOfTable
}

// Value returns a mutable view into the serialized row bytes at the
// cursor's position. The slice aliases the page cache.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.db.pager.GetPage(c.pageNum)
	if err != nil {
		return nil, err
	}
	return page.leafValue(c.cellNum), nil
}

// Row decodes the row at the cursor's position.
func (c *Cursor) Row() (*Row, error) {
	value, err := c.Value()
	if err != nil {
		return nil, err
	}
	row := &Row{}
	deserializeRow(value, row)
	return row, nil
}

// Advance steps the cursor forward one cell, following the leaf link when
// the current leaf is exhausted.
func (c *Cursor) Advance() error {
	page, err := c.db.pager.GetPage(c.pageNum)
	if err != nil {
		return err
	}

	c.cellNum++
	if c.cellNum >= page.leafNumCells() {
		next := page.leafNextLeaf()
		if next == 0 {
			// This was the rightmost leaf.
			c.endOfTable = true
		} else {
			c.pageNum = next
			c.cellNum = 0
		}
	}
	return nil
}
