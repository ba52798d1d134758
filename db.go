package tabledb

// DB is a single-table database backed by one paged file. Page 0 is always
// the root of the B+tree. All operations run to completion before another
// begins; DB is not safe for concurrent use.
type DB struct {
	pager    *Pager
	rootPage uint32
	log      Logger
	closed   bool
}

// Open opens or creates the database at path. An empty file is initialized
// with page 0 as an empty root leaf.
func Open(path string, options ...Option) (*DB, error) {
	opts := defaultOptions()
	for _, opt := range options {
		opt(&opts)
	}

	pager, err := openPager(path)
	if err != nil {
		return nil, err
	}

	d := &DB{
		pager:    pager,
		rootPage: 0,
		log:      opts.logger,
	}

	if pager.numPages == 0 {
		// New database file. Initialize page 0 as the root leaf.
		root, err := pager.GetPage(0)
		if err != nil {
			pager.file.Close()
			return nil, err
		}
		root.initLeaf()
		root.setRoot(true)
	}

	d.log.Info("database opened", "path", path, "pages", pager.numPages)
	return d, nil
}

// Close flushes every cached page and closes the file. The DB is unusable
// afterwards.
func (d *DB) Close() error {
	if d.closed {
		return ErrDatabaseClosed
	}
	d.closed = true

	if err := d.pager.Close(); err != nil {
		return err
	}
	d.log.Info("database closed", "pages", d.pager.numPages)
	return nil
}

// Insert adds a row keyed by its ID. A row whose ID already exists is
// rejected with ErrDuplicateKey and the tree is left untouched.
func (d *DB) Insert(row *Row) error {
	if d.closed {
		return ErrDatabaseClosed
	}

	cursor, err := d.find(row.ID)
	if err != nil {
		return err
	}

	leaf, err := d.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}
	if cursor.cellNum < leaf.leafNumCells() && leaf.leafKey(cursor.cellNum) == row.ID {
		return ErrDuplicateKey
	}

	return d.leafInsert(cursor, row.ID, row)
}

// Find returns a cursor positioned at key, or at the slot where key would
// be inserted.
func (d *DB) Find(key uint32) (*Cursor, error) {
	if d.closed {
		return nil, ErrDatabaseClosed
	}
	return d.find(key)
}

// Start returns a cursor at the first row in key order. On an empty table
// the cursor is already at the end.
func (d *DB) Start() (*Cursor, error) {
	if d.closed {
		return nil, ErrDatabaseClosed
	}

	// Key 0 is a valid search floor for unsigned keys.
	cursor, err := d.find(0)
	if err != nil {
		return nil, err
	}

	leaf, err := d.pager.GetPage(cursor.pageNum)
	if err != nil {
		return nil, err
	}
	cursor.endOfTable = leaf.leafNumCells() == 0
	return cursor, nil
}

// Scan calls fn for every row in key order.
func (d *DB) Scan(fn func(*Row) error) error {
	cursor, err := d.Start()
	if err != nil {
		return err
	}

	for !cursor.endOfTable {
		row, err := cursor.Row()
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
		if err := cursor.Advance(); err != nil {
			return err
		}
	}
	return nil
}
