package tabledb

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// maxPages caps the page cache. The cache is an arena indexed by page
// number; pages are never evicted or freed within a session.
const maxPages = 400

// Pager owns the backing file and a fixed arena of page buffers, loading
// pages lazily and writing every cached page back on Close.
type Pager struct {
	file       *os.File
	fileLength int64
	numPages   uint32
	pages      [maxPages]*Page
}

// openPager opens or creates the database file and takes an exclusive
// advisory lock so two processes cannot corrupt one file.
func openPager(path string) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrDatabaseLocked
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size()%PageSize != 0 {
		file.Close()
		return nil, ErrCorruptFile
	}

	return &Pager{
		file:       file,
		fileLength: info.Size(),
		numPages:   uint32(info.Size() / PageSize),
	}, nil
}

// GetPage returns the cached buffer for page n, loading it from disk on
// first access. The buffer aliases the cache: callers mutate it in place
// and Close persists it. Requesting a page past the end of the file
// allocates it (zeroed) and grows numPages.
func (p *Pager) GetPage(n uint32) (*Page, error) {
	if n >= maxPages {
		return nil, fmt.Errorf("%w: %d >= %d", ErrPageOutOfBounds, n, maxPages)
	}

	if p.pages[n] == nil {
		// Cache miss. Allocate a zeroed buffer and load from file.
		page := &Page{}

		pagesOnDisk := uint32(p.fileLength / PageSize)
		if p.fileLength%PageSize != 0 {
			// A partial page may have been saved at the end of the file.
			pagesOnDisk++
		}

		if n < pagesOnDisk {
			_, err := p.file.ReadAt(page.data[:], int64(n)*PageSize)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("read page %d: %w", n, err)
			}
		}

		p.pages[n] = page
		if n >= p.numPages {
			p.numPages = n + 1
		}
	}

	return p.pages[n], nil
}

// allocatePage returns the next unused page number. Pages are never freed,
// so new pages always go onto the end of the file.
func (p *Pager) allocatePage() uint32 {
	return p.numPages
}

// Flush writes page n back to the file at its fixed offset.
func (p *Pager) Flush(n uint32) error {
	if p.pages[n] == nil {
		return fmt.Errorf("%w: page %d", ErrFlushNilPage, n)
	}
	if _, err := p.file.WriteAt(p.pages[n].data[:], int64(n)*PageSize); err != nil {
		return fmt.Errorf("write page %d: %w", n, err)
	}
	return nil
}

// Close flushes every cached page in a single pass, releases the lock, and
// closes the file.
func (p *Pager) Close() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil {
			p.file.Close()
			return err
		}
		p.pages[i] = nil
	}

	if err := unix.Flock(int(p.file.Fd()), unix.LOCK_UN); err != nil {
		p.file.Close()
		return fmt.Errorf("unlock: %w", err)
	}
	return p.file.Close()
}
