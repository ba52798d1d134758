package tabledb

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// UsernameMaxLen and EmailMaxLen bound the string columns. The stored
	// field is one byte wider so a terminating zero always fits.
	UsernameMaxLen = 32
	EmailMaxLen    = 255

	usernameSize = UsernameMaxLen + 1
	emailSize    = EmailMaxLen + 1

	idOffset       = 0
	idSize         = 4
	usernameOffset = idOffset + idSize
	emailOffset    = usernameOffset + usernameSize

	// RowSize is the serialized row width inside a leaf cell.
	RowSize = idSize + usernameSize + emailSize
)

// Row is the fixed-shape record stored in leaf cells, keyed by ID.
// Length validation is the driver's responsibility; the codec assumes
// well-formed input.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

func (r *Row) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}

// serializeRow writes r into dst at fixed offsets. The destination is
// zeroed first so string fields are always zero-terminated and the unused
// tail of each field is deterministic.
func serializeRow(r *Row, dst []byte) {
	clear(dst[:RowSize])
	binary.NativeEndian.PutUint32(dst[idOffset:], r.ID)
	copy(dst[usernameOffset:usernameOffset+UsernameMaxLen], r.Username)
	copy(dst[emailOffset:emailOffset+EmailMaxLen], r.Email)
}

// deserializeRow decodes the cell bytes at src into r. String fields stop
// at the first zero byte.
func deserializeRow(src []byte, r *Row) {
	r.ID = binary.NativeEndian.Uint32(src[idOffset:])
	r.Username = cstring(src[usernameOffset : usernameOffset+usernameSize])
	r.Email = cstring(src[emailOffset : emailOffset+emailSize])
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
