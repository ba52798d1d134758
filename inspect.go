package tabledb

import (
	"fmt"
	"io"
	"strings"
)

// DumpTree writes a depth-first rendering of the tree to w, one node per
// line, indented two spaces per level. Internal nodes interleave each
// child's subtree with the routing key that gates it.
func (d *DB) DumpTree(w io.Writer) error {
	if d.closed {
		return ErrDatabaseClosed
	}
	return d.dumpNode(w, d.rootPage, 0)
}

func (d *DB) dumpNode(w io.Writer, pageNum uint32, depth int) error {
	node, err := d.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)

	switch node.nodeType() {
	case leafNode:
		numCells := node.leafNumCells()
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, numCells)
		for i := uint32(0); i < numCells; i++ {
			fmt.Fprintf(w, "%s  - %d\n", indent, node.leafKey(i))
		}

	case internalNode:
		numKeys := node.internalNumKeys()
		fmt.Fprintf(w, "%s- internal (size %d)\n", indent, numKeys)
		if numKeys == 0 {
			break
		}
		for i := uint32(0); i < numKeys; i++ {
			childNum, err := node.internalChild(i)
			if err != nil {
				return err
			}
			if err := d.dumpNode(w, childNum, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s  - key %d\n", indent, node.internalKey(i))
		}
		childNum, err := node.internalChild(numKeys)
		if err != nil {
			return err
		}
		if err := d.dumpNode(w, childNum, depth+1); err != nil {
			return err
		}
	}
	return nil
}
