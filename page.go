package tabledb

import (
	"encoding/binary"
	"fmt"
)

const (
	// PageSize is the fixed size of every on-disk page.
	PageSize = 4096

	leafNode     uint8 = 1
	internalNode uint8 = 0

	// invalidPageNum marks an internal node's right child as unset while the
	// node is mid-construction during a split. Lookups must never observe it.
	invalidPageNum uint32 = 0xFFFFFFFF
)

// Node layout. Every page carries the common header; a leaf or internal
// header follows, then the cell array.
//
// LEAF PAGE LAYOUT:
// ┌────────────────────────────────────────────────────────────┐
// │ common header (6 bytes): nodeType(1) isRoot(1) parent(4)   │
// ├────────────────────────────────────────────────────────────┤
// │ leaf header (8 bytes): numCells(4) nextLeaf(4)             │
// ├────────────────────────────────────────────────────────────┤
// │ cell[0] (297 bytes): key(4) row(293)                       │
// ├────────────────────────────────────────────────────────────┤
// │ ... up to LeafNodeMaxCells cells, tail unused              │
// └────────────────────────────────────────────────────────────┘
//
// INTERNAL PAGE LAYOUT:
// ┌────────────────────────────────────────────────────────────┐
// │ common header (6 bytes): nodeType(1) isRoot(1) parent(4)   │
// ├────────────────────────────────────────────────────────────┤
// │ internal header (8 bytes): numKeys(4) rightChild(4)        │
// ├────────────────────────────────────────────────────────────┤
// │ cell[0] (8 bytes): child(4) key(4)                         │
// ├────────────────────────────────────────────────────────────┤
// │ ... up to internalMaxKeys cells                            │
// └────────────────────────────────────────────────────────────┘
const (
	nodeTypeOffset = 0
	isRootOffset   = 1
	parentOffset   = 2

	// CommonNodeHeaderSize is the prefix shared by both node types.
	CommonNodeHeaderSize = 6

	leafNumCellsOffset = CommonNodeHeaderSize
	leafNextLeafOffset = leafNumCellsOffset + 4

	// LeafNodeHeaderSize is the full leaf header, common prefix included.
	LeafNodeHeaderSize = CommonNodeHeaderSize + 8

	leafKeySize = 4

	// LeafNodeCellSize is one key plus one serialized row.
	LeafNodeCellSize = leafKeySize + RowSize

	// LeafNodeSpaceForCells is the page body available to leaf cells.
	LeafNodeSpaceForCells = PageSize - LeafNodeHeaderSize

	// LeafNodeMaxCells is derived from the layout, never hard-coded.
	LeafNodeMaxCells = LeafNodeSpaceForCells / LeafNodeCellSize

	// On split the right sibling takes half of MaxCells+1 items, rounded
	// down; the left node keeps the rest.
	leafRightSplitCount = (LeafNodeMaxCells + 1) / 2
	leafLeftSplitCount  = LeafNodeMaxCells + 1 - leafRightSplitCount

	internalNumKeysOffset    = CommonNodeHeaderSize
	internalRightChildOffset = internalNumKeysOffset + 4
	internalHeaderSize       = CommonNodeHeaderSize + 8

	internalChildSize = 4
	internalKeySize   = 4
	internalCellSize  = internalChildSize + internalKeySize

	// internalMaxKeys is kept small so splits are exercised by small
	// workloads.
	internalMaxKeys = 3
)

// Page is a raw disk page. The pager hands out *Page values that alias its
// cache: mutations are observed by later reads and persisted on flush.
// Multi-byte fields are host-native; the file is not portable across
// architectures.
type Page struct {
	data [PageSize]byte
}

func (p *Page) u32(offset int) uint32 {
	return binary.NativeEndian.Uint32(p.data[offset:])
}

func (p *Page) putU32(offset int, v uint32) {
	binary.NativeEndian.PutUint32(p.data[offset:], v)
}

// Common header accessors

func (p *Page) nodeType() uint8 {
	return p.data[nodeTypeOffset]
}

func (p *Page) isRoot() bool {
	return p.data[isRootOffset] != 0
}

func (p *Page) setRoot(root bool) {
	if root {
		p.data[isRootOffset] = 1
	} else {
		p.data[isRootOffset] = 0
	}
}

func (p *Page) parent() uint32 {
	return p.u32(parentOffset)
}

func (p *Page) setParent(pageNum uint32) {
	p.putU32(parentOffset, pageNum)
}

// Leaf accessors

func (p *Page) leafNumCells() uint32 {
	return p.u32(leafNumCellsOffset)
}

func (p *Page) setLeafNumCells(n uint32) {
	p.putU32(leafNumCellsOffset, n)
}

func (p *Page) leafNextLeaf() uint32 {
	return p.u32(leafNextLeafOffset)
}

func (p *Page) setLeafNextLeaf(pageNum uint32) {
	p.putU32(leafNextLeafOffset, pageNum)
}

// leafCell returns the full cell (key and row bytes) at index i.
func (p *Page) leafCell(i uint32) []byte {
	offset := LeafNodeHeaderSize + int(i)*LeafNodeCellSize
	return p.data[offset : offset+LeafNodeCellSize]
}

func (p *Page) leafKey(i uint32) uint32 {
	return p.u32(LeafNodeHeaderSize + int(i)*LeafNodeCellSize)
}

func (p *Page) setLeafKey(i uint32, key uint32) {
	p.putU32(LeafNodeHeaderSize+int(i)*LeafNodeCellSize, key)
}

// leafValue returns the serialized row bytes of cell i. The slice aliases
// the page buffer.
func (p *Page) leafValue(i uint32) []byte {
	offset := LeafNodeHeaderSize + int(i)*LeafNodeCellSize + leafKeySize
	return p.data[offset : offset+RowSize]
}

// Internal accessors

func (p *Page) internalNumKeys() uint32 {
	return p.u32(internalNumKeysOffset)
}

func (p *Page) setInternalNumKeys(n uint32) {
	p.putU32(internalNumKeysOffset, n)
}

func (p *Page) internalRightChild() uint32 {
	return p.u32(internalRightChildOffset)
}

func (p *Page) setInternalRightChild(pageNum uint32) {
	p.putU32(internalRightChildOffset, pageNum)
}

func (p *Page) internalCell(i uint32) []byte {
	offset := internalHeaderSize + int(i)*internalCellSize
	return p.data[offset : offset+internalCellSize]
}

// internalCellChild reads cell i's child page number without validation.
// Split construction uses this to shuffle children while the node is in a
// transiently invalid state; everything else goes through internalChild.
func (p *Page) internalCellChild(i uint32) uint32 {
	return p.u32(internalHeaderSize + int(i)*internalCellSize)
}

func (p *Page) setInternalCellChild(i uint32, pageNum uint32) {
	p.putU32(internalHeaderSize+int(i)*internalCellSize, pageNum)
}

func (p *Page) internalKey(i uint32) uint32 {
	return p.u32(internalHeaderSize + int(i)*internalCellSize + internalChildSize)
}

func (p *Page) setInternalKey(i uint32, key uint32) {
	p.putU32(internalHeaderSize+int(i)*internalCellSize+internalChildSize, key)
}

// internalChild returns the page number of child i, where i == numKeys
// addresses the right child. Observing an unset child is a corruption-class
// error, not a recoverable one.
func (p *Page) internalChild(i uint32) (uint32, error) {
	numKeys := p.internalNumKeys()
	if i > numKeys {
		return 0, fmt.Errorf("%w: child %d > num keys %d", ErrInvalidChild, i, numKeys)
	}

	var child uint32
	if i == numKeys {
		child = p.internalRightChild()
	} else {
		child = p.internalCellChild(i)
	}
	if child == invalidPageNum {
		return 0, fmt.Errorf("%w: child %d is unset", ErrInvalidChild, i)
	}
	return child, nil
}

// initLeaf resets the page to an empty non-root leaf.
func (p *Page) initLeaf() {
	p.data[nodeTypeOffset] = leafNode
	p.setRoot(false)
	p.setLeafNumCells(0)
	p.setLeafNextLeaf(0) // 0 means no right sibling
}

// initInternal resets the page to an empty non-root internal node. The
// right child starts out unset; internalInsert fills it before the node
// becomes reachable by lookups.
func (p *Page) initInternal() {
	p.data[nodeTypeOffset] = internalNode
	p.setRoot(false)
	p.setInternalNumKeys(0)
	p.setInternalRightChild(invalidPageNum)
}
