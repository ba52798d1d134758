package tabledb

// find returns a cursor at key's cell, or at the position where key would
// be inserted.
func (d *DB) find(key uint32) (*Cursor, error) {
	root, err := d.pager.GetPage(d.rootPage)
	if err != nil {
		return nil, err
	}

	if root.nodeType() == leafNode {
		return d.leafFind(d.rootPage, key)
	}
	return d.internalFind(d.rootPage, key)
}

// leafFind binary-searches the leaf for key. The cursor lands on the exact
// match, or on the insertion position (possibly one past the last cell).
func (d *DB) leafFind(pageNum uint32, key uint32) (*Cursor, error) {
	node, err := d.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	numCells := node.leafNumCells()

	cursor := &Cursor{db: d, pageNum: pageNum}

	minIndex := uint32(0)
	onePastMaxIndex := numCells
	for onePastMaxIndex != minIndex {
		index := (minIndex + onePastMaxIndex) / 2
		keyAtIndex := node.leafKey(index)
		if key == keyAtIndex {
			cursor.cellNum = index
			return cursor, nil
		}
		if key < keyAtIndex {
			onePastMaxIndex = index
		} else {
			minIndex = index + 1
		}
	}

	cursor.cellNum = minIndex
	return cursor, nil
}

// internalFindChild returns the index of the child which should contain
// key: the first cell whose key is >= key, or numKeys for the right child.
func internalFindChild(node *Page, key uint32) uint32 {
	numKeys := node.internalNumKeys()

	// There is one more child than key.
	minIndex := uint32(0)
	maxIndex := numKeys
	for minIndex != maxIndex {
		index := (minIndex + maxIndex) / 2
		keyToRight := node.internalKey(index)
		if keyToRight >= key {
			maxIndex = index
		} else {
			minIndex = index + 1
		}
	}

	return minIndex
}

func (d *DB) internalFind(pageNum uint32, key uint32) (*Cursor, error) {
	node, err := d.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}

	childIndex := internalFindChild(node, key)
	childNum, err := node.internalChild(childIndex)
	if err != nil {
		return nil, err
	}
	child, err := d.pager.GetPage(childNum)
	if err != nil {
		return nil, err
	}

	if child.nodeType() == leafNode {
		return d.leafFind(childNum, key)
	}
	return d.internalFind(childNum, key)
}

// maxKey returns the largest key in the subtree rooted at node: the last
// cell of a leaf, or recursively the max of an internal node's right child.
func (d *DB) maxKey(node *Page) (uint32, error) {
	if node.nodeType() == leafNode {
		return node.leafKey(node.leafNumCells() - 1), nil
	}
	rightChild, err := d.pager.GetPage(node.internalRightChild())
	if err != nil {
		return 0, err
	}
	return d.maxKey(rightChild)
}

// leafInsert writes key/row at the cursor's position, shifting later cells
// right. A full leaf splits instead.
func (d *DB) leafInsert(cursor *Cursor, key uint32, row *Row) error {
	node, err := d.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}

	numCells := node.leafNumCells()
	if numCells >= LeafNodeMaxCells {
		return d.leafSplitAndInsert(cursor, key, row)
	}

	if cursor.cellNum < numCells {
		// Make room for the new cell.
		for i := numCells; i > cursor.cellNum; i-- {
			copy(node.leafCell(i), node.leafCell(i-1))
		}
	}

	node.setLeafNumCells(numCells + 1)
	node.setLeafKey(cursor.cellNum, key)
	serializeRow(row, node.leafValue(cursor.cellNum))
	return nil
}

// leafSplitAndInsert creates a right sibling and redistributes the existing
// cells plus the new one across both halves, then hooks the sibling into
// the parent (promoting a new root if the split leaf was the root).
func (d *DB) leafSplitAndInsert(cursor *Cursor, key uint32, row *Row) error {
	oldNode, err := d.pager.GetPage(cursor.pageNum)
	if err != nil {
		return err
	}
	oldMax, err := d.maxKey(oldNode)
	if err != nil {
		return err
	}

	newPageNum := d.pager.allocatePage()
	newNode, err := d.pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	newNode.initLeaf()
	newNode.setParent(oldNode.parent())
	newNode.setLeafNextLeaf(oldNode.leafNextLeaf())
	oldNode.setLeafNextLeaf(newPageNum)

	// All existing cells plus the new one are divided evenly between the
	// two nodes. Working from the highest position down keeps every move a
	// copy into not-yet-consumed space.
	for i := int32(LeafNodeMaxCells); i >= 0; i-- {
		destNode := oldNode
		if i >= leafLeftSplitCount {
			destNode = newNode
		}
		indexWithinNode := uint32(i % leafLeftSplitCount)

		switch {
		case i == int32(cursor.cellNum):
			destNode.setLeafKey(indexWithinNode, key)
			serializeRow(row, destNode.leafValue(indexWithinNode))
		case i > int32(cursor.cellNum):
			copy(destNode.leafCell(indexWithinNode), oldNode.leafCell(uint32(i-1)))
		default:
			copy(destNode.leafCell(indexWithinNode), oldNode.leafCell(uint32(i)))
		}
	}

	oldNode.setLeafNumCells(leafLeftSplitCount)
	newNode.setLeafNumCells(leafRightSplitCount)

	if oldNode.isRoot() {
		return d.createNewRoot(newPageNum)
	}

	parentPageNum := oldNode.parent()
	newMax, err := d.maxKey(oldNode)
	if err != nil {
		return err
	}
	parent, err := d.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	updateInternalKey(parent, oldMax, newMax)
	return d.internalInsert(parentPageNum, newPageNum)
}

// createNewRoot handles splitting the root: the old root's bytes move to a
// newly allocated page (the new left child) and the root page is rewritten
// in place as an internal node over both children. The root page number
// never changes.
func (d *DB) createNewRoot(rightChildPageNum uint32) error {
	root, err := d.pager.GetPage(d.rootPage)
	if err != nil {
		return err
	}
	rightChild, err := d.pager.GetPage(rightChildPageNum)
	if err != nil {
		return err
	}

	leftChildPageNum := d.pager.allocatePage()
	leftChild, err := d.pager.GetPage(leftChildPageNum)
	if err != nil {
		return err
	}

	if root.nodeType() == internalNode {
		// An internal root splits before its new sibling has been built;
		// the sibling page must start out as an empty internal node.
		rightChild.initInternal()
	}

	// The left child inherits the old root's bytes wholesale.
	copy(leftChild.data[:], root.data[:])
	leftChild.setRoot(false)

	if leftChild.nodeType() == internalNode {
		// Everything below the copied node now has a new parent.
		for i := uint32(0); i <= leftChild.internalNumKeys(); i++ {
			childNum, err := leftChild.internalChild(i)
			if err != nil {
				return err
			}
			child, err := d.pager.GetPage(childNum)
			if err != nil {
				return err
			}
			child.setParent(leftChildPageNum)
		}
	}

	// The root becomes a fresh internal node with one key and two children.
	root.initInternal()
	root.setRoot(true)
	root.setInternalNumKeys(1)
	root.setInternalCellChild(0, leftChildPageNum)
	leftChildMax, err := d.maxKey(leftChild)
	if err != nil {
		return err
	}
	root.setInternalKey(0, leftChildMax)
	root.setInternalRightChild(rightChildPageNum)
	leftChild.setParent(d.rootPage)
	rightChild.setParent(d.rootPage)

	d.log.Info("root promoted",
		"left", leftChildPageNum, "right", rightChildPageNum)
	return nil
}

// updateInternalKey replaces the routing key that previously gated oldKey's
// subtree with newKey.
func updateInternalKey(node *Page, oldKey uint32, newKey uint32) {
	oldChildIndex := internalFindChild(node, oldKey)
	node.setInternalKey(oldChildIndex, newKey)
}

// internalInsert adds a child to the internal node at parentPageNum,
// keeping cells ordered and the right child the maximum subtree.
func (d *DB) internalInsert(parentPageNum uint32, childPageNum uint32) error {
	parent, err := d.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	child, err := d.pager.GetPage(childPageNum)
	if err != nil {
		return err
	}
	childMax, err := d.maxKey(child)
	if err != nil {
		return err
	}
	index := internalFindChild(parent, childMax)

	originalNumKeys := parent.internalNumKeys()
	if originalNumKeys >= internalMaxKeys {
		return d.internalSplitAndInsert(parentPageNum, childPageNum)
	}

	rightChildPageNum := parent.internalRightChild()
	if rightChildPageNum == invalidPageNum {
		// An internal node with an unset right child is empty.
		parent.setInternalRightChild(childPageNum)
		return nil
	}

	rightChild, err := d.pager.GetPage(rightChildPageNum)
	if err != nil {
		return err
	}
	rightChildMax, err := d.maxKey(rightChild)
	if err != nil {
		return err
	}

	parent.setInternalNumKeys(originalNumKeys + 1)

	if childMax > rightChildMax {
		// The new child becomes the right child; the old right child
		// drops into the last cell.
		parent.setInternalCellChild(originalNumKeys, rightChildPageNum)
		parent.setInternalKey(originalNumKeys, rightChildMax)
		parent.setInternalRightChild(childPageNum)
	} else {
		// Make room for the new cell.
		for i := originalNumKeys; i > index; i-- {
			copy(parent.internalCell(i), parent.internalCell(i-1))
		}
		parent.setInternalCellChild(index, childPageNum)
		parent.setInternalKey(index, childMax)
	}
	return nil
}

// internalSplitAndInsert splits a full internal node while adding a child.
// The upper half of the children move to a new sibling; the incoming child
// is routed to whichever half owns its key range.
func (d *DB) internalSplitAndInsert(parentPageNum uint32, childPageNum uint32) error {
	oldPageNum := parentPageNum
	oldNode, err := d.pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	oldMax, err := d.maxKey(oldNode)
	if err != nil {
		return err
	}

	child, err := d.pager.GetPage(childPageNum)
	if err != nil {
		return err
	}
	childMax, err := d.maxKey(child)
	if err != nil {
		return err
	}

	newPageNum := d.pager.allocatePage()
	splittingRoot := oldNode.isRoot()

	var parent *Page
	if splittingRoot {
		if err := d.createNewRoot(newPageNum); err != nil {
			return err
		}
		parent, err = d.pager.GetPage(d.rootPage)
		if err != nil {
			return err
		}
		// The node being split is now the copied left child of the new
		// root; rebind to it.
		oldPageNum, err = parent.internalChild(0)
		if err != nil {
			return err
		}
		oldNode, err = d.pager.GetPage(oldPageNum)
		if err != nil {
			return err
		}
	} else {
		parent, err = d.pager.GetPage(oldNode.parent())
		if err != nil {
			return err
		}
		newNode, err := d.pager.GetPage(newPageNum)
		if err != nil {
			return err
		}
		newNode.initInternal()
	}

	// Move the old right child into the new node, leaving the old node
	// transiently without one.
	curPageNum := oldNode.internalRightChild()
	cur, err := d.pager.GetPage(curPageNum)
	if err != nil {
		return err
	}
	if err := d.internalInsert(newPageNum, curPageNum); err != nil {
		return err
	}
	cur.setParent(newPageNum)
	oldNode.setInternalRightChild(invalidPageNum)

	// Move the upper cells, strictly above the midpoint, into the new node.
	for i := uint32(internalMaxKeys - 1); i > internalMaxKeys/2; i-- {
		curPageNum = oldNode.internalCellChild(i)
		cur, err = d.pager.GetPage(curPageNum)
		if err != nil {
			return err
		}
		if err := d.internalInsert(newPageNum, curPageNum); err != nil {
			return err
		}
		cur.setParent(newPageNum)
		oldNode.setInternalNumKeys(oldNode.internalNumKeys() - 1)
	}

	// Promote the child at the current last occupied cell to be the right
	// child, then drop that cell.
	lastIndex := oldNode.internalNumKeys() - 1
	oldNode.setInternalRightChild(oldNode.internalCellChild(lastIndex))
	oldNode.setInternalNumKeys(lastIndex)

	// Route the incoming child to whichever half owns its key range.
	maxAfterSplit, err := d.maxKey(oldNode)
	if err != nil {
		return err
	}
	destinationPageNum := newPageNum
	if childMax < maxAfterSplit {
		destinationPageNum = oldPageNum
	}
	if err := d.internalInsert(destinationPageNum, childPageNum); err != nil {
		return err
	}
	child.setParent(destinationPageNum)

	updateInternalKey(parent, oldMax, maxAfterSplit)

	if !splittingRoot {
		// Set the sibling's parent before inserting it: if the insert splits
		// the parent in turn, that split re-points the sibling itself.
		newNode, err := d.pager.GetPage(newPageNum)
		if err != nil {
			return err
		}
		newNode.setParent(oldNode.parent())
		if err := d.internalInsert(oldNode.parent(), newPageNum); err != nil {
			return err
		}
	}
	return nil
}
