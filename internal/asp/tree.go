package asp

// Trees (Set, Dictionary, Namespace) are unbalanced binary search trees
// addressed by arena index, with parent pointers so traversal never
// recurses. Every node kind needs parent+left+right plus one or two
// payload slots, but an entry only has four generic word slots — SetNode
// fits exactly (parent, left, right, key) but DictionaryNode and
// NamespaceNode need a fifth (key-or-symbol, value, and linksIndex all
// at once), so for those kinds left/right move into a lazily allocated
// TreeLinksNode, freeing the node cell's w1/w2 for key/value. A links
// node is allocated only once a node actually gets a left or right
// child, and freed again the moment both are cleared.

// container: w0=count, w1=root.
func (a *arena) treeCount(t Index) int32   { return a.at(t).w0 }
func (a *arena) treeRoot(t Index) Index    { return a.at(t).idx(1) }
func (a *arena) setTreeCount(t Index, n int32) { a.at(t).w0 = n }
func (a *arena) setTreeRoot(t Index, v Index)  { a.at(t).setIdx(1, v) }

func (a *arena) nodeParent(n Index) Index     { return a.at(n).idx(0) }
func (a *arena) setNodeParent(n Index, v Index) { a.at(n).setIdx(0, v) }

// SetNode: w0=parent, w1=left, w2=right, w3=key.
// DictionaryNode: w0=parent, w1=key, w2=value, w3=linksIndex.
// NamespaceNode: w0=parent, w1=symbol (raw int32, not an index), w2=value, w3=linksIndex.
// TreeLinksNode: w0=left, w1=right.

func (a *arena) nodeLeft(n Index) Index {
	switch a.at(n).typ {
	case TypeSetNode:
		return a.at(n).idx(1)
	default:
		links := a.at(n).idx(3)
		if links == NilIndex {
			return NilIndex
		}
		return a.at(links).idx(0)
	}
}

func (a *arena) nodeRight(n Index) Index {
	switch a.at(n).typ {
	case TypeSetNode:
		return a.at(n).idx(2)
	default:
		links := a.at(n).idx(3)
		if links == NilIndex {
			return NilIndex
		}
		return a.at(links).idx(1)
	}
}

func (a *arena) ensureLinks(n Index) (Index, RunResult) {
	links := a.at(n).idx(3)
	if links != NilIndex {
		return links, RunResultOK
	}
	links, ok := a.alloc(TypeTreeLinks)
	if !ok {
		return NilIndex, RunResultOutOfDataMemory
	}
	a.at(n).setIdx(3, links)
	return links, RunResultOK
}

// pruneLinks frees a node's TreeLinksNode once both its left and right
// pointers have gone to nil, mirroring the reference engine's eager
// reclamation of the indirection cell.
func (a *arena) pruneLinks(n Index) {
	links := a.at(n).idx(3)
	if links == NilIndex {
		return
	}
	if a.at(links).idx(0) == NilIndex && a.at(links).idx(1) == NilIndex {
		a.free(links)
		a.at(n).setIdx(3, NilIndex)
	}
}

func (a *arena) setNodeLeft(n, v Index) RunResult {
	if a.at(n).typ == TypeSetNode {
		a.at(n).setIdx(1, v)
		return RunResultOK
	}
	if v == NilIndex {
		links := a.at(n).idx(3)
		if links != NilIndex {
			a.at(links).setIdx(0, NilIndex)
			a.pruneLinks(n)
		}
		return RunResultOK
	}
	links, res := a.ensureLinks(n)
	if res != RunResultOK {
		return res
	}
	a.at(links).setIdx(0, v)
	return RunResultOK
}

func (a *arena) setNodeRight(n, v Index) RunResult {
	if a.at(n).typ == TypeSetNode {
		a.at(n).setIdx(2, v)
		return RunResultOK
	}
	if v == NilIndex {
		links := a.at(n).idx(3)
		if links != NilIndex {
			a.at(links).setIdx(1, NilIndex)
			a.pruneLinks(n)
		}
		return RunResultOK
	}
	links, res := a.ensureLinks(n)
	if res != RunResultOK {
		return res
	}
	a.at(links).setIdx(1, v)
	return RunResultOK
}

func (a *arena) nodeKey(n Index) Index {
	if a.at(n).typ == TypeSetNode {
		return a.at(n).idx(3)
	}
	return a.at(n).idx(1)
}
func (a *arena) setNodeKey(n, v Index) {
	if a.at(n).typ == TypeSetNode {
		a.at(n).setIdx(3, v)
	} else {
		a.at(n).setIdx(1, v)
	}
}

func (a *arena) nodeSymbol(n Index) int32     { return a.at(n).w1 }
func (a *arena) setNodeSymbol(n Index, s int32) { a.at(n).w1 = s }

// nodeIsGlobal/setNodeIsGlobal track a NamespaceNode's "global override"
// flag set by GLOB and cleared by LOC: a local variable so marked is
// looked up (and deleted) in the global namespace instead of the local
// one, letting a function assign to a module-level name.
func (a *arena) nodeIsGlobal(n Index) bool        { return a.at(n).bit0 }
func (a *arena) setNodeIsGlobal(n Index, v bool) { a.at(n).bit0 = v }

func (a *arena) nodeValue(n Index) Index {
	if a.at(n).typ == TypeSetNode {
		return NilIndex
	}
	return a.at(n).idx(2)
}
func (a *arena) setNodeValue(n, v Index) { a.at(n).setIdx(2, v) }

// treeNodeTypeFor returns the node kind for a tree container kind.
func treeNodeTypeFor(treeType DataType) DataType {
	switch treeType {
	case TypeDictionary:
		return TypeDictionaryNode
	case TypeNamespace:
		return TypeNamespaceNode
	default:
		return TypeSetNode
	}
}

// compareKeys orders two nodes of the same tree: Namespace compares raw
// symbols, Set/Dictionary compare key objects via the engine comparator.
func (e *Engine) compareKeys(tree, left, right Index) (int, RunResult) {
	if e.arena.at(tree).typ == TypeNamespace {
		ls, rs := e.arena.nodeSymbol(left), e.arena.nodeSymbol(right)
		switch {
		case ls < rs:
			return -1, RunResultOK
		case ls > rs:
			return 1, RunResultOK
		default:
			return 0, RunResultOK
		}
	}
	return e.compare(e.arena.nodeKey(left), e.arena.nodeKey(right), CompareModeKey)
}

// treeFindNode walks from the root comparing keyNode against each
// visited node, returning the first exact match (or NilIndex).
func (e *Engine) treeFindNode(tree, keyNode Index) (Index, RunResult) {
	node := e.arena.treeRoot(tree)
	for node != NilIndex {
		c, res := e.compareKeys(tree, keyNode, node)
		if res != RunResultOK {
			return NilIndex, res
		}
		if c == 0 {
			return node, RunResultOK
		}
		if c < 0 {
			node = e.arena.nodeLeft(node)
		} else {
			node = e.arena.nodeRight(node)
		}
	}
	return NilIndex, RunResultOK
}

// treeInsertNode links an already-allocated, already-keyed node into the
// tree's BST structure and bumps its count.
func (e *Engine) treeInsertNode(tree, node Index) RunResult {
	var parent Index = NilIndex
	target := e.arena.treeRoot(tree)
	for target != NilIndex {
		parent = target
		c, res := e.compareKeys(tree, node, target)
		if res != RunResultOK {
			return res
		}
		if c < 0 {
			target = e.arena.nodeLeft(target)
		} else {
			target = e.arena.nodeRight(target)
		}
	}

	e.arena.setNodeParent(node, parent)
	if parent == NilIndex {
		e.arena.setTreeRoot(tree, node)
	} else {
		c, res := e.compareKeys(tree, node, parent)
		if res != RunResultOK {
			return res
		}
		if c < 0 {
			if res := e.arena.setNodeLeft(parent, node); res != RunResultOK {
				return res
			}
		} else {
			if res := e.arena.setNodeRight(parent, node); res != RunResultOK {
				return res
			}
		}
	}

	e.arena.setTreeCount(tree, e.arena.treeCount(tree)+1)
	return RunResultOK
}

// TreeInsertResult reports the outcome of a Set/Dictionary insert:
// Node is the node that now holds the key (new or pre-existing),
// Inserted is false when an existing key's value was simply replaced.
type TreeInsertResult struct {
	Node     Index
	Key      Index
	Value    Index
	Inserted bool
}

// treeInsert implements AspTreeInsert: insert key (Set) or key/value
// (Dictionary), replacing the value in place when key already exists.
func (e *Engine) treeInsert(tree, key, value Index) (TreeInsertResult, RunResult) {
	nodeType := treeNodeTypeFor(e.arena.at(tree).typ)
	node, ok := e.arena.alloc(nodeType)
	if !ok {
		return TreeInsertResult{}, RunResultOutOfDataMemory
	}
	e.arena.setNodeKey(node, key)

	found, res := e.treeFindNode(tree, node)
	if res != RunResultOK {
		return TreeInsertResult{}, res
	}
	if found != NilIndex {
		e.unref(node)
		result := TreeInsertResult{Node: found, Key: e.arena.nodeKey(found)}
		if e.arena.at(tree).typ == TypeDictionary {
			e.unref(e.arena.nodeValue(found))
			e.arena.setNodeValue(found, value)
			e.ref(value)
			result.Value = value
		}
		return result, RunResultOK
	}

	e.ref(key)
	e.arena.setNodeValue(node, NilIndex)
	result := TreeInsertResult{Node: node, Key: key, Inserted: true}
	if e.arena.at(tree).typ == TypeDictionary {
		e.ref(value)
		e.arena.setNodeValue(node, value)
		result.Value = value
	}

	if res := e.treeInsertNode(tree, node); res != RunResultOK {
		return TreeInsertResult{}, res
	}
	return result, RunResultOK
}

// treeTryInsertBySymbol implements AspTreeTryInsertBySymbol for
// Namespace: it is a no-op (Inserted=false, Node=existing) if symbol is
// already bound.
func (e *Engine) treeTryInsertBySymbol(tree Index, symbol int32, value Index) (TreeInsertResult, RunResult) {
	existing, res := e.findSymbol(tree, symbol)
	if res != RunResultOK {
		return TreeInsertResult{}, res
	}
	if existing != NilIndex {
		return TreeInsertResult{Node: existing, Value: e.arena.nodeValue(existing)}, RunResultOK
	}

	node, ok := e.arena.alloc(TypeNamespaceNode)
	if !ok {
		return TreeInsertResult{}, RunResultOutOfDataMemory
	}
	e.arena.setNodeSymbol(node, symbol)
	e.ref(value)
	e.arena.setNodeValue(node, value)

	if res := e.treeInsertNode(tree, node); res != RunResultOK {
		return TreeInsertResult{}, res
	}
	return TreeInsertResult{Node: node, Value: value, Inserted: true}, RunResultOK
}

// findSymbol looks up a Namespace node by raw symbol without allocating
// a throwaway key node (symbols are cheap int32 comparisons).
func (e *Engine) findSymbol(tree Index, symbol int32) (Index, RunResult) {
	node := e.arena.treeRoot(tree)
	for node != NilIndex {
		s := e.arena.nodeSymbol(node)
		switch {
		case symbol == s:
			return node, RunResultOK
		case symbol < s:
			node = e.arena.nodeLeft(node)
		default:
			node = e.arena.nodeRight(node)
		}
	}
	return NilIndex, RunResultOK
}

// treeFind implements AspTreeFind: locate key in a Set/Dictionary
// without mutating the tree.
func (e *Engine) treeFind(tree, key Index) (node Index, value Index, res RunResult) {
	nodeType := treeNodeTypeFor(e.arena.at(tree).typ)
	keyNode, ok := e.arena.alloc(nodeType)
	if !ok {
		return NilIndex, NilIndex, RunResultOutOfDataMemory
	}
	e.arena.setNodeKey(keyNode, key)
	found, res := e.treeFindNode(tree, keyNode)
	e.arena.free(keyNode)
	if res != RunResultOK {
		return NilIndex, NilIndex, res
	}
	if found == NilIndex {
		return NilIndex, NilIndex, RunResultOK
	}
	if e.arena.at(tree).typ == TypeDictionary {
		return found, e.arena.nodeValue(found), RunResultOK
	}
	return found, NilIndex, RunResultOK
}

// treeMin descends left from node to the subtree's minimum.
func (a *arena) treeMin(node Index) Index {
	for a.nodeLeft(node) != NilIndex {
		node = a.nodeLeft(node)
	}
	return node
}

// treeNext implements AspTreeNext: in-order successor via parent
// pointers, with node==NilIndex meaning "first node".
func (e *Engine) treeNext(tree, node Index) (next Index, key Index, value Index, res RunResult) {
	root := e.arena.treeRoot(tree)
	if root == NilIndex {
		return NilIndex, NilIndex, NilIndex, RunResultOK
	}

	if node == NilIndex {
		next = e.arena.treeMin(root)
	} else if e.arena.nodeRight(node) != NilIndex {
		next = e.arena.treeMin(e.arena.nodeRight(node))
	} else {
		child := node
		parent := e.arena.nodeParent(child)
		for parent != NilIndex && child == e.arena.nodeRight(parent) {
			child = parent
			parent = e.arena.nodeParent(parent)
		}
		next = parent
	}

	if next == NilIndex {
		return NilIndex, NilIndex, NilIndex, RunResultOK
	}
	isNamespace := e.arena.at(tree).typ == TypeNamespace
	isSet := e.arena.at(tree).typ == TypeSet
	if !isNamespace {
		key = e.arena.nodeKey(next)
	}
	if !isSet {
		value = e.arena.nodeValue(next)
	}
	return next, key, value, RunResultOK
}

// treeShift replaces node1 with node2 in node1's parent's child slot,
// reparenting node2 (AspTree's "Shift").
func (e *Engine) treeShift(tree, node1, node2 Index) RunResult {
	parent := e.arena.nodeParent(node1)
	if parent == NilIndex {
		e.arena.setTreeRoot(tree, node2)
	} else if node1 == e.arena.nodeLeft(parent) {
		if res := e.arena.setNodeLeft(parent, node2); res != RunResultOK {
			return res
		}
	} else {
		if res := e.arena.setNodeRight(parent, node2); res != RunResultOK {
			return res
		}
	}
	if node2 != NilIndex {
		e.arena.setNodeParent(node2, parent)
	}
	return RunResultOK
}

// treeEraseNode implements AspTreeEraseNode: standard BST delete by
// splice-and-shift, optionally releasing the key and/or value.
func (e *Engine) treeEraseNode(tree, node Index, eraseKey, eraseValue bool) RunResult {
	left := e.arena.nodeLeft(node)
	right := e.arena.nodeRight(node)

	var res RunResult
	switch {
	case left == NilIndex:
		res = e.treeShift(tree, node, right)
	case right == NilIndex:
		res = e.treeShift(tree, node, left)
	default:
		next := e.arena.treeMin(right)
		if e.arena.nodeParent(next) != node {
			nextRight := e.arena.nodeRight(next)
			if res = e.treeShift(tree, next, nextRight); res != RunResultOK {
				return res
			}
			if res = e.arena.setNodeRight(next, right); res != RunResultOK {
				return res
			}
			e.arena.setNodeParent(right, next)
		}
		if res = e.treeShift(tree, node, next); res != RunResultOK {
			return res
		}
		if res = e.arena.setNodeLeft(next, left); res != RunResultOK {
			return res
		}
		e.arena.setNodeParent(left, next)
	}
	if res != RunResultOK {
		return res
	}

	isSet := e.arena.at(tree).typ == TypeSet
	isNamespace := e.arena.at(tree).typ == TypeNamespace
	if eraseKey && !isNamespace {
		e.unref(e.arena.nodeKey(node))
	}
	if eraseValue && !isSet {
		e.unref(e.arena.nodeValue(node))
	}
	links := e.arena.at(node).idx(3)
	if !isSet && links != NilIndex {
		e.arena.free(links)
	}
	e.unref(node)
	e.arena.setTreeCount(tree, e.arena.treeCount(tree)-1)
	return RunResultOK
}

// treePopFirst erases and returns the first (minimum) node's key/value,
// transferring ownership of both references to the caller — used by
// iterative tear-down.
func (e *Engine) treePopFirst(tree Index) (key, value Index, ok bool, res RunResult) {
	root := e.arena.treeRoot(tree)
	if root == NilIndex {
		return NilIndex, NilIndex, false, RunResultOK
	}
	node := e.arena.treeMin(root)
	isSet := e.arena.at(tree).typ == TypeSet
	isNamespace := e.arena.at(tree).typ == TypeNamespace
	if !isNamespace {
		key = e.arena.nodeKey(node)
	}
	if !isSet {
		value = e.arena.nodeValue(node)
	}
	res = e.treeEraseNode(tree, node, false, false)
	return key, value, true, res
}
