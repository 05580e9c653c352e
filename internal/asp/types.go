package asp

// DataType discriminates the uniform arena cell. Object kinds are
// reference-counted and observable to script; support kinds are internal
// bookkeeping cells never exposed as a script value.
type DataType uint8

const (
	// Object kinds.
	TypeNone DataType = iota
	TypeEllipsis
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeRange
	TypeString
	TypeTuple
	TypeList
	TypeSet
	TypeDictionary
	TypeIterator
	TypeFunction
	TypeModule
	TypeType

	// Support kinds: never placed in a value field, only in link fields.
	TypeElement
	TypeStringFragment
	TypeKeyValuePair
	TypeNamespace
	TypeSetNode
	TypeDictionaryNode
	TypeNamespaceNode
	TypeTreeLinks
	TypeParameter
	TypeParameterList
	TypeArgument
	TypeArgumentList
	TypeCodeAddress
	TypeStackEntry
	TypeFrame
	TypeAddress

	// TypeFree marks a cell on the allocator's free list.
	TypeFree
)

// IsObject reports whether t is one of the object kinds exposed to script
// and therefore reference-counted.
func (t DataType) IsObject() bool {
	return t <= TypeType
}

// IsTerminal reports whether t owns no child references, so releasing it
// never needs to push work onto the tear-down stack.
func (t DataType) IsTerminal() bool {
	switch t {
	case TypeNone, TypeEllipsis, TypeBoolean, TypeInteger, TypeFloat,
		TypeType, TypeCodeAddress, TypeStringFragment:
		return true
	default:
		return false
	}
}

// IsTree reports whether t is a container implemented as a binary search
// tree (Set, Dictionary, Namespace).
func (t DataType) IsTree() bool {
	return t == TypeSet || t == TypeDictionary || t == TypeNamespace
}

// IsTreeNode reports whether t is a node belonging to one of the tree
// container kinds.
func (t DataType) IsTreeNode() bool {
	switch t {
	case TypeSetNode, TypeDictionaryNode, TypeNamespaceNode:
		return true
	default:
		return false
	}
}

// IsSequence reports whether t is a container implemented as a doubly
// linked list of Element cells (String uses StringFragment cells instead,
// so it is handled by the dedicated string helpers, not this predicate).
func (t DataType) IsSequence() bool {
	switch t {
	case TypeTuple, TypeList, TypeParameterList, TypeArgumentList:
		return true
	default:
		return false
	}
}

// IsIterable reports whether t supports SITER.
func (t DataType) IsIterable() bool {
	switch t {
	case TypeRange, TypeString, TypeTuple, TypeList, TypeSet, TypeDictionary:
		return true
	default:
		return false
	}
}

func (t DataType) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeEllipsis:
		return "Ellipsis"
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeRange:
		return "Range"
	case TypeString:
		return "String"
	case TypeTuple:
		return "Tuple"
	case TypeList:
		return "List"
	case TypeSet:
		return "Set"
	case TypeDictionary:
		return "Dictionary"
	case TypeIterator:
		return "Iterator"
	case TypeFunction:
		return "Function"
	case TypeModule:
		return "Module"
	case TypeType:
		return "Type"
	case TypeElement:
		return "Element"
	case TypeStringFragment:
		return "StringFragment"
	case TypeKeyValuePair:
		return "KeyValuePair"
	case TypeNamespace:
		return "Namespace"
	case TypeSetNode:
		return "SetNode"
	case TypeDictionaryNode:
		return "DictionaryNode"
	case TypeNamespaceNode:
		return "NamespaceNode"
	case TypeTreeLinks:
		return "TreeLinks"
	case TypeParameter:
		return "Parameter"
	case TypeParameterList:
		return "ParameterList"
	case TypeArgument:
		return "Argument"
	case TypeArgumentList:
		return "ArgumentList"
	case TypeCodeAddress:
		return "CodeAddress"
	case TypeStackEntry:
		return "StackEntry"
	case TypeFrame:
		return "Frame"
	case TypeAddress:
		return "Address"
	case TypeFree:
		return "Free"
	default:
		return "Unknown"
	}
}

// Index addresses a single cell within the arena. Index 0 is reserved for
// the None singleton and also serves as the "null" sentinel inside link
// fields.
type Index uint32

// NilIndex is the null link value: it addresses the None singleton when
// read from a value field, and means "absent" when read from a link field.
const NilIndex Index = 0

// stringFragmentCapacity is the number of bytes a single StringFragment
// cell stores inline.
const stringFragmentCapacity = 14

// entry is the uniform arena cell. Every field that is not meaningful for
// a given cell's current Type is simply unused; this is the Go analogue
// of the reference engine's packed union, traded for clarity over a
// fixed byte count (the arena's capacity, not the cell's exact size, is
// what bounds memory use from the host's point of view).
type entry struct {
	typ      DataType
	useCount uint32

	// w0..w3 are generic link/value words, reused per Type:
	//   Range:      w0=start, w1=end, w2=step (each Index, conditioned on has* bits)
	//   Sequence:   w0=head Element index, w1=tail Element index, w3=count
	//   Tree:       w0=count, w1=root node index
	//   Iterator:   w0=iterable index, w1=member index, w2=string byte offset
	//   Function:   w0=code address or app symbol, w1=module index, w2=parameters index, bit0=isApp
	//   Module:     w0=code address, w1=namespace index, bit0=isLoaded
	//   Element:    w0=prev index, w1=next index, w2=value index
	//   TreeNode:   w0=parent index; w1..w3 hold left/right/key/value/links by node kind (see tree.go)
	//   Parameter:  w0=symbol, w1=default index, bit0=hasDefault, bit1=isGroup, bit2=isDictGroup
	//   Argument:   w0=symbol, w1=value index, bit0=hasName, bit1=isGroup
	//   Frame:      w0=return pc, w1=module index, w2=local namespace index
	//   Address:    variable: w0=namespace index, w1=symbol
	//               element:  w0=container List index, w1=element index
	//               key:      w0=container Dictionary index, w2=key object index
	//               module member: w0=module namespace index, w1=symbol
	//               bit0=isElementIndex, bit1=isDictKey, bit2=isModuleMember
	//   CodeAddress: w0=pc
	w0, w1, w2, w3 int32

	bit0, bit1, bit2 bool

	// bytes/blen hold a StringFragment's inline payload.
	bytes [stringFragmentCapacity]byte
	blen  uint8
}

func (e *entry) i32(n int) int32 {
	switch n {
	case 0:
		return e.w0
	case 1:
		return e.w1
	case 2:
		return e.w2
	default:
		return e.w3
	}
}

func (e *entry) setI32(n int, v int32) {
	switch n {
	case 0:
		e.w0 = v
	case 1:
		e.w1 = v
	case 2:
		e.w2 = v
	default:
		e.w3 = v
	}
}

func (e *entry) idx(n int) Index   { return Index(uint32(e.i32(n))) }
func (e *entry) setIdx(n int, i Index) { e.setI32(n, int32(uint32(i))) }
