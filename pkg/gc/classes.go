package gc

import (
	"bytes"

	gclerrors "gcl_go/pkg/errors"
)

// The built-in classes. NilClass and AtomClass are leaves; ConsClass
// traverses (head, tail) with a one-bit cursor; FunctionClass traverses
// its single data reference.
var (
	NilClass = &Class{
		Name:         "nil",
		StartMarking: leafStartMarking,
		MarkNext:     leafMarkNext,
		Dispose:      nilDispose,
	}

	ConsClass = &Class{
		Name:         "cons",
		StartMarking: consStartMarking,
		MarkNext:     consMarkNext,
		Dispose:      consDispose,
	}

	AtomClass = &Class{
		Name:         "atom",
		StartMarking: leafStartMarking,
		MarkNext:     leafMarkNext,
		Dispose:      atomDispose,
	}

	FunctionClass = &Class{
		Name:         "function",
		StartMarking: functionStartMarking,
		MarkNext:     functionMarkNext,
		Dispose:      functionDispose,
	}
)

func leafStartMarking(obj, parent **Object) bool {
	return false
}

// leafMarkNext is unreachable: the marker only calls MarkNext on an object
// it previously descended into, and leaves refuse the descent.
func leafMarkNext(obj, parent **Object) bool {
	fail(gclerrors.CodeTypeError, "mark_next called on a leaf object")
	return false
}

func nilDispose(o *Object) {
	// The nil singleton is permanently rooted; sweeping it means the
	// root stack was corrupted.
	fail(gclerrors.CodeTypeError, "nil: dispose called on the nil singleton")
}

func consStartMarking(obj, parent **Object) bool {
	c := *obj
	*obj = c.head
	c.head = *parent
	*parent = c
	c.tailIsNext = true
	return true
}

func consMarkNext(obj, parent **Object) bool {
	c := *parent
	if c.tailIsNext {
		grandparent := c.head
		c.head = *obj
		*obj = c.tail
		c.tail = grandparent
		c.tailIsNext = false
		return true
	}
	*parent = c.tail
	c.tail = *obj
	*obj = c
	return false
}

func consDispose(o *Object) {
	o.head = nil
	o.tail = nil
	o.next = nil
}

func functionStartMarking(obj, parent **Object) bool {
	f := *obj
	*obj = f.data
	f.data = *parent
	*parent = f
	return true
}

func functionMarkNext(obj, parent **Object) bool {
	f := *parent
	*parent = f.data
	f.data = *obj
	*obj = f
	return false
}

func functionDispose(o *Object) {
	o.apply = nil
	o.data = nil
	o.next = nil
}

func atomDispose(o *Object) {
	o.chars = nil
	o.next = nil
}

// Nil returns the nil singleton.
func (h *Heap) Nil() *Object {
	return h.nilValue
}

// IsNil checks if an object is the nil singleton.
func (h *Heap) IsNil(o *Object) bool {
	return o == h.nilValue
}

// NewCons allocates a cons cell. Both children are rooted across the
// registration so a collection triggered by it cannot dispose them.
func (h *Heap) NewCons(head, tail *Object) *Object {
	c := &Object{head: head, tail: tail}
	h.PushRoot(&head)
	h.PushRoot(&tail)
	h.Register(c, ConsClass)
	h.PopRoot()
	h.PopRoot()
	return c
}

// NewAtom allocates an atom owning the given character buffer.
func (h *Heap) NewAtom(chars []byte) *Object {
	a := &Object{chars: chars}
	h.Register(a, AtomClass)
	return a
}

// NewAtomString allocates an atom from a string.
func (h *Heap) NewAtomString(s string) *Object {
	return h.NewAtom([]byte(s))
}

// NewFunction allocates a function object bundling a native apply callback
// with a captured data reference.
func (h *Heap) NewFunction(apply ApplyFunc, data *Object) *Object {
	f := &Object{apply: apply, data: data}
	h.PushRoot(&data)
	h.Register(f, FunctionClass)
	h.PopRoot()
	return f
}

// DestructCons returns the head and tail of a cons cell.
func (h *Heap) DestructCons(o *Object) (head, tail *Object) {
	if o.class != ConsClass {
		fail(gclerrors.CodeTypeError, "destruct_cons: cons expected, got %s", o.class.Name)
	}
	return o.head, o.tail
}

// SetHead replaces the head of a cons cell with a heap-resident value.
func (h *Heap) SetHead(o *Object, value *Object) {
	if o.class != ConsClass {
		fail(gclerrors.CodeTypeError, "set_head: cons expected, got %s", o.class.Name)
	}
	o.head = value
}

// SetTail replaces the tail of a cons cell with a heap-resident value.
func (h *Heap) SetTail(o *Object, value *Object) {
	if o.class != ConsClass {
		fail(gclerrors.CodeTypeError, "set_tail: cons expected, got %s", o.class.Name)
	}
	o.tail = value
}

// AtomText returns the text of an atom.
func (h *Heap) AtomText(o *Object) string {
	if o.class != AtomClass {
		fail(gclerrors.CodeTypeError, "atom_text: atom expected, got %s", o.class.Name)
	}
	return string(o.chars)
}

// AtomEquals compares two atoms by content.
func (h *Heap) AtomEquals(a, b *Object) bool {
	if a == b {
		return true
	}
	if a.class != AtomClass || b.class != AtomClass {
		fail(gclerrors.CodeTypeError, "atom_equals: atoms expected")
	}
	return bytes.Equal(a.chars, b.chars)
}

// Assoc looks up an atom key in an association list of (key value) conses
// and returns the value, or nil when the key is absent.
func (h *Heap) Assoc(key, alist *Object) *Object {
	for {
		if alist == h.nilValue {
			return nil
		}
		entry, rest := h.DestructCons(alist)
		k, v := h.DestructCons(entry)
		if h.AtomEquals(key, k) {
			return v
		}
		alist = rest
	}
}

// MapCons prepends a (key value) entry to the association list held in a
// rooted cell.
func (h *Heap) MapCons(key, value *Object, cell **Object) {
	entry := h.NewCons(key, value)
	h.SetRoot(cell, h.NewCons(entry, *cell))
}

// Apply invokes a function object's native callback on its captured data.
func (h *Heap) Apply(f *Object) {
	if f.class != FunctionClass {
		fail(gclerrors.CodeTypeError, "apply: not a function")
	}
	apply, data := f.apply, f.data
	apply(h, data)
}
