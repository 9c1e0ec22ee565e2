// Package gc implements the interpreter's heap: a mark-sweep garbage
// collector whose mark phase uses Schorr-Waite pointer reversal, a dynamic
// root stack, and the built-in object classes of the language (nil, cons,
// atom, function).
package gc

import (
	"fmt"

	gclerrors "gcl_go/pkg/errors"
)

// DefaultCapacity is the live-object cap used when no explicit capacity is
// given.
const DefaultCapacity = 10000

// Stats tracks collector activity.
type Stats struct {
	LiveObjects      int
	Collections      int
	ObjectsReclaimed int
}

// Heap owns every object of one interpreter instance: the singly-linked
// list of all live allocations, the root stack, the nil singleton, and the
// two interpreter stacks (operand and continuation), which are ordinary
// cons-lists held in permanently rooted cells.
//
// A Heap is strictly single-threaded; callers never run concurrently.
type Heap struct {
	head        *Object
	roots       []**Object
	objectCount int
	capacity    int

	nilValue *Object

	// permanently rooted cells, installed by New
	nilRoot      *Object
	operandStack *Object
	contStack    *Object

	collections int
	reclaimed   int
}

// New creates a heap, registers the nil singleton, and installs the three
// permanent roots (nil, operand stack, continuation stack). A capacity of
// zero or less selects DefaultCapacity.
func New(capacity int) *Heap {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &Heap{capacity: capacity}

	h.nilValue = &Object{}
	h.Register(h.nilValue, NilClass)

	h.nilRoot = h.nilValue
	h.operandStack = h.nilValue
	h.contStack = h.nilValue
	h.PushRoot(&h.nilRoot)
	h.PushRoot(&h.operandStack)
	h.PushRoot(&h.contStack)
	return h
}

// Capacity returns the live-object cap.
func (h *Heap) Capacity() int {
	return h.capacity
}

// Register links a freshly allocated object into the heap under the given
// class. The object's children must already be heap-resident and rooted by
// the caller, because registration may trigger a collection before the new
// object is linked.
func (h *Heap) Register(o *Object, class *Class) {
	if h.objectCount == h.capacity {
		h.GC()
	}
	if h.objectCount == h.capacity {
		fail(gclerrors.CodeHeapExhausted, "register: object count limit reached (%d)", h.capacity)
	}
	h.objectCount++
	o.next = h.head
	o.marked = false
	o.class = class
	h.head = o
}

// GC runs a full collection: marks everything reachable from the root
// stack, then sweeps the heap list, disposing unmarked objects and
// clearing the marks of survivors.
func (h *Heap) GC() {
	for _, root := range h.roots {
		h.mark(*root)
	}
	link := &h.head
	for *link != nil {
		o := *link
		if o.marked {
			o.marked = false
			link = &o.next
		} else {
			*link = o.next
			h.objectCount--
			h.reclaimed++
			o.class.Dispose(o)
		}
	}
	h.collections++
}

// ResetStacks empties the operand and continuation stacks. The interpreter
// uses this to discard in-flight evaluation state after a step-limit stop,
// and the REPL after an unbound-variable fault.
func (h *Heap) ResetStacks() {
	h.operandStack = h.nilValue
	h.contStack = h.nilValue
}

// Stats returns a snapshot of collector counters.
func (h *Heap) Stats() Stats {
	return Stats{
		LiveObjects:      h.objectCount,
		Collections:      h.collections,
		ObjectsReclaimed: h.reclaimed,
	}
}

// CheckInvariants validates the heap's steady-state invariants: the object
// count matches the list length, no object is marked outside a collection,
// every root dereferences into the heap list, and the children of every
// object are themselves in the heap list. Intended for tests.
func (h *Heap) CheckInvariants() error {
	live := make(map[*Object]bool)
	n := 0
	for o := h.head; o != nil; o = o.next {
		if live[o] {
			return fmt.Errorf("heap list contains %s object twice", o.class.Name)
		}
		live[o] = true
		n++
		if o.marked {
			return fmt.Errorf("%s object is marked outside gc", o.class.Name)
		}
	}
	if n != h.objectCount {
		return fmt.Errorf("object count is %d but heap list has %d entries", h.objectCount, n)
	}
	for i, root := range h.roots {
		if !live[*root] {
			return fmt.Errorf("root %d does not point into the heap list", i)
		}
	}
	for o := h.head; o != nil; o = o.next {
		for _, c := range classChildren(o) {
			if !live[c] {
				return fmt.Errorf("%s object has a child outside the heap list", o.class.Name)
			}
		}
	}
	return nil
}

// classChildren lists the child references of an object in the order its
// class callbacks would visit them.
func classChildren(o *Object) []*Object {
	switch o.class {
	case ConsClass:
		return []*Object{o.head, o.tail}
	case FunctionClass:
		return []*Object{o.data}
	default:
		return nil
	}
}

// fail raises an unrecoverable interpreter fault.
func fail(code string, format string, args ...interface{}) {
	panic(gclerrors.Newf(code, format, args...))
}
