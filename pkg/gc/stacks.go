package gc

import gclerrors "gcl_go/pkg/errors"

// The operand and continuation stacks are cons-lists held in two cells
// that New roots permanently, so everything pushed on them is reachable.

// Push pushes a value on the operand stack.
func (h *Heap) Push(o *Object) {
	old := h.operandStack
	h.SetRoot(&h.operandStack, h.NewCons(o, old))
}

// Pop pops the operand stack. Popping an empty stack is a fatal usage
// error.
func (h *Heap) Pop() *Object {
	if h.operandStack.class != ConsClass {
		fail(gclerrors.CodeStackUnderflow, "pop: operand stack underflow")
	}
	result := h.operandStack.head
	h.SetRoot(&h.operandStack, h.operandStack.tail)
	return result
}

// PushCont pushes a continuation on the continuation stack.
func (h *Heap) PushCont(o *Object) {
	old := h.contStack
	h.SetRoot(&h.contStack, h.NewCons(o, old))
}

// PopCont pops the continuation stack, or returns nil when it is empty.
func (h *Heap) PopCont() *Object {
	if h.contStack.class != ConsClass {
		return nil
	}
	result := h.contStack.head
	h.SetRoot(&h.contStack, h.contStack.tail)
	return result
}
