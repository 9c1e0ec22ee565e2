package gc

import gclerrors "gcl_go/pkg/errors"

// The root stack holds addresses of mutator-owned cells, not object
// references: mutators rebind their local cells across allocation sites,
// and the collector must see the value held at collection time. Every cell
// must hold a heap-resident reference for as long as its address is on the
// stack; pushing a root before any allocation that the cell's value must
// survive is the caller's responsibility and is not checked at runtime.

// PushRoot pushes the address of a cell onto the root stack.
func (h *Heap) PushRoot(cell **Object) {
	h.roots = append(h.roots, cell)
}

// PopRoot removes the most recently pushed root. Unbalanced pops are a
// fatal programming error.
func (h *Heap) PopRoot() {
	if len(h.roots) == 0 {
		fail(gclerrors.CodeRootUnderflow, "pop_root: root stack underflow")
	}
	h.roots[len(h.roots)-1] = nil
	h.roots = h.roots[:len(h.roots)-1]
}

// SetRoot rebinds a rooted cell to a new heap-resident value.
func (h *Heap) SetRoot(cell **Object, value *Object) {
	*cell = value
}
