package interp

import (
	"strings"

	"gcl_go/pkg/gc"
)

// Format renders a value for REPL display: atoms print their text, nil
// prints as (), pairs print as (head tail). Like the evaluator, it avoids
// host recursion; the work list is an explicit slice so arbitrarily deep
// values cannot overflow the native stack.
func (in *Interp) Format(o *gc.Object) string {
	h := in.heap
	type item struct {
		obj *gc.Object
		lit string
	}
	var sb strings.Builder
	stack := []item{{obj: o}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.obj == nil {
			sb.WriteString(it.lit)
			continue
		}
		v := it.obj
		switch {
		case h.IsNil(v):
			sb.WriteString("()")
		case gc.IsAtom(v):
			sb.WriteString(h.AtomText(v))
		case gc.IsFunction(v):
			sb.WriteString("#<function>")
		default:
			head, tail := h.DestructCons(v)
			stack = append(stack,
				item{lit: ")"},
				item{obj: tail},
				item{lit: " "},
				item{obj: head},
				item{lit: "("},
			)
		}
	}
	return sb.String()
}
