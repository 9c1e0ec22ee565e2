// Package interp evaluates expressions in heap-allocated continuation
// style: every pending computation is a function object on the
// continuation stack, and the trampoline pops and applies one at a time.
// The host stack never recurses during evaluation, so recursion depth in
// the interpreted language is bounded only by the heap.
package interp

import (
	"fmt"
	"io"

	gclerrors "gcl_go/pkg/errors"
	"gcl_go/pkg/gc"
	"gcl_go/pkg/parser"
)

// Interp binds a heap to an output writer and the bootstrap environment.
type Interp struct {
	heap *gc.Heap
	out  io.Writer

	// envs is (forms . env): the special-form table and the global
	// variable environment. Rooted for the interpreter's lifetime.
	envs *gc.Object

	stepLimit int
}

// New creates an interpreter over the given heap. Built-in forms (quote,
// fun) and functions (print_atom) are installed into a permanently rooted
// environment.
func New(h *gc.Heap, out io.Writer) *Interp {
	in := &Interp{heap: h, out: out}

	forms := h.Nil()
	h.PushRoot(&forms)
	defineBuiltin(h, "quote", quoteForm, &forms)
	defineBuiltin(h, "fun", funForm, &forms)

	env := h.Nil()
	h.PushRoot(&env)
	defineBuiltin(h, "print_atom", in.printAtom, &env)

	in.envs = h.NewCons(forms, env)
	h.PopRoot()
	h.PopRoot()
	h.PushRoot(&in.envs)
	return in
}

// SetStepLimit bounds the number of trampoline steps per Run call. Zero
// means unlimited.
func (in *Interp) SetStepLimit(n int) {
	in.stepLimit = n
}

// defineBuiltin binds name to a function object wrapping fn (with nil
// captured data) in the association list held in cell.
func defineBuiltin(h *gc.Heap, name string, fn gc.ApplyFunc, cell **gc.Object) {
	value := h.NewFunction(fn, h.Nil())
	h.PushRoot(&value)
	key := h.NewAtomString(name)
	h.PopRoot()
	h.MapCons(key, value, cell)
}

// Run evaluates a parsed expression to completion and returns its value.
// It schedules an eval continuation for the expression and then trampolines
// until the continuation stack drains.
func (in *Interp) Run(expr *gc.Object) (*gc.Object, error) {
	h := in.heap
	data := h.NewCons(in.envs, expr)
	cont := h.NewFunction(evalStep, data)
	h.PushCont(cont)

	steps := 0
	for {
		o := h.PopCont()
		if o == nil {
			break
		}
		steps++
		if in.stepLimit > 0 && steps > in.stepLimit {
			h.ResetStacks()
			return nil, fmt.Errorf("step limit reached after %d steps", in.stepLimit)
		}
		h.Apply(o)
	}
	return h.Pop(), nil
}

// EvalString parses and evaluates every expression in src, returning the
// value of the last one.
func (in *Interp) EvalString(src string) (*gc.Object, error) {
	h := in.heap
	p := parser.New(h, src)

	// The previous result must stay rooted while later expressions
	// allocate and possibly collect.
	last := h.Nil()
	h.PushRoot(&last)
	defer h.PopRoot()

	evaluated := false
	for {
		expr, err := p.Parse()
		if err == io.EOF {
			if !evaluated {
				return nil, fmt.Errorf("no expressions to evaluate")
			}
			return last, nil
		}
		if err != nil {
			return nil, err
		}
		result, err := in.Run(expr)
		if err != nil {
			return nil, err
		}
		h.SetRoot(&last, result)
		evaluated = true
	}
}

// evalStep is the eval continuation: data is (envs . expr) where envs is
// (forms . env). An atom looks itself up in env and pushes the binding; a
// pair schedules the argument, the function expression, and a pop-apply
// join, so that evaluation proceeds without host recursion.
func evalStep(h *gc.Heap, data *gc.Object) {
	envs, expr := h.DestructCons(data)
	forms, env := h.DestructCons(envs)

	switch expr.Class() {
	case gc.AtomClass:
		value := h.Assoc(expr, env)
		if value == nil {
			panic(gclerrors.Newf(gclerrors.CodeUnboundAtom, "eval: no such binding: %s", h.AtomText(expr)))
		}
		h.Push(value)
	case gc.ConsClass:
		fExpr, argExpr := h.DestructCons(expr)

		var form *gc.Object
		if fExpr.Class() == gc.AtomClass {
			form = h.Assoc(fExpr, forms)
		}
		if form != nil {
			h.PushRoot(&form)
			h.Push(h.NewCons(envs, argExpr))
			h.PopRoot()
			h.Apply(form)
		} else {
			h.PushRoot(&envs)
			h.PushRoot(&fExpr)
			h.PushRoot(&argExpr)

			function := h.NewFunction(popApply, h.Nil())
			h.PushCont(function)

			function = h.NewFunction(evalStep, h.NewCons(envs, fExpr))
			h.PushCont(function)

			function = h.NewFunction(evalStep, h.NewCons(envs, argExpr))
			h.PushCont(function)

			h.PopRoot()
			h.PopRoot()
			h.PopRoot()
		}
	default:
		panic(gclerrors.New(gclerrors.CodeTypeError, "eval: cannot evaluate: not an atom or a cons"))
	}
}

// popApply joins an application: the operand stack holds the argument
// below the evaluated function; pop the function and apply it.
func popApply(h *gc.Heap, data *gc.Object) {
	f := h.Pop()
	h.Apply(f)
}

// quoteForm implements (quote EXPR): push EXPR unevaluated.
func quoteForm(h *gc.Heap, data *gc.Object) {
	arg := h.Pop()
	_, body := h.DestructCons(arg)
	h.Push(body)
}

// funForm implements (fun (PARAM BODY)): capture the form argument, which
// is ((forms . env) . (PARAM BODY)), in a function object.
func funForm(h *gc.Heap, data *gc.Object) {
	arg := h.Pop()
	h.Push(h.NewFunction(funApply, arg))
}

// funApply applies a fun-made closure: extend the captured environment
// with the parameter bound to the argument, then schedule the body.
func funApply(h *gc.Heap, data *gc.Object) {
	arg := h.Pop()

	envs, expr := h.DestructCons(data)
	forms, env := h.DestructCons(envs)
	param, body := h.DestructCons(expr)

	if param.Class() != gc.AtomClass {
		panic(gclerrors.New(gclerrors.CodeTypeError, "fun: param should be an atom"))
	}

	newEnv := env
	h.PushRoot(&newEnv)
	h.PushRoot(&forms)
	h.PushRoot(&body)
	h.MapCons(param, arg, &newEnv)

	newEnvs := h.NewCons(forms, newEnv)
	newData := h.NewCons(newEnvs, body)
	h.PushCont(h.NewFunction(evalStep, newData))

	h.PopRoot()
	h.PopRoot()
	h.PopRoot()
}

// printAtom implements the print_atom built-in: print the atom argument's
// text and push nil as the result.
func (in *Interp) printAtom(h *gc.Heap, data *gc.Object) {
	arg := h.Pop()
	if arg.Class() != gc.AtomClass {
		panic(gclerrors.New(gclerrors.CodeTypeError, "print_atom: argument is not an atom"))
	}
	fmt.Fprint(in.out, h.AtomText(arg))
	h.Push(h.Nil())
}
