package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gclerrors "gcl_go/pkg/errors"
)

// expectFault asserts that fn panics with a RuntimeError carrying code.
func expectFault(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a %s fault", code)
		fault, ok := r.(*gclerrors.RuntimeError)
		require.True(t, ok, "expected a RuntimeError, got %v", r)
		assert.Equal(t, code, fault.Code)
	}()
	fn()
}

// liveSet collects the identity of every object in the heap list.
func liveSet(h *Heap) map[*Object]bool {
	set := make(map[*Object]bool)
	for o := h.head; o != nil; o = o.next {
		set[o] = true
	}
	return set
}

func TestNewHeap(t *testing.T) {
	h := New(0)
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, 1, h.Stats().LiveObjects, "only the nil singleton is live")
	assert.Equal(t, DefaultCapacity, h.Capacity())

	small := New(64)
	assert.Equal(t, 64, small.Capacity())
}

func TestLoneAtomCollected(t *testing.T) {
	h := New(0)
	atom := h.NewAtomString("A")
	h.PushRoot(&atom)

	h.GC()
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, 2, h.Stats().LiveObjects, "rooted atom survives")

	h.PopRoot()
	h.GC()
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, 1, h.Stats().LiveObjects, "unrooted atom is collected")
}

func TestGCWithoutGarbageKeepsHeap(t *testing.T) {
	h := New(0)
	list := h.NewCons(h.NewAtomString("a"), h.Nil())
	h.PushRoot(&list)

	before := liveSet(h)
	countBefore := h.Stats().LiveObjects

	h.GC()
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, countBefore, h.Stats().LiveObjects)
	assert.Equal(t, before, liveSet(h), "no-garbage collection leaves the live set unchanged")
}

func TestGCIdempotent(t *testing.T) {
	h := New(0)
	keep := h.NewCons(h.NewAtomString("keep"), h.Nil())
	h.PushRoot(&keep)
	h.NewAtomString("garbage")

	h.GC()
	afterOne := liveSet(h)
	h.GC()
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, afterOne, liveSet(h), "gc twice equals gc once")
}

func TestCapBoundaryTriggersCollection(t *testing.T) {
	h := New(0)
	for i := 0; i < DefaultCapacity-1; i++ {
		h.NewCons(h.Nil(), h.Nil())
	}
	require.Equal(t, DefaultCapacity, h.Stats().LiveObjects)
	require.Equal(t, 0, h.Stats().Collections)

	// The next allocation hits the cap and must collect the 9,999
	// unrooted predecessors rather than fail.
	h.NewCons(h.Nil(), h.Nil())

	st := h.Stats()
	assert.Equal(t, 1, st.Collections)
	assert.Equal(t, 2, st.LiveObjects, "nil and the new cons")
	assert.Equal(t, DefaultCapacity-1, st.ObjectsReclaimed)
	require.NoError(t, h.CheckInvariants())
}

func TestHeapExhaustedWhenAllRooted(t *testing.T) {
	h := New(8)
	cells := make([]*Object, 7)
	for i := range cells {
		cells[i] = h.NewCons(h.Nil(), h.Nil())
		h.PushRoot(&cells[i])
	}
	require.Equal(t, 8, h.Stats().LiveObjects)

	expectFault(t, gclerrors.CodeHeapExhausted, func() {
		h.NewCons(h.Nil(), h.Nil())
	})
}

func TestRegisterCustomClass(t *testing.T) {
	disposed := 0
	leaf := &Class{
		Name:         "blob",
		StartMarking: leafStartMarking,
		MarkNext:     leafMarkNext,
		Dispose:      func(o *Object) { disposed++; o.next = nil },
	}

	h := New(0)
	o := &Object{}
	h.Register(o, leaf)
	h.PushRoot(&o)

	h.GC()
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, 0, disposed)

	h.PopRoot()
	h.GC()
	assert.Equal(t, 1, disposed, "unreachable object is disposed through its class")
	require.NoError(t, h.CheckInvariants())
}

func TestDisposeClearsPayload(t *testing.T) {
	h := New(0)
	atom := h.NewAtomString("x")
	c := h.NewCons(atom, h.Nil())

	h.GC()
	assert.Nil(t, c.head, "disposed cons payload is cleared")
	assert.Nil(t, c.tail)
	assert.Nil(t, atom.chars, "disposed atom buffer is released")
}

func TestStatsAccumulate(t *testing.T) {
	h := New(0)
	h.NewAtomString("a")
	h.NewAtomString("b")
	h.GC()
	h.GC()

	st := h.Stats()
	assert.Equal(t, 2, st.Collections)
	assert.Equal(t, 2, st.ObjectsReclaimed)
	assert.Equal(t, 1, st.LiveObjects)
}
