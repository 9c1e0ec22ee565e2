package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gclerrors "gcl_go/pkg/errors"
)

func TestPushPopRoot(t *testing.T) {
	h := New(0)
	a := h.NewAtomString("a")
	h.PushRoot(&a)
	h.GC()
	assert.Equal(t, 2, h.Stats().LiveObjects)

	h.PopRoot()
	h.GC()
	assert.Equal(t, 1, h.Stats().LiveObjects)
}

func TestPopRootUnderflow(t *testing.T) {
	h := New(0)
	// A fresh heap carries exactly the three permanent roots.
	h.PopRoot()
	h.PopRoot()
	h.PopRoot()
	expectFault(t, gclerrors.CodeRootUnderflow, func() {
		h.PopRoot()
	})
}

func TestSetRootRebinds(t *testing.T) {
	h := New(0)
	cell := h.NewAtomString("old")
	h.PushRoot(&cell)
	old := cell

	h.SetRoot(&cell, h.NewAtomString("new"))
	h.GC()
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, "new", h.AtomText(cell))
	assert.Nil(t, old.chars, "old value became garbage and was disposed")
	assert.Equal(t, 2, h.Stats().LiveObjects)
}

func TestRootsObservedAtCollectionTime(t *testing.T) {
	h := New(0)
	cell := h.Nil()
	h.PushRoot(&cell)

	// Rebinding after the push is what the collector must honor.
	cell = h.NewCons(h.NewAtomString("late"), h.Nil())
	h.GC()
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, 3, h.Stats().LiveObjects, "value bound after the push survives")
}
