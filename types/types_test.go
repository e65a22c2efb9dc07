package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func owning(name string) *Named {
	return &Named{Name: name, Ops: &Lifecycle{
		Copy:    &Operator{Name: name + ".copy"},
		Sink:    &Operator{Name: name + ".sink"},
		Destroy: &Operator{Name: name + ".destroy"},
	}}
}

func TestStripWrappers(t *testing.T) {
	file := owning("File")

	assert.Same(t, file, StripWrappers(file))
	assert.Same(t, file, StripWrappers(&SinkOf{Elem: file}))
	assert.Same(t, file, StripWrappers(&Ref{Elem: file}))
	assert.Same(t, file, StripWrappers(&Alias{Name: "Handle", Elem: file}))
	assert.Same(t, file, StripWrappers(&SinkOf{Elem: &Alias{Name: "Handle", Elem: file}}))
}

func TestStripWrappersInstance(t *testing.T) {
	box := owning("Box")

	// No specialized ops: the generic's operators apply.
	plain := &Instance{Generic: box, Args: []Type{I64}}
	assert.Same(t, box, StripWrappers(plain))

	// Specialized ops stick to the instance itself.
	inst := &Instance{Generic: box, Args: []Type{I64}, Ops: &Lifecycle{Destroy: &Operator{Name: "Box[I64].destroy"}}}
	assert.Same(t, inst, StripWrappers(inst))
}

func TestOwnsResource(t *testing.T) {
	file := owning("File")
	tag := &Named{Name: "Tag"}

	assert.True(t, OwnsResource(file))
	assert.True(t, OwnsResource(&SinkOf{Elem: file}))
	assert.True(t, OwnsResource(&Ref{Elem: file}))
	assert.False(t, OwnsResource(tag))
	assert.False(t, OwnsResource(I64))
	assert.False(t, OwnsResource(Bool))
	assert.False(t, OwnsResource(nil))

	// Destroy is the ownership marker; copy alone is not enough.
	copyOnly := &Named{Name: "Pt", Ops: &Lifecycle{Copy: &Operator{Name: "Pt.copy"}}}
	assert.False(t, OwnsResource(copyOnly))
}

func TestLifecycleOf(t *testing.T) {
	file := owning("File")

	lc := LifecycleOf(&SinkOf{Elem: file})
	assert.Same(t, file.Ops, lc)
	assert.Nil(t, LifecycleOf(I64))
	assert.Nil(t, LifecycleOf(&Named{Name: "Tag"}))
}

func TestTypeStrings(t *testing.T) {
	file := owning("File")

	assert.Equal(t, "I64", I64.String())
	assert.Equal(t, "Bool", Bool.String())
	assert.Equal(t, "sink File", (&SinkOf{Elem: file}).String())
	assert.Equal(t, "ref File", (&Ref{Elem: file}).String())
	assert.Equal(t, "Box[File, I64]", (&Instance{Generic: &Named{Name: "Box"}, Args: []Type{file, I64}}).String())
}

func TestFuncString(t *testing.T) {
	file := owning("File")
	f := &Func{
		Name: "transfer",
		Params: []Param{
			{Name: "src", Type: &SinkOf{Elem: file}, Mode: BySink},
			{Name: "dst", Type: &Ref{Elem: file}, Mode: ByMut},
			{Name: "n", Type: I64, Mode: ByValue},
		},
		Result: I64,
	}
	assert.Equal(t, "transfer(sink src: sink File, mut dst: ref File, n: I64): I64", f.String())
}
