package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueResolve(t *testing.T) {
	t.Run("Literal", func(t *testing.T) {
		s, ok := literalValue("gpt-4o").Resolve()
		assert.True(t, ok)
		assert.Equal(t, "gpt-4o", s)
	})

	t.Run("Unresolved", func(t *testing.T) {
		_, ok := unresolvedValue().Resolve()
		assert.False(t, ok)
	})

	t.Run("TemplateWithSnapshot", func(t *testing.T) {
		v := &Value{Kind: KindTemplate, Parts: []Part{
			literalPart("gpt-"),
			variablePart("version", literalValue("4o")),
		}}
		s, ok := v.Resolve()
		assert.True(t, ok)
		assert.Equal(t, "gpt-4o", s)
	})

	t.Run("UnresolvedLinkPropagates", func(t *testing.T) {
		v := &Value{Kind: KindBinary, Parts: []Part{
			literalPart("gpt-"),
			variablePart("version", nil),
		}}
		_, ok := v.Resolve()
		assert.False(t, ok)
	})

	t.Run("NestedConstruction", func(t *testing.T) {
		inner := &Value{Kind: KindBinary, Parts: []Part{
			literalPart("gpt"),
			literalPart("-"),
		}}
		v := &Value{Kind: KindCompound, Parts: []Part{
			variablePart("prefix", inner),
			literalPart("4o"),
		}}
		s, ok := v.Resolve()
		assert.True(t, ok)
		assert.Equal(t, "gpt-4o", s)
	})
}

func TestValueComponents(t *testing.T) {
	v := &Value{Kind: KindTemplate, Parts: []Part{
		literalPart("gpt-"),
		variablePart("known", literalValue("4o")),
		variablePart("unknown", nil),
	}}

	assert.Equal(t, []string{"gpt-", "4o", "${unknown}"}, v.Components())
	assert.Equal(t, []string{"known", "unknown"}, v.VariableNames())
}

func TestSnapshotIsolation(t *testing.T) {
	// A part snapshots the referent at construction time; a later
	// generation for the same name must not change what the part resolves
	// to.
	table := newBindingTable()
	table.assign("a", literalValue("gpt"), 1)

	part := variablePart("a", table.lookup("a").value)
	table.assign("a", literalValue("claude"), 2)

	s, ok := part.resolve()
	assert.True(t, ok)
	assert.Equal(t, "gpt", s)
}

func TestBindingGenerations(t *testing.T) {
	table := newBindingTable()
	assert.Nil(t, table.lookup("m"))

	g1 := table.assign("m", literalValue("gpt-"), 1)
	g2 := table.assign("m", literalValue("gpt-4o"), 2)

	assert.NotSame(t, g1, g2)
	assert.Same(t, g2, table.lookup("m"))

	// Usage recorded against g1 stays on g1.
	g1.usages = append(g1.usages, UsageLocation{Line: 5})
	assert.Empty(t, g2.usages)
}
