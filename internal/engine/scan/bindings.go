package scan

// generation is one assignment to a name. Every plain assignment and every
// += appends a fresh generation; nothing is overwritten, so findings made
// against an earlier generation keep their value and their usage window.
type generation struct {
	value *Value
	line  int
	// usages collects call-site references seen while this generation is
	// the current binding. Attached to the generation's finding, if any,
	// once the walk completes.
	usages []UsageLocation
	// findingIdx points into the walker's findings slice, -1 when this
	// generation produced no finding.
	findingIdx int
}

type binding struct {
	name string
	gens []*generation
}

func (b *binding) current() *generation {
	if len(b.gens) == 0 {
		return nil
	}
	return b.gens[len(b.gens)-1]
}

// bindingTable is the per-file symbol table. Scope is the whole file;
// lookups resolve to the most recent generation recorded so far. The walk
// visits nodes in source order, so that is the most recent binding strictly
// before the current position.
type bindingTable struct {
	vars map[string]*binding
}

func newBindingTable() *bindingTable {
	return &bindingTable{vars: make(map[string]*binding)}
}

// lookup returns the current generation for name, or nil when the name has
// no binding yet (a forward reference or an untracked identifier).
func (t *bindingTable) lookup(name string) *generation {
	b, ok := t.vars[name]
	if !ok {
		return nil
	}
	return b.current()
}

// assign records a new generation for name and returns it.
func (t *bindingTable) assign(name string, v *Value, line int) *generation {
	b, ok := t.vars[name]
	if !ok {
		b = &binding{name: name}
		t.vars[name] = b
	}
	gen := &generation{value: v, line: line, findingIdx: -1}
	b.gens = append(b.gens, gen)
	return gen
}
