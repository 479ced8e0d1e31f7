package mir

import (
	"fmt"

	"fortio.org/safecast"

	"coil/internal/source"
	"coil/internal/types"
)

// Module is a compilation unit: bodies plus the tables they reference.
type Module struct {
	Funcs  []*Body
	byName map[string]FuncID

	Files *source.FileTable
	Types *types.Interner
}

// NewModule creates an empty module with fresh side tables.
func NewModule() *Module {
	return &Module{
		byName: make(map[string]FuncID),
		Files:  source.NewFileTable(),
		Types:  types.NewInterner(),
	}
}

// AddFunc registers a body and returns its id. Duplicate names are an
// error: the drop shim convention ($drop suffix) relies on unique names.
func (m *Module) AddFunc(b *Body) (FuncID, error) {
	if b == nil {
		return NoFuncID, fmt.Errorf("mir: nil body")
	}
	if _, dup := m.byName[b.Name]; dup {
		return NoFuncID, fmt.Errorf("mir: duplicate function %q", b.Name)
	}
	n, err := safecast.Conv[int32](len(m.Funcs))
	if err != nil {
		return NoFuncID, fmt.Errorf("mir: funcs overflow: %w", err)
	}
	id := FuncID(n)
	m.Funcs = append(m.Funcs, b)
	if m.byName == nil {
		m.byName = make(map[string]FuncID)
	}
	m.byName[b.Name] = id
	return id, nil
}

// Func returns the body with the given id, nil when out of range.
func (m *Module) Func(id FuncID) *Body {
	if id < 0 || int(id) >= len(m.Funcs) {
		return nil
	}
	return m.Funcs[id]
}

// FuncByName looks a body up by name.
func (m *Module) FuncByName(name string) (*Body, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.Funcs[id], true
}

// Coroutines returns the ids of bodies still awaiting lowering.
func (m *Module) Coroutines() []FuncID {
	var out []FuncID
	for i, f := range m.Funcs {
		if f.IsCoroutine() {
			out = append(out, FuncID(int32(i))) // len already checked by AddFunc
		}
	}
	return out
}
