package preset

import "github.com/demexconsole/console/internal/fixture"

// Group is a named, reusable fixture selection.
type Group struct {
	id        uint32
	name      string
	selection *fixture.Selection
}

// NewGroup builds a group over selection, defaulting its name to "Group <id>".
func NewGroup(id uint32, name string, selection *fixture.Selection) *Group {
	if name == "" {
		name = groupDefaultName(id)
	}
	return &Group{id: id, name: name, selection: selection}
}

func groupDefaultName(id uint32) string {
	return "Group " + uintToString(id)
}

func (g *Group) ID() uint32                    { return g.id }
func (g *Group) Name() string                  { return g.name }
func (g *Group) SetName(name string)           { g.name = name }
func (g *Group) Selection() *fixture.Selection { return g.selection }
