package nav

import (
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/tree"
)

// Element is one step of a Location.
type Element struct {
	Name string
	ID   string
	Mode models.Mode
}

// Location is the path from a mode root to the current position. Each
// element carries its own mode; the last element decides the engine mode.
type Location []Element

// Mode returns the mode of the tail. An empty location is graph mode with
// no node chosen.
func (l Location) Mode() models.Mode {
	if len(l) == 0 {
		return models.ModeGraph
	}
	return l[len(l)-1].Mode
}

// Tail returns the last element.
func (l Location) Tail() (Element, bool) {
	if len(l) == 0 {
		return Element{}, false
	}
	return l[len(l)-1], true
}

// TailID returns the id of the last element, or "" when empty.
func (l Location) TailID() string {
	t, _ := l.Tail()
	return t.ID
}

// Names returns the display names in order.
func (l Location) Names() []string {
	names := make([]string, len(l))
	for i, el := range l {
		names[i] = el.Name
	}
	return names
}

// String renders "/a/b/c".
func (l Location) String() string {
	return tree.BuildPath(l.Names())
}

// Clone returns an independent copy.
func (l Location) Clone() Location {
	if l == nil {
		return nil
	}
	out := make(Location, len(l))
	copy(out, l)
	return out
}

func (l Location) push(el Element) Location {
	out := make(Location, len(l), len(l)+1)
	copy(out, l)
	return append(out, el)
}
