// Package mode defines visual modes and the registry the host selects them
// from.
package mode

import (
	"errors"
	"fmt"
	"slices"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
)

// Mode draws one visual. Setup runs once on activation, Draw once per frame.
// A mode must not keep drawables across frames: persistence goes through
// Canvas.CaptureFrame and Canvas.BlitLastFrame.
type Mode interface {
	Setup(c *canvas.Canvas, s *eyesy.State)
	Draw(c *canvas.Canvas, s *eyesy.State)
}

// Disposer is implemented by modes holding resources beyond a frame.
type Disposer interface {
	Dispose()
}

// Category groups modes; transitions pick their style from it.
type Category string

const (
	Scopes    Category = "scopes"
	Triggers  Category = "triggers"
	Font      Category = "font"
	Utilities Category = "utilities"
)

// Info describes a registered mode.
type Info struct {
	ID       string
	Name     string
	Category Category
	New      func() Mode
}

var (
	ErrDuplicate = errors.New("mode: duplicate id")
	ErrNotFound  = errors.New("mode: not found")
)

// Registry keeps modes in registration order.
type Registry struct {
	infos []Info
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Register adds info. Ids must be unique and constructors non-nil.
func (r *Registry) Register(info Info) error {
	if info.ID == "" || info.New == nil {
		return fmt.Errorf("mode: register %q: missing id or constructor", info.ID)
	}
	if _, ok := r.index[info.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, info.ID)
	}
	if info.Name == "" {
		info.Name = info.ID
	}
	r.index[info.ID] = len(r.infos)
	r.infos = append(r.infos, info)
	return nil
}

// Lookup returns the mode registered as id.
func (r *Registry) Lookup(id string) (Info, error) {
	i, ok := r.index[id]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.infos[i], nil
}

// List returns every mode in registration order.
func (r *Registry) List() []Info { return slices.Clone(r.infos) }

// Len is the number of registered modes.
func (r *Registry) Len() int { return len(r.infos) }

// ByCategory returns the modes of cat in registration order.
func (r *Registry) ByCategory(cat Category) []Info {
	var out []Info
	for _, info := range r.infos {
		if info.Category == cat {
			out = append(out, info)
		}
	}
	return out
}

// Step returns the mode delta positions after id, wrapping around. An
// unknown id steps from the first mode.
func (r *Registry) Step(id string, delta int) (Info, error) {
	n := len(r.infos)
	if n == 0 {
		return Info{}, ErrNotFound
	}
	i := r.index[id]
	return r.infos[((i+delta)%n+n)%n], nil
}
