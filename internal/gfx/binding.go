package gfx

// BindState is the write-binding state of a device.
type BindState uint8

const (
	// Unbound means drawing goes to the screen.
	Unbound BindState = iota
	// BoundForWrite means drawing goes to a render target, whose texture
	// must not be sampled until the device is unbound again.
	BoundForWrite
)

func (s BindState) String() string {
	if s == BoundForWrite {
		return "bound-for-write"
	}
	return "unbound"
}

// Binding tracks which render target, if any, is the write destination.
// Every device embeds one; Transition is the only way to change it.
type Binding struct {
	target *RenderTarget
}

// State returns the current state.
func (b *Binding) State() BindState {
	if b.target == nil {
		return Unbound
	}
	return BoundForWrite
}

// Target returns the bound render target, or nil when unbound.
func (b *Binding) Target() *RenderTarget { return b.target }

// Transition binds rt for writing, or unbinds when rt is nil or disposed.
// It returns the previously bound target.
func (b *Binding) Transition(rt *RenderTarget) (prev *RenderTarget) {
	prev = b.target
	if rt.Disposed() {
		rt = nil
	}
	b.target = rt
	return prev
}

// ReleaseFor unbinds when any of textures belongs to the bound target, and
// reports whether it did.
func (b *Binding) ReleaseFor(textures ...*Texture) bool {
	if b.target == nil {
		return false
	}
	for _, t := range textures {
		if t.RenderTarget() == b.target {
			b.Transition(nil)
			return true
		}
	}
	return false
}

// CheckSample returns ErrFeedbackLoop when m samples the bound target.
func (b *Binding) CheckSample(m *Material) error {
	if m.Samples(b.target) {
		return ErrFeedbackLoop
	}
	return nil
}
