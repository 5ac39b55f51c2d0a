package mode

// Builtin returns a registry holding every bundled mode, scopes first and
// utilities last.
func Builtin() *Registry {
	r := NewRegistry()
	for _, info := range []Info{
		{ID: "s-breathing-circles", Name: "Breathing Circles", Category: Scopes, New: NewBreathingCircles},
		{ID: "s-oscilloscope", Name: "Oscilloscope", Category: Scopes, New: NewOscilloscope},
		{ID: "s-horizontal-trails", Name: "Horizontal Trails", Category: Scopes, New: NewHorizontalTrails},
		{ID: "s-bezier-scope", Name: "Bezier Scope", Category: Scopes, New: NewBezierScope},
		{ID: "s-arcway", Name: "Arcway", Category: Scopes, New: NewArcway},
		{ID: "t-polygon-grid", Name: "Polygon Grid", Category: Triggers, New: NewPolygonGrid},
		{ID: "f-font-rain", Name: "Font Rain", Category: Font, New: NewFontRain},
		{ID: "u-qrcode", Name: "QR Code", Category: Utilities, New: NewQRCode},
	} {
		if err := r.Register(info); err != nil {
			panic(err)
		}
	}
	return r
}
