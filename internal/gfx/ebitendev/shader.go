package ebitendev

// blendShader mixes two same-sized images. Colors are premultiplied, so
// scaling every channel by Opacity fades the result.
var blendShader = []byte(`//kage:unit pixels

package main

var Mix float
var Opacity float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	a := imageSrc0At(srcPos)
	b := imageSrc1At(srcPos)
	return mix(a, b, Mix) * Opacity
}
`)

// filterShader mirrors gfx.Filter.Shade. Kind carries the gfx.FilterKind
// value.
var filterShader = []byte(`//kage:unit pixels

package main

var Kind float
var Amount float
var Params vec3
var Opacity float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := imageSrc0At(srcPos)
	if c.a <= 0 || Amount <= 0 {
		return c * Opacity
	}
	rgb := c.rgb / c.a
	out := rgb
	uv := (srcPos - imageSrc0Origin()) / imageSrc0Size()
	if Kind == 1 {
		out = (out-0.5)*Params.y + 0.5 + Params.x
		l := dot(out, vec3(0.299, 0.587, 0.114))
		out = vec3(l) + (out-vec3(l))*Params.z
	} else if Kind == 2 {
		d := distance(uv, vec2(0.5)) * sqrt(2.0)
		k := 1.0
		if Params.y > 0 {
			k = 1 - smoothstep(Params.x, Params.x+Params.y, d)
		} else if d >= Params.x {
			k = 0
		}
		out *= k
	} else if Kind == 3 {
		out = 1 - out
	} else if Kind == 4 {
		n := max(Params.x, 2.0) - 1
		out = floor(out*n+0.5) / n
	}
	rgb = mix(rgb, clamp(out, 0, 1), Amount)
	return vec4(rgb*c.a, c.a) * Opacity
}
`)
