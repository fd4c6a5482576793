package mdlgen

import (
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/zclconf/go-cty/cty"
)

// Value construction helpers for authoring defaults programmatically.
// Documents loaded from HCL produce the same cty representations.

// Float returns a float-typed default value.
func Float(v float32) cty.Value { return cty.NumberFloatVal(float64(v)) }

// Int returns an integer-typed default value.
func Int(v int) cty.Value { return cty.NumberIntVal(int64(v)) }

// Bool returns a boolean-typed default value.
func Bool(v bool) cty.Value { return cty.BoolVal(v) }

// String returns a string-typed default value. Also used for filenames.
func String(s string) cty.Value { return cty.StringVal(s) }

// Vector2 returns a vector2-typed default value.
func Vector2(v ms2.Vec) cty.Value {
	return cty.TupleVal([]cty.Value{Float(v.X), Float(v.Y)})
}

// Vector3 returns a vector3-typed default value. Color3 defaults use the
// same representation.
func Vector3(v ms3.Vec) cty.Value {
	return cty.TupleVal([]cty.Value{Float(v.X), Float(v.Y), Float(v.Z)})
}

// Vector4 returns a vector4-typed default value. Color4 defaults use the
// same representation.
func Vector4(x, y, z, w float32) cty.Value {
	return cty.TupleVal([]cty.Value{Float(x), Float(y), Float(z), Float(w)})
}
