package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/gogpu/mdlgen"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/zclconf/go-cty/cty"
)

// decimalDigits trades literal precision against emitted source size.
// Trailing zeros are trimmed after formatting.
const decimalDigits = 9

// Value formats an authored default value as an MDL literal of the given
// abstract type.
func Value(t mdlgen.Type, v cty.Value) (string, error) {
	if v == cty.NilVal {
		return "", fmt.Errorf("no value to format for type %s", t)
	}
	switch t {
	case mdlgen.TypeFloat:
		f, err := ctyFloat(v)
		if err != nil {
			return "", err
		}
		return string(appendFloat(nil, f)), nil
	case mdlgen.TypeInteger:
		if v.Type() != cty.Number {
			return "", fmt.Errorf("integer value has non-numeric type %s", v.Type().FriendlyName())
		}
		i, _ := v.AsBigFloat().Int64()
		return strconv.FormatInt(i, 10), nil
	case mdlgen.TypeBoolean:
		if v.Type() != cty.Bool {
			return "", fmt.Errorf("boolean value has type %s", v.Type().FriendlyName())
		}
		return strconv.FormatBool(v.True()), nil
	case mdlgen.TypeString:
		if v.Type() != cty.String {
			return "", fmt.Errorf("string value has type %s", v.Type().FriendlyName())
		}
		return strconv.Quote(v.AsString()), nil
	case mdlgen.TypeFilename:
		if v.Type() != cty.String {
			return "", fmt.Errorf("filename value has type %s", v.Type().FriendlyName())
		}
		return "texture_2d(" + strconv.Quote(v.AsString()) + ")", nil
	case mdlgen.TypeVector2:
		vec, err := ctyVec2(v)
		if err != nil {
			return "", err
		}
		arr := vec.Array()
		return vecLiteral("float2", arr[:]), nil
	case mdlgen.TypeVector3:
		vec, err := ctyVec3(v)
		if err != nil {
			return "", err
		}
		arr := vec.Array()
		return vecLiteral("float3", arr[:]), nil
	case mdlgen.TypeColor3:
		vec, err := ctyVec3(v)
		if err != nil {
			return "", err
		}
		arr := vec.Array()
		return vecLiteral("color", arr[:]), nil
	case mdlgen.TypeVector4:
		fs, err := ctyFloats(v, 4)
		if err != nil {
			return "", err
		}
		return vecLiteral("float4", fs), nil
	case mdlgen.TypeColor4:
		fs, err := ctyFloats(v, 4)
		if err != nil {
			return "", err
		}
		return vecLiteral("color4", fs), nil
	case mdlgen.TypeMatrix33:
		fs, err := ctyFloats(v, 9)
		if err != nil {
			return "", err
		}
		return vecLiteral("float3x3", fs), nil
	case mdlgen.TypeMatrix44:
		fs, err := ctyFloats(v, 16)
		if err != nil {
			return "", err
		}
		return vecLiteral("float4x4", fs), nil
	}
	return "", fmt.Errorf("cannot format a value of shading type %s", t)
}

// appendFloat formats a float32 in plain fixed-point notation with trailing
// zeros trimmed, e.g. 0.25 -> "0.25", 2 -> "2.0".
func appendFloat(b []byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := -1
	for i := start; i < len(b); i++ {
		if b[i] == '.' {
			idx = i
			break
		}
	}
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+1 && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func vecLiteral(ctor string, vals []float32) string {
	var sb strings.Builder
	sb.WriteString(ctor)
	sb.WriteByte('(')
	b := make([]byte, 0, 16)
	for i, v := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.Write(appendFloat(b[:0], v))
	}
	sb.WriteByte(')')
	return sb.String()
}

func ctyFloat(v cty.Value) (float32, error) {
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("numeric value has type %s", v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float32()
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not representable as an MDL float literal", v.AsBigFloat())
	}
	return f, nil
}

func ctyFloats(v cty.Value, n int) ([]float32, error) {
	if !v.Type().IsTupleType() && !v.Type().IsListType() {
		return nil, fmt.Errorf("expected a sequence of %d numbers, got %s", n, v.Type().FriendlyName())
	}
	if v.LengthInt() != n {
		return nil, fmt.Errorf("expected %d components, got %d", n, v.LengthInt())
	}
	fs := make([]float32, 0, n)
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		f, err := ctyFloat(el)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

func ctyVec2(v cty.Value) (ms2.Vec, error) {
	fs, err := ctyFloats(v, 2)
	if err != nil {
		return ms2.Vec{}, err
	}
	return ms2.Vec{X: fs[0], Y: fs[1]}, nil
}

func ctyVec3(v cty.Value) (ms3.Vec, error) {
	fs, err := ctyFloats(v, 3)
	if err != nil {
		return ms3.Vec{}, err
	}
	return ms3.Vec{X: fs[0], Y: fs[1], Z: fs[2]}, nil
}
