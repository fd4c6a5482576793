// Package syntax implements the MDL spellings of the abstract shading model:
// type names, literal formatting, identifier escaping and the source-code
// marker conventions used by generated call templates.
package syntax

import (
	"fmt"
	"strings"

	"github.com/gogpu/mdlgen"
)

const (
	// NamespacePrefix starts every fully qualified MDL name.
	NamespacePrefix = "::"
	// NamespaceSeparator joins MDL module path segments.
	NamespaceSeparator = "::"
	// ModuleSuffix is the file suffix required of external module references.
	ModuleSuffix = ".mdl"
	// UniformQualifier is the MDL parameter qualifier for uniform inputs.
	UniformQualifier = "uniform"
	// VersionSuffixMarker is the marker token substituted with the active
	// MDL version's filename suffix inside module references, e.g.
	// "materialx/stdlib_{{MDL_VERSION_SUFFIX}}.mdl".
	VersionSuffixMarker = "MDL_VERSION_SUFFIX"
)

var typeNames = map[mdlgen.Type]string{
	mdlgen.TypeFloat:         "float",
	mdlgen.TypeInteger:       "int",
	mdlgen.TypeBoolean:       "bool",
	mdlgen.TypeString:        "string",
	mdlgen.TypeFilename:      "texture_2d",
	mdlgen.TypeColor3:        "color",
	mdlgen.TypeColor4:        "color4",
	mdlgen.TypeVector2:       "float2",
	mdlgen.TypeVector3:       "float3",
	mdlgen.TypeVector4:       "float4",
	mdlgen.TypeMatrix33:      "float3x3",
	mdlgen.TypeMatrix44:      "float4x4",
	mdlgen.TypeSurfaceShader: "material",
	mdlgen.TypeMaterial:      "material",
	mdlgen.TypeBSDF:          "material",
	mdlgen.TypeEDF:           "material",
	mdlgen.TypeVDF:           "material",
}

var zeroValues = map[mdlgen.Type]string{
	mdlgen.TypeFloat:         "0.0",
	mdlgen.TypeInteger:       "0",
	mdlgen.TypeBoolean:       "false",
	mdlgen.TypeString:        `""`,
	mdlgen.TypeFilename:      "texture_2d()",
	mdlgen.TypeColor3:        "color(0.0)",
	mdlgen.TypeColor4:        "color4(0.0)",
	mdlgen.TypeVector2:       "float2(0.0)",
	mdlgen.TypeVector3:       "float3(0.0)",
	mdlgen.TypeVector4:       "float4(0.0)",
	mdlgen.TypeMatrix33:      "float3x3(1.0)",
	mdlgen.TypeMatrix44:      "float4x4(1.0)",
	mdlgen.TypeSurfaceShader: "material()",
	mdlgen.TypeMaterial:      "material()",
	mdlgen.TypeBSDF:          "material()",
	mdlgen.TypeEDF:           "material()",
	mdlgen.TypeVDF:           "material()",
}

// TypeName returns the MDL spelling of an abstract type.
func TypeName(t mdlgen.Type) (string, error) {
	name, ok := typeNames[t]
	if !ok {
		return "", fmt.Errorf("no MDL type name for shading type %s", t)
	}
	return name, nil
}

// ZeroValue returns the canonical MDL zero value for an abstract type,
// used to initialize outputs with no declared default.
func ZeroValue(t mdlgen.Type) (string, error) {
	zero, ok := zeroValues[t]
	if !ok {
		return "", fmt.Errorf("no MDL zero value for shading type %s", t)
	}
	return zero, nil
}

// Escape makes an identifier safe against MDL reserved words by appending
// an underscore. Non-colliding names pass through unchanged.
func Escape(name string) string {
	if IsReservedWord(name) {
		return name + "_"
	}
	return name
}

// ReplaceSourceCodeMarkers substitutes every "{{marker}}" token in source
// with the text returned by resolve. owner names the element the source
// belongs to and is used in error messages only.
func ReplaceSourceCodeMarkers(owner, source string, resolve func(marker string) (string, error)) (string, error) {
	var sb strings.Builder
	rest := source
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			return "", fmt.Errorf("unterminated source code marker in %q: %s", owner, rest[start:])
		}
		sb.WriteString(rest[:start])
		marker := rest[start+2 : start+end]
		repl, err := resolve(marker)
		if err != nil {
			return "", fmt.Errorf("resolving marker %q in %q: %w", marker, owner, err)
		}
		sb.WriteString(repl)
		rest = rest[start+end+2:]
	}
}
