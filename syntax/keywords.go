package syntax

// reservedWords contains MDL keywords and reserved identifiers that may not
// be used as generated parameter or output names. Taken from the MDL
// specification's keyword and reserved-for-future-use lists.
var reservedWords = map[string]struct{}{
	"annotation":          {},
	"auto":                {},
	"bool":                {},
	"bool2":               {},
	"bool3":               {},
	"bool4":               {},
	"break":               {},
	"bsdf":                {},
	"bsdf_measurement":    {},
	"case":                {},
	"cast":                {},
	"color":               {},
	"color4":              {},
	"const":               {},
	"continue":            {},
	"default":             {},
	"do":                  {},
	"double":              {},
	"double2":             {},
	"double3":             {},
	"double4":             {},
	"double2x2":           {},
	"double3x3":           {},
	"double4x4":           {},
	"edf":                 {},
	"else":                {},
	"enum":                {},
	"export":              {},
	"extern":              {},
	"false":               {},
	"float":               {},
	"float2":              {},
	"float3":              {},
	"float4":              {},
	"float2x2":            {},
	"float3x3":            {},
	"float4x4":            {},
	"for":                 {},
	"hair_bsdf":           {},
	"if":                  {},
	"import":              {},
	"in":                  {},
	"int":                 {},
	"int2":                {},
	"int3":                {},
	"int4":                {},
	"intensity_mode":      {},
	"let":                 {},
	"light_profile":       {},
	"material":            {},
	"material_emission":   {},
	"material_geometry":   {},
	"material_surface":    {},
	"material_volume":     {},
	"mdl":                 {},
	"module":              {},
	"package":             {},
	"return":              {},
	"string":              {},
	"struct":              {},
	"switch":              {},
	"texture_2d":          {},
	"texture_3d":          {},
	"texture_cube":        {},
	"texture_ptex":        {},
	"true":                {},
	"typedef":             {},
	"uniform":             {},
	"using":               {},
	"varying":             {},
	"vdf":                 {},
	"while":               {},
}

// IsReservedWord reports whether name collides with an MDL keyword.
func IsReservedWord(name string) bool {
	_, reserved := reservedWords[name]
	return reserved
}
