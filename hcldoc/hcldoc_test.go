package hcldoc_test

import (
	"os"
	"testing"

	"github.com/gogpu/mdlgen"
	"github.com/gogpu/mdlgen/hcldoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const docSrc = `
nodedef "ND_scale_color" {
    node = "scale"
    input "in" {
        type    = "color3"
        default = [1, 1, 1]
    }
    input "amount" {
        type    = "float"
        default = 0.5
        uniform = true
    }
    output "out" {
        type = "color3"
    }
}

implementation "IM_scale_color_genmdl" {
    nodedef    = "ND_scale_color"
    sourcecode = "out = in * amount;"
    target     = "genmdl"
}

implementation "IM_scale_color_ext" {
    nodedef  = "ND_scale_color"
    file     = "utils/scale.mdl"
    function = "scale_color"
}
`

func TestParseDocument(t *testing.T) {
	doc, err := hcldoc.Parse("doc.hcl", []byte(docSrc))
	require.NoError(t, err)

	nd := doc.NodeDef("ND_scale_color")
	require.NotNil(t, nd)
	assert.Equal(t, "scale", nd.Node)
	require.Len(t, nd.Inputs, 2)
	require.Len(t, nd.Outputs, 1)

	in := nd.Inputs[0]
	assert.Equal(t, "in", in.Name)
	assert.Equal(t, mdlgen.TypeColor3, in.Type)
	assert.False(t, in.Uniform)
	require.True(t, in.Default != cty.NilVal)
	assert.Equal(t, 3, in.Default.LengthInt())

	amount := nd.Inputs[1]
	assert.True(t, amount.Uniform)
	assert.True(t, amount.Default.RawEquals(cty.NumberFloatVal(0.5)))

	assert.True(t, nd.Outputs[0].Default == cty.NilVal)

	inline := doc.Implementation("IM_scale_color_genmdl")
	require.NotNil(t, inline)
	assert.True(t, inline.IsInline())
	assert.Equal(t, "out = in * amount;", inline.SourceCode)
	assert.Equal(t, "genmdl", inline.Target)
	assert.Same(t, nd, inline.NodeDef())

	ext := doc.Implementation("IM_scale_color_ext")
	require.NotNil(t, ext)
	assert.False(t, ext.IsInline())
	assert.Equal(t, "utils/scale.mdl", ext.File)
	assert.Equal(t, "scale_color", ext.Function)
}

func TestParseDocumentErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{
			name: "sourcecode and file are exclusive",
			src: `
nodedef "nd" {
    output "out" { type = "float" }
}
implementation "im" {
    nodedef    = "nd"
    sourcecode = "out = 1.0;"
    file       = "m.mdl"
    function   = "f"
}`,
		},
		{
			name: "implementation without source",
			src: `
nodedef "nd" {
    output "out" { type = "float" }
}
implementation "im" {
    nodedef = "nd"
}`,
		},
		{
			name: "file without function",
			src: `
nodedef "nd" {
    output "out" { type = "float" }
}
implementation "im" {
    nodedef = "nd"
    file    = "m.mdl"
}`,
		},
		{
			name: "unknown port type",
			src: `
nodedef "nd" {
    output "out" { type = "quaternion" }
}`,
		},
		{
			name: "uniform output",
			src: `
nodedef "nd" {
    output "out" {
        type    = "float"
        uniform = true
    }
}`,
		},
		{
			name: "dangling nodedef reference",
			src: `
implementation "im" {
    nodedef    = "missing"
    sourcecode = "out = 1.0;"
}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hcldoc.Parse("doc.hcl", []byte(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadFilesMergesDocuments(t *testing.T) {
	dir := t.TempDir()
	defs := dir + "/defs.hcl"
	impls := dir + "/impls.hcl"
	require.NoError(t, writeFile(defs, `
nodedef "nd" {
    output "out" { type = "float" }
}`))
	require.NoError(t, writeFile(impls, `
implementation "im" {
    nodedef    = "nd"
    sourcecode = "out = 1.0;"
}`))
	doc, err := hcldoc.LoadFiles(defs, impls)
	require.NoError(t, err)
	assert.NotNil(t, doc.Implementation("im"))
	assert.Same(t, doc.NodeDef("nd"), doc.Implementation("im").NodeDef())
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
