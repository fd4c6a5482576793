// Package hcldoc loads shading node definition documents written in HCL
// into the abstract model.
//
// A document declares node definitions and their implementations:
//
//	nodedef "ND_scale_float" {
//	    node = "scale"
//	    input "in" {
//	        type    = "float"
//	        default = 1.0
//	    }
//	    output "out" {
//	        type = "float"
//	    }
//	}
//
//	implementation "IM_scale_float_genmdl" {
//	    nodedef    = "ND_scale_float"
//	    sourcecode = "out = in * 2.0;"
//	}
//
// External implementations reference an MDL module instead:
//
//	implementation "IM_diffuse_genmdl" {
//	    nodedef  = "ND_diffuse"
//	    file     = "bsdf/diffuse.mdl"
//	    function = "diffuse_bsdf"
//	}
package hcldoc

import (
	"fmt"

	"github.com/gogpu/mdlgen"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

type hclDocument struct {
	NodeDefs        []*hclNodeDef        `hcl:"nodedef,block"`
	Implementations []*hclImplementation `hcl:"implementation,block"`
}

type hclNodeDef struct {
	Name    string     `hcl:"name,label"`
	Node    string     `hcl:"node,optional"`
	Inputs  []*hclPort `hcl:"input,block"`
	Outputs []*hclPort `hcl:"output,block"`
}

type hclPort struct {
	Name    string         `hcl:"name,label"`
	Type    string         `hcl:"type"`
	Uniform bool           `hcl:"uniform,optional"`
	Default hcl.Expression `hcl:"default,optional"`
}

type hclImplementation struct {
	Name       string `hcl:"name,label"`
	NodeDef    string `hcl:"nodedef"`
	SourceCode string `hcl:"sourcecode,optional"`
	File       string `hcl:"file,optional"`
	Function   string `hcl:"function,optional"`
	Target     string `hcl:"target,optional"`
}

// LoadFiles parses the given HCL files into one document. Later files may
// reference node definitions from earlier ones.
func LoadFiles(paths ...string) (*mdlgen.Document, error) {
	parser := hclparse.NewParser()
	doc := &mdlgen.Document{}
	for _, path := range paths {
		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", path, diags)
		}
		if err := decodeInto(doc, hclFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return doc, nil
}

// Parse decodes HCL source from memory. filename is used in diagnostics
// only.
func Parse(filename string, src []byte) (*mdlgen.Document, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}
	doc := &mdlgen.Document{}
	if err := decodeInto(doc, hclFile); err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}
	return doc, nil
}

func decodeInto(doc *mdlgen.Document, file *hcl.File) error {
	var parsed hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("decoding document: %w", diags)
	}
	for _, nd := range parsed.NodeDefs {
		converted, err := convertNodeDef(nd)
		if err != nil {
			return err
		}
		if err := doc.AddNodeDef(converted); err != nil {
			return err
		}
	}
	for _, im := range parsed.Implementations {
		converted, err := convertImplementation(im)
		if err != nil {
			return err
		}
		if err := doc.AddImplementation(converted); err != nil {
			return err
		}
	}
	return nil
}

func convertNodeDef(nd *hclNodeDef) (*mdlgen.NodeDef, error) {
	out := &mdlgen.NodeDef{Name: nd.Name, Node: nd.Node}
	for _, in := range nd.Inputs {
		t, dflt, err := convertPort(nd.Name, "input", in)
		if err != nil {
			return nil, err
		}
		out.Inputs = append(out.Inputs, mdlgen.InputDef{
			Name:    in.Name,
			Type:    t,
			Uniform: in.Uniform,
			Default: dflt,
		})
	}
	for _, o := range nd.Outputs {
		if o.Uniform {
			return nil, fmt.Errorf("nodedef %q: output %q cannot be uniform", nd.Name, o.Name)
		}
		t, dflt, err := convertPort(nd.Name, "output", o)
		if err != nil {
			return nil, err
		}
		out.Outputs = append(out.Outputs, mdlgen.OutputDef{
			Name:    o.Name,
			Type:    t,
			Default: dflt,
		})
	}
	return out, nil
}

func convertPort(defName, kind string, p *hclPort) (mdlgen.Type, cty.Value, error) {
	t, err := mdlgen.ParseType(p.Type)
	if err != nil {
		return mdlgen.TypeNone, cty.NilVal, fmt.Errorf("nodedef %q: %s %q: %w", defName, kind, p.Name, err)
	}
	dflt := cty.NilVal
	if p.Default != nil {
		v, diags := p.Default.Value(nil)
		if diags.HasErrors() {
			return mdlgen.TypeNone, cty.NilVal, fmt.Errorf("nodedef %q: %s %q: evaluating default: %w", defName, kind, p.Name, diags)
		}
		dflt = v
	}
	return t, dflt, nil
}

func convertImplementation(im *hclImplementation) (*mdlgen.Implementation, error) {
	hasSource := im.SourceCode != ""
	hasFile := im.File != ""
	switch {
	case hasSource && hasFile:
		return nil, fmt.Errorf("implementation %q: sourcecode and file are mutually exclusive", im.Name)
	case !hasSource && !hasFile:
		return nil, fmt.Errorf("implementation %q: one of sourcecode or file is required", im.Name)
	case hasFile && im.Function == "":
		return nil, fmt.Errorf("implementation %q: file requires a function name", im.Name)
	}
	return &mdlgen.Implementation{
		Name:        im.Name,
		NodeDefName: im.NodeDef,
		SourceCode:  im.SourceCode,
		File:        im.File,
		Function:    im.Function,
		Target:      im.Target,
	}, nil
}
