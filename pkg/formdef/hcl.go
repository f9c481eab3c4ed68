package formdef

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formtabs"
)

// hclFile is the top-level structure of an HCL definition.
type hclFile struct {
	Fields []*hclField `hcl:"field,block"`
	Tabs   []*hclTabs  `hcl:"tabs,block"`
}

// hclTabs is a "tabs" block. Its label names the section.
type hclTabs struct {
	Section      string            `hcl:"section,label"`
	DefaultTab   *string           `hcl:"default_tab,optional"`
	Icons        map[string]string `hcl:"icons,optional"`
	Stretch      *bool             `hcl:"stretch,optional"`
	SuppressTabs *bool             `hcl:"suppress_tabs,optional"`
	CSSClass     *string           `hcl:"css_class,optional"`
	PaneCSSClass hcl.Expression    `hcl:"pane_css_class,optional"`
	Lazy         []string          `hcl:"lazy,optional"`
	Linkable     *bool             `hcl:"linkable,optional"`
	Fields       []*hclField       `hcl:"field,block"`
}

// hclField is a "field" block. Its label is the field name.
type hclField struct {
	Name        string            `hcl:"name,label"`
	Label       string            `hcl:"label,optional"`
	Type        string            `hcl:"type,optional"`
	Span        string            `hcl:"span,optional"`
	Tab         string            `hcl:"tab,optional"`
	Comment     string            `hcl:"comment,optional"`
	Placeholder string            `hcl:"placeholder,optional"`
	Default     *cty.Value        `hcl:"default,optional"`
	Required    bool              `hcl:"required,optional"`
	Disabled    bool              `hcl:"disabled,optional"`
	CSSClass    string            `hcl:"css_class,optional"`
	Attributes  map[string]string `hcl:"attributes,optional"`
}

func parseHCL(doc Document) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(doc.Data, doc.Path)
	if diags.HasErrors() {
		return nil, diagError(doc, "E002", diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diagError(doc, "E002", diags)
	}

	def := &Definition{}
	outside, err := convertHCLFields(doc, parsed.Fields, formtabs.SectionOutside)
	if err != nil {
		return nil, err
	}
	def.Outside.Fields = outside

	for _, block := range parsed.Tabs {
		section := formtabs.ParseSection(block.Section, formtabs.SectionPrimary)
		sd := def.section(section)
		if sd == nil {
			return nil, errors.New("E005").Wrap(fmt.Errorf(
				"%s: unknown section %q, want outside, primary or secondary", doc.Path, block.Section))
		}

		cfg, err := block.config(doc)
		if err != nil {
			return nil, err
		}
		fields, err := convertHCLFields(doc, block.Fields, section)
		if err != nil {
			return nil, err
		}
		sd.Options = cfg
		sd.Fields = append(sd.Fields, fields...)
	}

	return def, nil
}

func (b *hclTabs) config(doc Document) (formtabs.Config, error) {
	cfg := formtabs.Config{
		DefaultTab:   b.DefaultTab,
		Icons:        b.Icons,
		Stretch:      b.Stretch,
		SuppressTabs: b.SuppressTabs,
		CSSClass:     b.CSSClass,
		Lazy:         b.Lazy,
		Linkable:     b.Linkable,
	}
	if b.PaneCSSClass == nil {
		return cfg, nil
	}

	val, diags := b.PaneCSSClass.Value(nil)
	if diags.HasErrors() {
		return formtabs.Config{}, diagError(doc, "E005", diags)
	}
	if val.IsNull() {
		return cfg, nil
	}
	rule, err := paneClassFromCty(val)
	if err != nil {
		return formtabs.Config{}, rangeError(doc, "E005", b.PaneCSSClass.Range(), err.Error())
	}
	cfg.PaneCSSClass = &rule
	return cfg, nil
}

// paneClassFromCty accepts a string or an object/map of strings.
func paneClassFromCty(val cty.Value) (formtabs.PaneClassRule, error) {
	ty := val.Type()
	switch {
	case ty == cty.String:
		return formtabs.PaneClassAll(val.AsString()), nil
	case ty.IsObjectType() || ty.IsMapType():
		classes := map[string]string{}
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			if v.IsNull() || v.Type() != cty.String {
				return formtabs.PaneClassRule{}, fmt.Errorf("pane_css_class value for %q must be a string", k.AsString())
			}
			classes[k.AsString()] = v.AsString()
		}
		return formtabs.PaneClassMap(classes), nil
	}
	return formtabs.PaneClassRule{}, fmt.Errorf("pane_css_class must be a string or an object, got %s", ty.FriendlyName())
}

func convertHCLFields(doc Document, blocks []*hclField, section formtabs.Section) ([]*Field, error) {
	fields := make([]*Field, 0, len(blocks))
	for _, b := range blocks {
		if b.Name == "" {
			return nil, errors.New("E004").Wrap(fmt.Errorf("%s: field name is empty", doc.Path))
		}
		f := &Field{
			Name:        b.Name,
			Label:       b.Label,
			Type:        b.Type,
			Span:        b.Span,
			Tab:         b.Tab,
			Comment:     b.Comment,
			Placeholder: b.Placeholder,
			Required:    b.Required,
			Disabled:    b.Disabled,
			CSSClass:    b.CSSClass,
			Attributes:  b.Attributes,
			Section:     section,
		}
		if b.Default != nil {
			f.Default = ctyToGo(*b.Default)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ctyToGo converts a known cty value into plain Go values: string, bool,
// int64 or float64, []any and map[string]any.
func ctyToGo(val cty.Value) any {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString()
	case ty == cty.Bool:
		return val.True()
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			out = append(out, ctyToGo(v))
		}
		return out
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			out[k.AsString()] = ctyToGo(v)
		}
		return out
	}
	return nil
}

func diagError(doc Document, code string, diags hcl.Diagnostics) error {
	e := errors.New(code).Wrap(diags)
	for _, d := range diags {
		if d.Severity == hcl.DiagError && d.Subject != nil {
			e.WithLocation(doc.Path, d.Subject.Start.Line, d.Subject.Start.Column).WithSource(doc.Data)
			if d.Detail != "" {
				e.WithSuggestion(d.Detail)
			}
			break
		}
	}
	return e
}

func rangeError(doc Document, code string, r hcl.Range, msg string) error {
	return errors.New(code).
		Wrap(fmt.Errorf("%s", msg)).
		WithLocation(doc.Path, r.Start.Line, r.Start.Column).
		WithSource(doc.Data)
}
