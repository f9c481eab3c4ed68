package formdef

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formtabs"
)

// yamlSections maps top-level keys to the section they fill.
var yamlSections = map[string]formtabs.Section{
	"fields":        formtabs.SectionOutside,
	"tabs":          formtabs.SectionPrimary,
	"secondaryTabs": formtabs.SectionSecondary,
}

// yamlField is the option block of one field.
type yamlField struct {
	Label       string            `yaml:"label"`
	Type        string            `yaml:"type"`
	Span        string            `yaml:"span"`
	Tab         string            `yaml:"tab"`
	Comment     string            `yaml:"comment"`
	Placeholder string            `yaml:"placeholder"`
	Default     any               `yaml:"default"`
	Required    bool              `yaml:"required"`
	Disabled    bool              `yaml:"disabled"`
	CSSClass    string            `yaml:"cssClass"`
	Attributes  map[string]string `yaml:"attributes"`
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func parseYAML(doc Document) (*Definition, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc.Data, &root); err != nil {
		e := errors.New("E002").Wrap(err)
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			e.WithLocation(doc.Path, line, 0).WithSource(doc.Data)
		}
		return nil, e
	}

	def := &Definition{}
	if len(root.Content) == 0 {
		return def, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, nodeError(doc, "E002", top, "the document must be a mapping")
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		section, ok := yamlSections[key.Value]
		if !ok {
			continue
		}
		sd := def.section(section)
		if section == formtabs.SectionOutside {
			// Top-level "fields" holds the outside fields directly.
			fields, err := decodeYAMLFields(doc, value, section)
			if err != nil {
				return nil, err
			}
			sd.Fields = fields
			continue
		}
		if err := decodeYAMLSection(doc, value, section, sd); err != nil {
			return nil, err
		}
	}

	return def, nil
}

// decodeYAMLSection decodes a tabs block: tab options plus a fields map.
func decodeYAMLSection(doc Document, node *yaml.Node, section formtabs.Section, sd *SectionDef) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return nodeError(doc, "E005", node, fmt.Sprintf("%s must be a mapping", section))
	}

	options := map[string]any{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "fields":
			fields, err := decodeYAMLFields(doc, value, section)
			if err != nil {
				return err
			}
			sd.Fields = fields
		case "paneCssClass":
			rule, err := decodeYAMLPaneClass(doc, value)
			if err != nil {
				return err
			}
			options[key.Value] = rule
		default:
			var v any
			if err := value.Decode(&v); err != nil {
				return nodeError(doc, "E005", value, err.Error())
			}
			options[key.Value] = v
		}
	}

	cfg, err := formtabs.ConfigFromMap(options)
	if err != nil {
		return nodeError(doc, "E005", node, err.Error())
	}
	sd.Options = cfg
	return nil
}

// decodeYAMLPaneClass keeps pane class keys as written, so "0" and 0 both
// address the first pane.
func decodeYAMLPaneClass(doc Document, node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return nil, nodeError(doc, "E005", value, "paneCssClass values must be strings")
			}
			out[key.Value] = value.Value
		}
		return out, nil
	}
	return nil, nodeError(doc, "E005", node, "paneCssClass must be a string or a mapping")
}

// decodeYAMLFields decodes an ordered mapping of field name to options.
func decodeYAMLFields(doc Document, node *yaml.Node, section formtabs.Section) ([]*Field, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(doc, "E004", node, "fields must be a mapping of field names to options")
	}

	fields := make([]*Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value == "" {
			return nil, nodeError(doc, "E004", key, "field name is empty")
		}

		field := &Field{Name: key.Value, Section: section}
		switch {
		case isNull(value):
		case value.Kind == yaml.ScalarNode:
			field.Label = value.Value
		case value.Kind == yaml.MappingNode:
			var opts yamlField
			if err := value.Decode(&opts); err != nil {
				return nil, nodeError(doc, "E004", value, err.Error())
			}
			field.Label = opts.Label
			field.Type = opts.Type
			field.Span = opts.Span
			field.Tab = opts.Tab
			field.Comment = opts.Comment
			field.Placeholder = opts.Placeholder
			field.Default = plainYAML(opts.Default)
			field.Required = opts.Required
			field.Disabled = opts.Disabled
			field.CSSClass = opts.CSSClass
			field.Attributes = opts.Attributes
		default:
			return nil, nodeError(doc, "E004", value, fmt.Sprintf("options of field %q must be a mapping", key.Value))
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// plainYAML converts decoded YAML into values encoding/json accepts:
// mappings with non-string keys become map[string]any keyed by the
// key's text.
func plainYAML(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = plainYAML(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[fmt.Sprint(k)] = plainYAML(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plainYAML(e)
		}
		return out
	}
	return v
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func nodeError(doc Document, code string, node *yaml.Node, msg string) error {
	return errors.New(code).
		Wrap(fmt.Errorf("%s", msg)).
		WithLocation(doc.Path, node.Line, node.Column).
		WithSource(doc.Data)
}
