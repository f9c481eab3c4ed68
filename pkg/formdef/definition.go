package formdef

import (
	"path"
	"strings"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formtabs"
)

// Format is the encoding of a definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// extensions lists the supported file extensions in lookup order.
var extensions = []struct {
	ext    string
	format Format
}{
	{".yaml", FormatYAML},
	{".yml", FormatYAML},
	{".json", FormatYAML},
	{".hcl", FormatHCL},
}

// FormatFromPath returns the format implied by p's extension.
func FormatFromPath(p string) (Format, bool) {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range extensions {
		if e.ext == ext {
			return e.format, true
		}
	}
	return "", false
}

// trimExt strips a supported extension from p's base name.
func trimExt(p string) (string, bool) {
	base := path.Base(p)
	if _, ok := FormatFromPath(base); !ok {
		return "", false
	}
	return strings.TrimSuffix(base, path.Ext(base)), true
}

// Document is the raw content of one definition.
type Document struct {
	// Name is the form name, the file name without extension.
	Name string

	// Path is where the document came from, used in error locations.
	Path string

	Format Format
	Data   []byte
}

// SectionDef is the decoded content of one section.
type SectionDef struct {
	Options formtabs.Config
	Fields  []*Field
}

// Definition is a decoded form definition.
type Definition struct {
	Name      string
	Outside   SectionDef
	Primary   SectionDef
	Secondary SectionDef
}

// section returns the definition of s, or nil for unknown sections.
func (d *Definition) section(s formtabs.Section) *SectionDef {
	switch s {
	case formtabs.SectionOutside:
		return &d.Outside
	case formtabs.SectionPrimary:
		return &d.Primary
	case formtabs.SectionSecondary:
		return &d.Secondary
	}
	return nil
}

// Parse decodes doc according to its format.
func Parse(doc Document) (*Definition, error) {
	var (
		def *Definition
		err error
	)
	switch doc.Format {
	case FormatYAML:
		def, err = parseYAML(doc)
	case FormatHCL:
		def, err = parseHCL(doc)
	default:
		return nil, errors.New("E003").
			WithDetail("Unknown format " + string(doc.Format) + " for " + doc.Path + ".")
	}
	if err != nil {
		return nil, err
	}
	def.Name = doc.Name
	return def, nil
}
