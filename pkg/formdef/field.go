package formdef

import "github.com/vango-dev/formtabs/pkg/formtabs"

// Field is one field of a form definition. It is the value stored in the
// tab registries built from a definition.
type Field struct {
	Name        string            `json:"name"`
	Label       string            `json:"label,omitempty"`
	Type        string            `json:"type,omitempty"`
	Span        string            `json:"span,omitempty"`
	Tab         string            `json:"tab,omitempty"`
	Comment     string            `json:"comment,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Default     any               `json:"default,omitempty"`
	Required    bool              `json:"required,omitempty"`
	Disabled    bool              `json:"disabled,omitempty"`
	CSSClass    string            `json:"cssClass,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Section     formtabs.Section  `json:"section"`
}
