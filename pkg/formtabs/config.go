package formtabs

import (
	"fmt"
	"slices"
)

// DefaultTabLabel is the tab used for fields added without one, unless
// Config.DefaultTab says otherwise.
const DefaultTabLabel = "Misc"

// Config holds the per-section options of a Tabs registry.
//
// Every field is optional. A nil field leaves the default in place; a
// non-nil field overrides it, even when it points at a zero value.
type Config struct {
	// DefaultTab is the label used by AddField when no tab is given.
	// Default: DefaultTabLabel.
	DefaultTab *string

	// Icons maps tab labels to icon identifiers.
	Icons map[string]string

	// Stretch asks the renderer to stretch the tabs to the bottom of the
	// page. Default: unset.
	Stretch *bool

	// SuppressTabs flattens the section into a plain list of fields.
	// Default: true for SectionOutside, false otherwise.
	SuppressTabs *bool

	// CSSClass is attached to the tab container.
	CSSClass *string

	// PaneCSSClass decides the class of each tab pane.
	PaneCSSClass *PaneClassRule

	// Lazy lists tab labels whose content is loaded on first activation.
	Lazy []string

	// Linkable gives each tab a URL fragment. Default: true.
	Linkable *bool
}

// String returns a pointer to s, for filling Config.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for filling Config.
func Bool(b bool) *bool { return &b }

// ConfigFromMap builds a Config from loosely typed options, such as the
// decoded "tabs" block of a form definition.
//
// Recognized keys are defaultTab, icons, stretch, suppressTabs, cssClass,
// paneCssClass, lazy and linkable. Other keys are ignored. A recognized
// key with a value of the wrong shape is an error.
func ConfigFromMap(options map[string]any) (Config, error) {
	var cfg Config

	if v, ok := options["defaultTab"]; ok {
		s, err := asString("defaultTab", v)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultTab = &s
	}

	if v, ok := options["icons"]; ok {
		m, err := asStringMap("icons", v)
		if err != nil {
			return Config{}, err
		}
		cfg.Icons = m
	}

	if v, ok := options["stretch"]; ok {
		b, err := asBool("stretch", v)
		if err != nil {
			return Config{}, err
		}
		cfg.Stretch = &b
	}

	if v, ok := options["suppressTabs"]; ok {
		b, err := asBool("suppressTabs", v)
		if err != nil {
			return Config{}, err
		}
		cfg.SuppressTabs = &b
	}

	if v, ok := options["cssClass"]; ok {
		s, err := asString("cssClass", v)
		if err != nil {
			return Config{}, err
		}
		cfg.CSSClass = &s
	}

	if v, ok := options["paneCssClass"]; ok {
		var rule PaneClassRule
		if s, isString := v.(string); isString {
			rule = PaneClassAll(s)
		} else {
			m, err := asStringMap("paneCssClass", v)
			if err != nil {
				return Config{}, err
			}
			rule = PaneClassMap(m)
		}
		cfg.PaneCSSClass = &rule
	}

	if v, ok := options["lazy"]; ok {
		list, err := asStringList("lazy", v)
		if err != nil {
			return Config{}, err
		}
		cfg.Lazy = list
	}

	if v, ok := options["linkable"]; ok {
		b, err := asBool("linkable", v)
		if err != nil {
			return Config{}, err
		}
		cfg.Linkable = &b
	}

	return cfg, nil
}

func asString(key string, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("formtabs: option %q must be a string, got %T", key, v)
}

func asBool(key string, v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("formtabs: option %q must be a boolean, got %T", key, v)
}

func asStringMap(key string, v any) (map[string]string, error) {
	out := make(map[string]string)
	switch m := v.(type) {
	case map[string]string:
		for k, s := range m {
			out[k] = s
		}
	case map[string]any:
		for k, raw := range m {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("formtabs: option %q: value for %q must be a string, got %T", key, k, raw)
			}
			out[k] = s
		}
	case map[any]any:
		for k, raw := range m {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("formtabs: option %q: value for %v must be a string, got %T", key, k, raw)
			}
			out[fmt.Sprint(k)] = s
		}
	case map[int]string:
		for k, s := range m {
			out[fmt.Sprint(k)] = s
		}
	default:
		return nil, fmt.Errorf("formtabs: option %q must be a mapping, got %T", key, v)
	}
	return out, nil
}

func asStringList(key string, v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return slices.Clone(l), nil
	case []any:
		out := make([]string, 0, len(l))
		for i, raw := range l {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("formtabs: option %q: item %d must be a string, got %T", key, i, raw)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("formtabs: option %q must be a list, got %T", key, v)
	}
}
