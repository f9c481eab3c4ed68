package formtabs

import "slices"

// Snapshot is a serializable copy of a registry: its options and its
// grouped view, tabs and fields in order.
type Snapshot[F any] struct {
	Section      Section           `json:"section"`
	DefaultTab   string            `json:"defaultTab"`
	SuppressTabs bool              `json:"suppressTabs"`
	Stretch      *bool             `json:"stretch,omitempty"`
	CSSClass     string            `json:"cssClass,omitempty"`
	PaneCSSClass *PaneClassRule    `json:"paneCssClass,omitempty"`
	Linkable     bool              `json:"linkable"`
	Icons        map[string]string `json:"icons,omitempty"`
	Lazy         []string          `json:"lazy,omitempty"`
	Tabs         []TabSnapshot[F]  `json:"tabs"`
}

// TabSnapshot is one tab of a Snapshot. Icon, Lazy and PaneClass are
// resolved for the tab so a reader needs no further lookups.
type TabSnapshot[F any] struct {
	Label     string             `json:"label"`
	Icon      string             `json:"icon,omitempty"`
	Lazy      bool               `json:"lazy,omitempty"`
	PaneClass string             `json:"paneClass,omitempty"`
	Fields    []FieldSnapshot[F] `json:"fields"`
}

// FieldSnapshot is one field of a TabSnapshot.
type FieldSnapshot[F any] struct {
	Name  string `json:"name"`
	Value F      `json:"value"`
}

// Snapshot copies t. Field values are copied shallowly.
func (t *Tabs[F]) Snapshot() Snapshot[F] {
	s := Snapshot[F]{
		Section:      t.section,
		DefaultTab:   t.defaultTab,
		SuppressTabs: t.suppressTabs,
		CSSClass:     t.cssClass,
		Linkable:     t.linkable,
		Icons:        t.Icons(),
		Lazy:         t.LazyTabs(),
		Tabs:         make([]TabSnapshot[F], 0, t.fields.Len()),
	}
	if stretch, ok := t.Stretch(); ok {
		s.Stretch = &stretch
	}
	if !t.paneClass.IsZero() {
		rule := t.paneClass
		s.PaneCSSClass = &rule
	}

	index := 0
	for label, fields := range t.fields.All() {
		tab := TabSnapshot[F]{
			Label:  label,
			Icon:   t.Icon(label),
			Lazy:   t.IsLazy(label),
			Fields: make([]FieldSnapshot[F], 0, fields.Len()),
		}
		tab.PaneClass, _ = t.PaneClass(index, label)
		for name, value := range fields.All() {
			tab.Fields = append(tab.Fields, FieldSnapshot[F]{Name: name, Value: value})
		}
		s.Tabs = append(s.Tabs, tab)
		index++
	}
	return s
}

// Config returns the options recorded in s.
func (s Snapshot[F]) Config() Config {
	cfg := Config{
		DefaultTab:   String(s.DefaultTab),
		SuppressTabs: Bool(s.SuppressTabs),
		CSSClass:     String(s.CSSClass),
		Linkable:     Bool(s.Linkable),
		Icons:        map[string]string{},
		Lazy:         slices.Clone(s.Lazy),
	}
	for k, v := range s.Icons {
		cfg.Icons[k] = v
	}
	if s.Stretch != nil {
		cfg.Stretch = Bool(*s.Stretch)
	}
	if s.PaneCSSClass != nil {
		rule := *s.PaneCSSClass
		cfg.PaneCSSClass = &rule
	}
	return cfg
}

// Restore rebuilds a registry from s by adding its fields in order.
// Tabs recorded without fields are restored as empty tabs.
func Restore[F any](s Snapshot[F]) *Tabs[F] {
	t := New[F](string(s.Section), s.Config())
	for _, tab := range s.Tabs {
		if len(tab.Fields) == 0 {
			t.Labels().Set(tab.Label, nil)
			continue
		}
		for _, f := range tab.Fields {
			t.AddField(f.Name, f.Value, tab.Label)
		}
	}
	return t
}
