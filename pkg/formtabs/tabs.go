package formtabs

import (
	"iter"
	"maps"
	"slices"

	"github.com/vango-dev/formtabs/pkg/ordered"
)

// Tabs is the field-to-tab registry of one form section.
//
// F is the field value type. The registry stores values as given and
// never inspects or modifies them.
type Tabs[F any] struct {
	section      Section
	fields       *ordered.Map[string, *ordered.Map[string, F]]
	lazy         []string
	defaultTab   string
	icons        map[string]string
	stretch      *bool
	suppressTabs bool
	cssClass     string
	paneClass    PaneClassRule
	linkable     bool
}

// New creates an empty registry for section.
//
// The section is lower-cased; an empty section means SectionOutside.
// Unknown sections are accepted as given. Tabs are suppressed by default
// only in SectionOutside, and cfg is applied after that default, so
// cfg.SuppressTabs always has the last word.
func New[F any](section string, cfg Config) *Tabs[F] {
	t := &Tabs[F]{
		section:    ParseSection(section, SectionOutside),
		fields:     ordered.New[string, *ordered.Map[string, F]](0),
		defaultTab: DefaultTabLabel,
		icons:      map[string]string{},
		linkable:   true,
	}
	t.suppressTabs = t.section == SectionOutside
	t.apply(cfg)
	return t
}

func (t *Tabs[F]) apply(cfg Config) {
	if cfg.DefaultTab != nil {
		t.defaultTab = *cfg.DefaultTab
	}
	if cfg.Icons != nil {
		t.icons = maps.Clone(cfg.Icons)
	}
	if cfg.Stretch != nil {
		stretch := *cfg.Stretch
		t.stretch = &stretch
	}
	if cfg.SuppressTabs != nil {
		t.suppressTabs = *cfg.SuppressTabs
	}
	if cfg.CSSClass != nil {
		t.cssClass = *cfg.CSSClass
	}
	if cfg.PaneCSSClass != nil {
		t.paneClass = *cfg.PaneCSSClass
	}
	if cfg.Lazy != nil {
		t.lazy = slices.Clone(cfg.Lazy)
	}
	if cfg.Linkable != nil {
		t.linkable = *cfg.Linkable
	}
}

// AddField stores value under name in tab. An empty tab means the
// default tab. New tabs and new names are appended to the order; adding
// an existing name to the same tab replaces its value in place.
//
// AddField does not look at other tabs. A name already present in another
// tab stays there; call RemoveField first to move a field.
func (t *Tabs[F]) AddField(name string, value F, tab string) {
	if tab == "" {
		tab = t.defaultTab
	}
	fields, ok := t.fields.Get(tab)
	if !ok || fields == nil {
		fields = ordered.New[string, F](0)
		t.fields.Set(tab, fields)
	}
	fields.Set(name, value)
}

// RemoveField deletes the first field called name, scanning tabs in
// order. A tab left without fields is deleted too. It reports whether a
// field was removed.
func (t *Tabs[F]) RemoveField(name string) bool {
	for label, fields := range t.fields.All() {
		if !fields.Delete(name) {
			continue
		}
		if fields.Len() == 0 {
			t.fields.Delete(label)
		}
		return true
	}
	return false
}

// HasFields reports whether any tab exists.
func (t *Tabs[F]) HasFields() bool {
	return t.fields.Len() > 0
}

// Fields returns the fields grouped by tab, in order.
// The result is a copy; changing it does not affect the registry.
func (t *Tabs[F]) Fields() *ordered.Map[string, *ordered.Map[string, F]] {
	out := ordered.New[string, *ordered.Map[string, F]](t.fields.Len())
	for label, fields := range t.fields.All() {
		if fields == nil {
			fields = ordered.New[string, F](0)
		}
		out.Set(label, fields.Clone())
	}
	return out
}

// AllFields returns every field in one mapping, ignoring tabs.
//
// Tabs are merged in order. When two tabs hold the same name the later
// tab's value wins and the name keeps the position where it first
// appeared.
func (t *Tabs[F]) AllFields() *ordered.Map[string, F] {
	out := ordered.New[string, F](0)
	for _, fields := range t.fields.All() {
		for name, value := range fields.All() {
			out.Set(name, value)
		}
	}
	return out
}

// Field returns the first field called name, scanning tabs in order, and
// the tab that holds it.
func (t *Tabs[F]) Field(name string) (value F, tab string, ok bool) {
	for label, fields := range t.fields.All() {
		if v, found := fields.Get(name); found {
			return v, label, true
		}
	}
	return value, "", false
}

// Icon returns the icon registered for tab, or "" when there is none.
func (t *Tabs[F]) Icon(tab string) string {
	return t.icons[tab]
}

// PaneClass returns the CSS class for the pane at index with label.
// See PaneClassRule.Resolve.
func (t *Tabs[F]) PaneClass(index int, label string) (string, bool) {
	return t.paneClass.Resolve(index, label)
}

// IsLazy reports whether tab is flagged for lazy loading.
func (t *Tabs[F]) IsLazy(tab string) bool {
	return slices.Contains(t.lazy, tab)
}

// Section returns the section the registry renders into.
func (t *Tabs[F]) Section() Section { return t.section }

// DefaultTab returns the label used when AddField gets no tab.
func (t *Tabs[F]) DefaultTab() string { return t.defaultTab }

// SuppressTabs reports whether All yields fields instead of tabs.
func (t *Tabs[F]) SuppressTabs() bool { return t.suppressTabs }

// Stretch returns the stretch hint and whether it was configured.
func (t *Tabs[F]) Stretch() (stretch, ok bool) {
	if t.stretch == nil {
		return false, false
	}
	return *t.stretch, true
}

// CSSClass returns the tab container class.
func (t *Tabs[F]) CSSClass() string { return t.cssClass }

// PaneClassRule returns the configured pane class rule.
func (t *Tabs[F]) PaneClassRule() PaneClassRule { return t.paneClass }

// Linkable reports whether tabs get URL fragments.
func (t *Tabs[F]) Linkable() bool { return t.linkable }

// LazyTabs returns the labels flagged for lazy loading.
func (t *Tabs[F]) LazyTabs() []string { return slices.Clone(t.lazy) }

// Icons returns a copy of the tab icon mapping.
func (t *Tabs[F]) Icons() map[string]string { return maps.Clone(t.icons) }

// Entry is one item of the default view. In the grouped view Key is a tab
// label and Fields holds its fields. In the suppressed view Key is a
// field name and Field holds its value.
type Entry[F any] struct {
	Key     string
	Grouped bool
	Fields  *ordered.Map[string, F]
	Field   F
}

// All returns the view a renderer iterates: tabs in order, or every field
// flattened when tabs are suppressed.
//
// The sequence may be ranged over any number of times. Each pass reflects
// the registry as it is when the pass starts.
func (t *Tabs[F]) All() iter.Seq[Entry[F]] {
	return func(yield func(Entry[F]) bool) {
		if t.suppressTabs {
			for name, value := range t.AllFields().All() {
				if !yield(Entry[F]{Key: name, Field: value}) {
					return
				}
			}
			return
		}
		for label, fields := range t.Fields().All() {
			if !yield(Entry[F]{Key: label, Grouped: true, Fields: fields}) {
				return
			}
		}
	}
}
