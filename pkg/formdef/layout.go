package formdef

import (
	"context"

	"github.com/vango-dev/formtabs/pkg/formtabs"
)

// Layout holds the three tab registries of one form.
type Layout struct {
	Name      string
	Outside   *formtabs.Tabs[*Field]
	Primary   *formtabs.Tabs[*Field]
	Secondary *formtabs.Tabs[*Field]
}

// Build creates the registries for def and adds every field to its
// section, in definition order.
func Build(def *Definition) *Layout {
	l := &Layout{
		Name:      def.Name,
		Outside:   formtabs.New[*Field](string(formtabs.SectionOutside), def.Outside.Options),
		Primary:   formtabs.New[*Field](string(formtabs.SectionPrimary), def.Primary.Options),
		Secondary: formtabs.New[*Field](string(formtabs.SectionSecondary), def.Secondary.Options),
	}
	for _, s := range formtabs.Sections() {
		tabs, _ := l.Section(s)
		for _, f := range def.section(s).Fields {
			tabs.AddField(f.Name, f, f.Tab)
		}
	}
	return l
}

// Load reads, decodes and builds the form called name from src.
func Load(ctx context.Context, src Source, name string) (*Layout, error) {
	doc, err := src.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	def, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	return Build(def), nil
}

// Section returns the registry for s.
func (l *Layout) Section(s formtabs.Section) (*formtabs.Tabs[*Field], bool) {
	switch s {
	case formtabs.SectionOutside:
		return l.Outside, true
	case formtabs.SectionPrimary:
		return l.Primary, true
	case formtabs.SectionSecondary:
		return l.Secondary, true
	}
	return nil, false
}

// HasFields reports whether any section holds a field.
func (l *Layout) HasFields() bool {
	return l.Outside.HasFields() || l.Primary.HasFields() || l.Secondary.HasFields()
}

// Field returns the first field called name, looking in the outside,
// primary and secondary sections in that order.
func (l *Layout) Field(name string) (*Field, formtabs.Section, bool) {
	for _, s := range formtabs.Sections() {
		tabs, _ := l.Section(s)
		if f, _, ok := tabs.Field(name); ok {
			return f, s, true
		}
	}
	return nil, "", false
}

// RemoveField removes the first field called name from whichever section
// holds it, looking in the outside, primary and secondary sections in
// that order. It reports whether a field was removed.
func (l *Layout) RemoveField(name string) bool {
	for _, s := range formtabs.Sections() {
		tabs, _ := l.Section(s)
		if tabs.RemoveField(name) {
			return true
		}
	}
	return false
}

// FieldNames returns every field name in render order.
func (l *Layout) FieldNames() []string {
	var names []string
	for _, s := range formtabs.Sections() {
		tabs, _ := l.Section(s)
		for _, fields := range tabs.Fields().All() {
			names = append(names, fields.Keys()...)
		}
	}
	return names
}

// Snapshot is a serializable copy of a Layout.
type Snapshot struct {
	Name      string                    `json:"name"`
	Outside   formtabs.Snapshot[*Field] `json:"outside"`
	Primary   formtabs.Snapshot[*Field] `json:"primary"`
	Secondary formtabs.Snapshot[*Field] `json:"secondary"`
}

// Snapshot copies l.
func (l *Layout) Snapshot() Snapshot {
	return Snapshot{
		Name:      l.Name,
		Outside:   l.Outside.Snapshot(),
		Primary:   l.Primary.Snapshot(),
		Secondary: l.Secondary.Snapshot(),
	}
}

// Section returns the snapshot of s.
func (s Snapshot) Section(sec formtabs.Section) (formtabs.Snapshot[*Field], bool) {
	switch sec {
	case formtabs.SectionOutside:
		return s.Outside, true
	case formtabs.SectionPrimary:
		return s.Primary, true
	case formtabs.SectionSecondary:
		return s.Secondary, true
	}
	return formtabs.Snapshot[*Field]{}, false
}
