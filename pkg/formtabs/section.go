package formtabs

import "strings"

// Section names the area of a form a Tabs registry renders into.
//
// Any string is a valid Section. The three constants are the values the
// registry treats specially; other labels are kept as given.
type Section string

const (
	// SectionOutside holds fields rendered outside any tab strip.
	SectionOutside Section = "outside"

	// SectionPrimary holds the primary tab strip.
	SectionPrimary Section = "primary"

	// SectionSecondary holds the secondary tab strip.
	SectionSecondary Section = "secondary"
)

// ParseSection lower-cases s. An empty result yields fallback.
func ParseSection(s string, fallback Section) Section {
	if lower := strings.ToLower(s); lower != "" {
		return Section(lower)
	}
	return fallback
}

// Known reports whether s is one of the three recognized sections.
func (s Section) Known() bool {
	switch s {
	case SectionOutside, SectionPrimary, SectionSecondary:
		return true
	}
	return false
}

func (s Section) String() string {
	return string(s)
}

// Sections lists the recognized sections in render order.
func Sections() []Section {
	return []Section{SectionOutside, SectionPrimary, SectionSecondary}
}
