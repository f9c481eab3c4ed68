// Package formtabs groups a form's fields into named tabs.
//
// # Overview
//
// A form is rendered in up to three sections: fields placed outside any
// tab strip, a primary tab strip, and a secondary tab strip. Each section
// owns one Tabs registry. The registry keeps fields grouped by tab label,
// preserves declaration order at both levels, and carries the
// presentation hints a renderer needs (icons, CSS classes, lazy tabs).
//
// # Basic Usage
//
//	primary := formtabs.New[*formdef.Field]("primary", formtabs.Config{
//	    Icons: map[string]string{"Info": "icon-info"},
//	    Lazy:  []string{"History"},
//	})
//
//	primary.AddField("title", titleField, "Info")
//	primary.AddField("body", bodyField, "Info")
//	primary.AddField("notes", notesField, "") // goes to the default tab
//
//	for entry := range primary.All() {
//	    // one entry per tab, or one per field when tabs are suppressed
//	}
//
// # Suppressed Tabs
//
// The outside section suppresses tabs by default: All yields fields
// flattened across tabs instead of tabs. Config.SuppressTabs overrides
// the default for any section.
//
// # Two Levels of Access
//
// AddField and RemoveField keep the registry's invariants: missing tab
// labels fall back to the default tab, and a tab emptied by RemoveField
// disappears. Labels returns a lower-level Index that reads and replaces
// whole tabs directly and skips those rules.
//
// # Missing Data
//
// Lookups never fail. A missing icon, pane class, tab or field yields the
// zero value (and false where a second result is returned).
//
// A Tabs value is not safe for concurrent use.
package formtabs
