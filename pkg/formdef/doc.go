// Package formdef loads declarative form definitions into tab registries.
//
// A definition places each field in one of three sections: outside any
// tab strip, the primary tabs, or the secondary tabs. Each section may
// also carry tab options (icons, lazy tabs, pane classes, ...).
//
// # YAML and JSON
//
//	fields:
//	  name:
//	    label: Name
//	    span: left
//
//	tabs:
//	  stretch: true
//	  icons:
//	    Content: icon-file
//	  fields:
//	    body:
//	      type: richeditor
//	      tab: Content
//
//	secondaryTabs:
//	  fields:
//	    published_at:
//	      label: Published
//
// A field given as a plain string is shorthand for its label.
//
// # HCL
//
//	field "name" {
//	  label = "Name"
//	}
//
//	tabs "primary" {
//	  stretch = true
//	  icons   = { Content = "icon-file" }
//
//	  field "body" {
//	    type = "richeditor"
//	    tab  = "Content"
//	  }
//	}
//
// Field order in the file is the order fields are added to their tabs.
//
// # Sources
//
// Definitions are read by name from a Source: a directory (FSSource) or
// an S3 bucket (S3Source). The file extension selects the decoder.
package formdef
