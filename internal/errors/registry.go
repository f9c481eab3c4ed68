package errors

import "slices"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Definition Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryDefinition,
		Message:  "Form definition not found",
		Detail:   "No definition file with this name exists in the configured source.",
	},
	"E002": {
		Category: CategoryDefinition,
		Message:  "Form definition could not be decoded",
		Detail:   "The definition file is not valid YAML, JSON or HCL, or its structure does not match the expected layout.",
	},
	"E003": {
		Category: CategoryDefinition,
		Message:  "Unsupported definition format",
		Detail:   "Definition files must end in .yaml, .yml, .json or .hcl.",
	},
	"E004": {
		Category: CategoryDefinition,
		Message:  "Invalid field definition",
		Detail:   "Every field needs a non-empty name, and its options must be a mapping.",
	},
	"E005": {
		Category: CategoryDefinition,
		Message:  "Invalid tab options",
		Detail:   "A section's tab options (icons, lazy, paneCssClass, ...) have the wrong shape.",
	},

	// ============================================
	// Lookup Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryLookup,
		Message:  "Form not found",
		Detail:   "The catalog has no form with this name.",
	},
	"E021": {
		Category: CategoryLookup,
		Message:  "Unknown section",
		Detail:   "Sections are outside, primary and secondary.",
	},
	"E022": {
		Category: CategoryLookup,
		Message:  "Field not found",
		Detail:   "No section of the form holds a field with this name.",
	},

	// ============================================
	// Source Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategorySource,
		Message:  "Definition source unavailable",
		Detail:   "The definition directory or bucket could not be read.",
	},
	"E041": {
		Category: CategorySource,
		Message:  "No definition source configured",
		Detail:   "Set source.dir or source.bucket in formtabs.json, or pass --dir.",
	},

	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "formtabs.json was not found at the given path.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file is malformed or contains invalid values.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "Log level must be one of debug, info, warn or error.",
	},

	// ============================================
	// Server Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryServer,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"E121": {
		Category: CategoryServer,
		Message:  "WebSocket upgrade failed",
		Detail:   "The watch connection could not be upgraded to a WebSocket.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with missing or conflicting arguments.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
