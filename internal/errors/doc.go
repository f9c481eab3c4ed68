// Package errors provides structured, actionable error messages for formtabs.
//
// Errors carry a code, a category, a short message and optionally the
// definition file location that caused them, the surrounding source lines
// and a hint.
//
// # Error Categories
//
//   - definition: form definition files that cannot be read or decoded
//   - lookup: unknown forms, sections or fields
//   - source: definition sources (directories, S3 buckets) that fail
//   - config: formtabs.json problems
//   - server: HTTP and WebSocket failures
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("E002").
//	    WithLocation("forms/post.yaml", 12, 5).
//	    WithSuggestion("Indent field options under the field name")
//
//	fmt.Println(err.Format())
//	// ERROR E002: Form definition could not be decoded
//	//
//	//   forms/post.yaml:12:5
//	//   ...
//
// The registry in pkg/formtabs never returns these errors. Missing data
// there is reported by zero values; these errors belong to the layers that
// load definitions and serve them.
package errors
