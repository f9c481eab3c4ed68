// Package server exposes a form catalog over HTTP.
//
// All responses are JSON. Routes:
//
//	GET    /forms                          names of the forms in the source
//	GET    /forms/{form}                   snapshot of all three sections
//	GET    /forms/{form}/{section}         snapshot of one section
//	GET    /forms/{form}/{section}/view    default iteration view
//	DELETE /forms/{form}/fields/{field}    remove a field
//	POST   /forms/{form}/reload            reload from the source
//	GET    /forms/{form}/watch             WebSocket stream of snapshots
//	GET    /metrics                        Prometheus metrics
//
// The view of a section lists its tabs with their fields, or its fields
// directly when the section suppresses tabs. Errors are rendered as
//
//	{"error": {"code": "E020", "category": "lookup", "message": "Form not found", ...}}
//
// with 404 for unknown forms, sections and fields, 422 for definitions
// that fail to decode and 502 when the source is unreachable.
package server
