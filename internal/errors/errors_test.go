package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "definition error",
			code:    "E002",
			wantMsg: "Form definition could not be decoded",
			wantCat: CategoryDefinition,
		},
		{
			name:    "lookup error",
			code:    "E020",
			wantMsg: "Form not found",
			wantCat: CategoryLookup,
		},
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryLookup, "form %q not found", "post")
	if err.Message != `form "post" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryLookup {
		t.Errorf("Category = %q, want %q", err.Category, CategoryLookup)
	}
}

func TestError_Error(t *testing.T) {
	err := New("E020")
	if got, want := err.Error(), "E020: Form not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E040").Wrap(fmt.Errorf("permission denied"))
	if got, want := wrapped.Error(), "E040: Definition source unavailable: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestError_WithLocation(t *testing.T) {
	src := []byte(`fields:
  title:
    label: Title
tabs:
  fields:
    body:
      type: richeditor
      tab: [Content
`)

	err := New("E002").WithLocation("forms/post.yaml", 8, 12).WithSource(src)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != "forms/post.yaml" || err.Location.Line != 8 || err.Location.Column != 12 {
		t.Errorf("Location = %+v", err.Location)
	}
	want := []string{"    body:", "      type: richeditor", "      tab: [Content", ""}
	if strings.Join(err.Context, "|") != strings.Join(want, "|") {
		t.Errorf("Context = %q, want %q", err.Context, want)
	}

	first := New("E002").WithLocation("x.yaml", 1, 0).WithSource(src)
	if len(first.Context) != 3 || first.Context[0] != "fields:" {
		t.Errorf("Context at line 1 = %q", first.Context)
	}

	unplaced := New("E002").WithSource(src)
	if unplaced.Context != nil {
		t.Errorf("Context without a location = %v", unplaced.Context)
	}
}

func TestError_Builders(t *testing.T) {
	err := New("E021").
		WithSuggestion(`did you mean "primary"?`).
		WithDetail("custom detail").
		WithExample("GET /forms/post/primary")

	if err.Suggestion != `did you mean "primary"?` {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Detail != "custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Example != "GET /forms/post/primary" {
		t.Errorf("Example = %q", err.Example)
	}
}

func TestError_WrapAndIs(t *testing.T) {
	inner := New("E001")
	outer := New("E040").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, New("E001")) {
		t.Error("errors.Is should match a wrapped error by code")
	}
	if stderrors.Is(outer, New("E020")) {
		t.Error("errors.Is matched an unrelated code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	fe := New("E001")
	if FromError(fe, "E002") != fe {
		t.Error("FromError should return *Error as-is")
	}
	if FromError(fmt.Errorf("loading: %w", fe), "E002") != fe {
		t.Error("FromError should unwrap to the *Error in the chain")
	}

	stdErr := fmt.Errorf("boom")
	result := FromError(stdErr, "E040")
	if result.Wrapped != stdErr || result.Code != "E040" {
		t.Errorf("FromError = %+v", result)
	}
}

func TestAsAndCodeOf(t *testing.T) {
	err := fmt.Errorf("loading: %w", New("E001"))
	fe, ok := As(err)
	if !ok || fe.Code != "E001" {
		t.Errorf("As = %v, %v", fe, ok)
	}
	if CodeOf(err) != "E001" {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("CodeOf plain error should be empty")
	}
	if CodeOf(nil) != "" {
		t.Error("CodeOf(nil) should be empty")
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil location", nil, ""},
		{"with column", &Location{File: "post.yaml", Line: 10, Column: 5}, "post.yaml:10:5"},
		{"without column", &Location{File: "post.yaml", Line: 10}, "post.yaml:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	content := "fields:\n  title:\n    label: Title\n    tab: [\n"

	err := New("E002").
		WithLocation("forms/post.yaml", 4, 10).
		WithSource([]byte(content)).
		Wrap(fmt.Errorf("unexpected end of flow sequence")).
		WithSuggestion("Close the bracket").
		WithExample("tab: Content")

	formatted := err.Format()

	for _, want := range []string{
		"E002",
		"Form definition could not be decoded",
		"forms/post.yaml:4:10",
		"    tab: [",
		"Cause: unexpected end of flow sequence",
		"Hint:",
		"Example:",
		"→",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() should contain %q:\n%s", want, formatted)
		}
	}
	if strings.Contains(formatted, "\x1b[") {
		t.Error("Format() should not contain escape codes with colors disabled")
	}
	if strings.Contains(formatted, "http") {
		t.Errorf("Format() should not link anywhere:\n%s", formatted)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E002")
	err.Location = &Location{File: "post.yaml", Line: 10, Column: 5}

	want := "post.yaml:10:5: E002: Form definition could not be decoded"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E020").WithSuggestion(`did you mean "post"?`).WithExample("GET /forms/post")
	err.Location = &Location{File: "post.yaml", Line: 10}

	var p Payload
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &p); jerr != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", jerr)
	}
	if p.Code != "E020" || p.Category != CategoryLookup || p.Message != "Form not found" {
		t.Errorf("payload = %+v", p)
	}
	if p.Suggestion != `did you mean "post"?` {
		t.Errorf("Suggestion = %q", p.Suggestion)
	}
	if p.Example != "GET /forms/post" {
		t.Errorf("Example = %q", p.Example)
	}
	if p.Location == nil || p.Location.Line != 10 {
		t.Errorf("Location = %+v", p.Location)
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) != len(registry) {
		t.Fatalf("GetAllCodes() returned %d codes, registry has %d", len(codes), len(registry))
	}
	if !slices.IsSorted(codes) {
		t.Errorf("GetAllCodes() = %v, want sorted", codes)
	}
	if !slices.Contains(codes, "E001") {
		t.Error("E001 should be in the codes list")
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("E001")
	if !ok {
		t.Fatal("E001 should exist")
	}
	if template.Message != "Form definition not found" {
		t.Errorf("Message = %q", template.Message)
	}

	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not exist")
	}
}

func TestFprint(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	var coded bytes.Buffer
	Fprint(&coded, New("E020").WithSuggestion(`did you mean "post"?`))
	if !strings.Contains(coded.String(), "ERROR E020: Form not found") {
		t.Errorf("Fprint coded error = %q", coded.String())
	}

	var plain bytes.Buffer
	Fprint(&plain, fmt.Errorf("boom"))
	if got := plain.String(); got != "\nERROR: boom\n\n" {
		t.Errorf("Fprint plain error = %q", got)
	}
}

func TestFprintJSON(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{"coded", New("E021"), "E021", "Unknown section"},
		{"wrapped coded", fmt.Errorf("loading: %w", New("E001")), "E001", "Form definition not found"},
		{"plain", fmt.Errorf("boom"), "E120", "Server failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FprintJSON(&buf, tt.err)

			out := buf.String()
			if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "\n") {
				t.Errorf("FprintJSON should write one line, got %q", out)
			}
			var p Payload
			if err := json.Unmarshal([]byte(out), &p); err != nil {
				t.Fatalf("FprintJSON output is not JSON: %v", err)
			}
			if p.Code != tt.wantCode || p.Message != tt.wantMsg {
				t.Errorf("payload = %+v, want code %s message %q", p, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	if got = wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}
