package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formdef"
	"github.com/vango-dev/formtabs/pkg/formtabs"
	"github.com/vango-dev/formtabs/pkg/middleware"
	"github.com/vango-dev/formtabs/pkg/ordered"
)

// formParam returns the {form} URL parameter and tags the span with it.
func formParam(r *http.Request) string {
	form := chi.URLParam(r, "form")
	if span := middleware.SpanFromContext(r.Context()); span != nil {
		span.SetAttributes(attribute.String("formtabs.form", form))
	}
	return form
}

// sectionParam parses the {section} URL parameter.
func sectionParam(r *http.Request) formtabs.Section {
	return formtabs.ParseSection(chi.URLParam(r, "section"), "")
}

type listResponse struct {
	Forms []string `json:"forms"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.catalog.Names(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, r, http.StatusOK, listResponse{Forms: names})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Get(r.Context(), formParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Section(r.Context(), formParam(r), sectionParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, snap)
}

// viewEntry is one item of a section's default iteration view: a tab
// with its fields, or a single field when tabs are suppressed.
type viewEntry struct {
	Tab    string                               `json:"tab,omitempty"`
	Fields *ordered.Map[string, *formdef.Field] `json:"fields,omitempty"`
	Name   string                               `json:"name,omitempty"`
	Field  *formdef.Field                       `json:"field,omitempty"`
}

type viewResponse struct {
	Form         string           `json:"form"`
	Section      formtabs.Section `json:"section"`
	SuppressTabs bool             `json:"suppressTabs"`
	Entries      []viewEntry      `json:"entries"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	form, section := formParam(r), sectionParam(r)
	resp := viewResponse{Form: form, Section: section, Entries: []viewEntry{}}

	err := s.catalog.View(r.Context(), form, func(l *formdef.Layout) error {
		tabs, ok := l.Section(section)
		if !ok {
			return errors.New("E021").
				WithDetail("Section " + string(section) + " does not exist.").
				WithSuggestion("Use one of outside, primary or secondary.").
				WithExample("GET /forms/" + form + "/primary/view")
		}
		resp.SuppressTabs = tabs.SuppressTabs()
		for entry := range tabs.All() {
			if entry.Grouped {
				resp.Entries = append(resp.Entries, viewEntry{Tab: entry.Key, Fields: entry.Fields})
			} else {
				resp.Entries = append(resp.Entries, viewEntry{Name: entry.Key, Field: entry.Field})
			}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleRemoveField(w http.ResponseWriter, r *http.Request) {
	form, field := formParam(r), chi.URLParam(r, "field")
	snap, err := s.catalog.RemoveField(r.Context(), form, field)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordFieldRemoved(form)
	}
	s.writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	form := formParam(r)
	snap, err := s.catalog.Reload(r.Context(), form)
	// Unknown names stay out of the form label.
	if s.metrics != nil && !unknownForm(err) {
		s.metrics.RecordReload(form, err)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, snap)
}

// unknownForm reports whether err says the form does not exist.
func unknownForm(err error) bool {
	switch errors.CodeOf(err) {
	case "E001", "E020":
		return true
	}
	return false
}
