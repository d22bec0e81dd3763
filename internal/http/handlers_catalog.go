package http

import (
	"errors"
	"net/http"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/services"
)

// catalogRoutes describes one catalog kind: how records render as form
// fields and how a request body applies onto a record.
type catalogRoutes[T core.Record[T]] struct {
	kind   core.Kind
	slug   string
	title  string
	noun   string
	svc    *services.Catalog[T]
	fields func(rec T) []fieldView
	detail func(rec T) string
	// decode applies the sent fields onto base; absent fields keep base values.
	decode func(p *RequestBodyParser, base T) T
	// identity keeps only the id and preset flag of a stored record, so an
	// edit overwrites every other field.
	identity func(rec T) T
}

type catalogPage struct {
	Title     string
	Slug      string
	Noun      string
	Nav       string
	Defaults  []recordView
	Custom    []recordView
	NewFields []fieldView
}

type recordView struct {
	ID     string
	Name   string
	Detail string
	Preset bool
	Fields []fieldView
}

func mountCatalog[T core.Record[T]](s *Server, mux *http.ServeMux, c catalogRoutes[T]) {
	base := "/" + c.slug
	api := "/api/" + c.slug

	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		page, err := c.page(r)
		if err != nil {
			requestLog(r).ErrorContext(r.Context(), "Catalog list failed", applog.FieldKind, c.kind, applog.FieldError, err)
			InternalServerError("Could not load " + c.title).Write(w)
			return
		}
		s.render(w, r, "catalog.html", page)
	})
	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		c.add(s, w, r, false)
	})
	mux.HandleFunc("POST "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		c.edit(s, w, r, false)
	})
	mux.HandleFunc("POST "+base+"/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		c.remove(s, w, r, false)
	})
	mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		c.remove(s, w, r, false)
	})

	mux.HandleFunc("GET "+api, func(w http.ResponseWriter, r *http.Request) {
		recs, err := c.svc.List(r.Context())
		if err != nil {
			requestLog(r).ErrorContext(r.Context(), "Catalog list failed", applog.FieldKind, c.kind, applog.FieldError, err)
			writeJSONError(w, http.StatusInternalServerError, "list failed")
			return
		}
		writeJSON(w, http.StatusOK, recs)
	})
	mux.HandleFunc("GET "+api+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec, ok, err := c.svc.Get(r.Context(), r.PathValue("id"))
		switch {
		case err != nil:
			writeJSONError(w, http.StatusInternalServerError, "lookup failed")
		case !ok:
			writeJSONError(w, http.StatusNotFound, "not found")
		default:
			writeJSON(w, http.StatusOK, rec)
		}
	})
	mux.HandleFunc("POST "+api, func(w http.ResponseWriter, r *http.Request) {
		c.add(s, w, r, true)
	})
	mux.HandleFunc("PUT "+api+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		c.edit(s, w, r, true)
	})
	mux.HandleFunc("DELETE "+api+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		c.remove(s, w, r, true)
	})
}

func (c catalogRoutes[T]) page(r *http.Request) (catalogPage, error) {
	defaults, custom, err := c.svc.Partition(r.Context())
	if err != nil {
		return catalogPage{}, err
	}
	var zero T
	return catalogPage{
		Title:     c.title,
		Slug:      c.slug,
		Noun:      c.noun,
		Nav:       c.slug,
		Defaults:  c.views(defaults),
		Custom:    c.views(custom),
		NewFields: c.fields(zero),
	}, nil
}

func (c catalogRoutes[T]) views(recs []T) []recordView {
	out := make([]recordView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordView{
			ID:     rec.Key(),
			Name:   rec.Label(),
			Detail: c.detail(rec),
			Preset: rec.Preset(),
			Fields: c.fields(rec),
		})
	}
	return out
}

func (c catalogRoutes[T]) add(s *Server, w http.ResponseWriter, r *http.Request, api bool) {
	p, ok := c.parseBody(s, w, r, api)
	if !ok {
		return
	}
	var zero T
	rec, err := c.svc.Add(r.Context(), c.decode(p, zero))
	if errors.Is(err, core.ErrEmptyName) {
		c.decline(w, r, api)
		return
	}
	if err != nil {
		c.failed(s, w, r, api, core.OpCreated, err)
		return
	}
	if api {
		writeJSON(w, http.StatusCreated, rec)
		return
	}
	c.changed(s, w, r, core.OpCreated, rec.Key(), c.noun+" added")
}

func (c catalogRoutes[T]) edit(s *Server, w http.ResponseWriter, r *http.Request, api bool) {
	p, ok := c.parseBody(s, w, r, api)
	if !ok {
		return
	}
	id := r.PathValue("id")
	existing, found, err := c.svc.Get(r.Context(), id)
	if err != nil {
		c.failed(s, w, r, api, core.OpUpdated, err)
		return
	}
	if !found {
		// Editing a record that is gone leaves the collection unchanged.
		if api {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		c.changed(s, w, r, core.OpUpdated, id, "")
		return
	}

	updated := c.decode(p, c.identity(existing))
	if _, err := c.svc.Edit(r.Context(), updated); err != nil {
		if errors.Is(err, core.ErrEmptyName) {
			c.decline(w, r, api)
			return
		}
		c.failed(s, w, r, api, core.OpUpdated, err)
		return
	}
	if api {
		writeJSON(w, http.StatusOK, updated)
		return
	}
	c.changed(s, w, r, core.OpUpdated, id, c.noun+" updated")
}

func (c catalogRoutes[T]) remove(s *Server, w http.ResponseWriter, r *http.Request, api bool) {
	id := r.PathValue("id")
	if _, err := c.svc.Delete(r.Context(), id); err != nil {
		c.failed(s, w, r, api, core.OpDeleted, err)
		return
	}
	if api {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	c.changed(s, w, r, core.OpDeleted, id, c.noun+" deleted")
}

func (c catalogRoutes[T]) parseBody(s *Server, w http.ResponseWriter, r *http.Request, api bool) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		requestLog(r).WarnContext(r.Context(), "Invalid request body",
			applog.FieldKind, c.kind,
			applog.FieldError, err)
		if api {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
		} else {
			BadRequestError("Invalid request").Write(w)
		}
		return nil, false
	}
	return p, true
}

// decline answers a blank name: nothing changes and the UI shows nothing.
// Plain form posts go back to the list instead of landing on an empty page.
func (c catalogRoutes[T]) decline(w http.ResponseWriter, r *http.Request, api bool) {
	switch {
	case api:
		writeJSONError(w, http.StatusUnprocessableEntity, core.ErrEmptyName.Error())
	case !isHTMX(r):
		http.Redirect(w, r, "/"+c.slug, http.StatusSeeOther)
	default:
		DeclineResponse().Write(w)
	}
}

func (c catalogRoutes[T]) failed(s *Server, w http.ResponseWriter, r *http.Request, api bool, op core.ChangeOp, err error) {
	requestLog(r).ErrorContext(r.Context(), "Catalog mutation failed",
		applog.FieldKind, c.kind,
		applog.FieldOperation, op,
		applog.FieldRecordID, r.PathValue("id"),
		applog.FieldError, err)
	if api {
		writeJSONError(w, http.StatusInternalServerError, "storage error")
		return
	}
	InternalServerError("Could not save " + c.noun).Write(w)
}

// changed re-renders the catalog section for htmx and redirects plain forms.
func (c catalogRoutes[T]) changed(s *Server, w http.ResponseWriter, r *http.Request, op core.ChangeOp, id, msg string) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/"+c.slug, http.StatusSeeOther)
		return
	}
	page, err := c.page(r)
	if err != nil {
		c.failed(s, w, r, false, op, err)
		return
	}
	fragment, err := s.renderFragment(r, "catalog_section", page)
	if err != nil {
		InternalServerError("Could not render " + c.title).Write(w)
		return
	}
	resp := NewHTMXResponse().
		TriggerCatalogChanged(c.kind, op, id).
		TriggerFormReset().
		BodyHTML(fragment)
	if msg != "" {
		resp.TriggerSuccessNotification(msg)
	}
	resp.Write(w)
}
