// SPDX-License-Identifier: MIT

package dashboard

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	smslog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/producer"
)

// writePage renders c into a buffer first so a template failure still
// produces a clean 500.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logger := smslog.WithContext(r.Context(), s.logger)
		logger.Error().Err(err).Msg("page render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// render wraps body in the layout. A nil notice falls back to the pending
// flash cookie.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component, notice *Notice) {
	if notice == nil {
		notice = readFlash(w, r)
	}
	data := layoutData{Title: title, Lang: requestLanguage(r).String(), Toast: notice}
	s.writePage(w, r, status, layout(data, body))
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	logger := smslog.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("backend request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("backend rejected request")
	}
	s.render(w, r, status, "Error", errorPage(err.Error()), nil)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.queries.AllProducers(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "Producers", producersPage(list), nil)
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	form := newProducerForm("Create Producer", "/producers/create", defaultArgs())
	s.render(w, r, http.StatusOK, form.Title, formPage(form), nil)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, args := parseProducerForm("Create Producer", "/producers/create", r.PostForm)
	if !form.Valid() {
		s.render(w, r, http.StatusUnprocessableEntity, form.Title, formPage(form), nil)
		return
	}

	if _, err := s.queries.Create(r.Context(), args); err != nil {
		notice := failure(toastCreateFailed, err)
		s.render(w, r, statusOf(err), form.Title, formPage(form), &notice)
		return
	}
	http.Redirect(w, r, "/producers", http.StatusSeeOther)
}

func updateTitle(name string) string { return "Update Producer " + name }

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.queries.Producer(r.Context(), id, false)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	form := newProducerForm(updateTitle(p.Name), "/producers/"+id+"/update", p.Args())
	s.render(w, r, http.StatusOK, form.Title, formPage(form), nil)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.queries.Producer(r.Context(), id, false)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, args := parseProducerForm(updateTitle(p.Name), "/producers/"+id+"/update", r.PostForm)
	if !form.Valid() {
		s.render(w, r, http.StatusUnprocessableEntity, form.Title, formPage(form), nil)
		return
	}

	if _, err := s.queries.Update(r.Context(), id, args); err != nil {
		notice := failure(toastUpdateFailed, err)
		s.render(w, r, statusOf(err), form.Title, formPage(form), &notice)
		return
	}
	http.Redirect(w, r, "/producers/"+id, http.StatusSeeOther)
}

// loadProducer reads the producer and its progress in parallel.
func (s *Server) loadProducer(r *http.Request, id string, fresh bool) (producer.Producer, producer.Progress, error) {
	var (
		p        producer.Producer
		progress producer.Progress
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		p, err = s.queries.Producer(ctx, id, fresh)
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = s.queries.Progress(ctx, id, fresh)
		return err
	})
	err := g.Wait()
	return p, progress, err
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, progress, err := s.loadProducer(r, id, false)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	view := newProducerView(p, progress, requestLanguage(r), refreshRate(r, s.DefaultRefreshRate()))
	s.render(w, r, http.StatusOK, p.Name, producerPage(view), nil)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	back := "/producers/" + id

	switch chi.URLParam(r, "action") {
	case "generate":
		if _, err := s.queries.Generate(ctx, id); err != nil {
			writeFlash(w, failure(toastGenerateFailed, err))
		} else {
			writeFlash(w, success(toastGenerated))
		}
	case "send":
		if _, err := s.queries.Activate(ctx, id, s.cfg.WaitForSend); err != nil {
			writeFlash(w, failure(toastActivateFailed, err))
		} else {
			writeFlash(w, success(toastSent))
		}
	case "delete":
		if _, err := s.queries.Delete(ctx, id); err != nil {
			writeFlash(w, failure(toastDeleteFailed, err))
		} else {
			writeFlash(w, success(toastDeleted))
			back = "/producers"
		}
	default:
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) handleRefreshRate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	rate, ok := parseRefreshRate(r.PostForm.Get("refresh_rate"))
	if !ok {
		http.Error(w, "Refresh rate must be a number of seconds", http.StatusUnprocessableEntity)
		return
	}
	writeRefreshRate(w, rate)
	if r.Header.Get("X-Requested-With") == "fetch" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/producers/"+id, http.StatusSeeOther)
}
