// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/producer"
)

// producerID reads the path id and tags the request context with it.
func producerID(r *http.Request) (string, *http.Request) {
	id := chi.URLParam(r, "id")
	return id, r.WithContext(log.ContextWithProducerID(r.Context(), id))
}

func decodeArgs(w http.ResponseWriter, r *http.Request) (producer.Args, bool) {
	var args producer.Args
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return args, false
		}
		writeText(w, http.StatusBadRequest, textBadJSON)
		return args, false
	}
	return args, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []producer.Producer{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	args, ok := decodeArgs(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Create(r.Context(), args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, r := producerID(r)
	p, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, r := producerID(r)
	args, ok := decodeArgs(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Update(r.Context(), id, args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, r := producerID(r)
	n, err := s.svc.Generate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleSend starts sending. ?wait=true holds the request until every pending
// message was processed.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	id, r := producerID(r)
	wait := false
	if raw := r.URL.Query().Get("wait"); raw != "" {
		wait, _ = strconv.ParseBool(raw)
	}
	if wait {
		// A full run outlasts the server write timeout.
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	}
	msg, err := s.svc.Activate(r.Context(), id, wait)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, r := producerID(r)
	progress, err := s.svc.Progress(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	id, r := producerID(r)
	msgs, err := s.svc.Messages(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []producer.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, r := producerID(r)
	msg, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
