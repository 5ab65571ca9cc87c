package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/portal"
	"github.com/goliatone/go-formflow/pkg/submission"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Errors model.FieldErrors `json:"errors,omitempty"`
}

type sessionResponse struct {
	Form   string             `json:"form"`
	State  submission.State   `json:"state"`
	Values model.Values       `json:"values"`
	Errors model.FieldErrors  `json:"errors"`
	Files  []attachments.File `json:"files,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("write json response", zap.Error(err))
	}
}

// handleAPISubmit runs one submission synchronously on a throwaway session:
// 422 with field errors, or 201 with the receipt once the remote settles.
func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("form")
	session, err := s.catalog.Open(key, portal.SessionOptions{})
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	defer session.Close()

	var payload map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid json body: %v", err)})
		return
	}
	if err := session.Store().SetFields(payload); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, formstate.ErrUnknownField) {
			status = http.StatusBadRequest
		}
		s.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	ctrl := session.Controller
	errs, err := ctrl.Submit(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	if len(errs) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: submission.DefaultFailureMessage, Errors: errs})
		return
	}
	if err := ctrl.Wait(r.Context()); err != nil {
		ctrl.Cancel()
		s.writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
		return
	}
	receipt, ok := ctrl.Receipt()
	if !ok {
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "submission failed"})
		return
	}
	s.writeJSON(w, http.StatusCreated, receipt)
}

// handleAPISession reports the caller's live form session.
func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.apiSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sessionSnapshot(session))
}

// handleAPIPatch applies an RFC 6902 patch to the caller's live form values.
func (s *Server) handleAPIPatch(w http.ResponseWriter, r *http.Request) {
	session, ok := s.apiSession(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := session.Store().ApplyPatch(body); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, formstate.ErrUnknownField) {
			status = http.StatusBadRequest
		}
		s.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, sessionSnapshot(session))
}

func (s *Server) apiSession(w http.ResponseWriter, r *http.Request) (*portal.Session, bool) {
	v, ok := s.sessions.lookup(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "no session"})
		return nil, false
	}
	key := r.PathValue("form")
	if _, err := s.catalog.Entry(key); err != nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return nil, false
	}
	session, err := s.sessions.form(v, key)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	}
	return session, true
}

func sessionSnapshot(session *portal.Session) sessionResponse {
	resp := sessionResponse{
		Form:   session.Entry.Key,
		State:  session.Controller.State(),
		Values: session.Store().Snapshot(),
		Errors: session.Store().Errors(),
	}
	if intake := session.Controller.Attachments(); intake != nil {
		resp.Files = intake.Files()
	}
	return resp
}

func (s *Server) handleAPIRoutes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"data": portal.Routes()})
}

// handleAPIDismiss removes one of the caller's toasts. Toasts of other
// visitors are reported as missing.
func (s *Server) handleAPIDismiss(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessions.lookup(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "no session"})
		return
	}
	if !s.notifier.DismissIf(r.PathValue("id"), v.ownsScope) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "toast not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(portal.OpenAPIDocument())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, ok := s.previews.Lookup(r.PathValue("handle"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(file.Data)
}
