package server

import (
	"bytes"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/chat"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/portal"
	"github.com/goliatone/go-formflow/pkg/render"
)

// chrome builds the header for a page, marking the active nav entry.
func (s *Server) chrome(title, path string) render.Chrome {
	routes := portal.Routes()
	nav := make([]render.NavLink, 0, len(routes))
	for _, route := range routes {
		nav = append(nav, render.NavLink{
			Path:   route.Path,
			Label:  model.DefaultLabeler(route.Name),
			Active: route.Path == path,
		})
	}
	return render.Chrome{Title: title, Path: path, Nav: nav}
}

// writeHTML renders into a buffer first so template failures become a 500
// instead of a truncated page.
func (s *Server) writeHTML(w http.ResponseWriter, status int, draw func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.logger.Error("render failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHome(route portal.Route) http.HandlerFunc {
	return s.handlePage(route, render.PageHome, func() any { return portal.HomeData() })
}

func (s *Server) handlePage(route portal.Route, page string, data func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
			return s.renderer.Page(buf, page, s.chrome(route.Title, route.Path), data())
		})
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeHTML(w, http.StatusNotFound, func(buf *bytes.Buffer) error {
		return s.renderer.Page(buf, render.PageNotFound, s.chrome("Page not found", r.URL.Path), nil)
	})
}

func (s *Server) handleChatPage(route portal.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := s.sessions.visitor(w, r)
		bot := s.sessions.bot(v)
		chrome := s.chrome(route.Title, route.Path)
		pending := bot.Pending()
		if pending {
			chrome.Refresh = 1
		}
		view := render.NewChatView(bot.Messages(), pending, v.csrf)
		s.writeHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
			return s.renderer.Page(buf, render.PageChat, chrome, view)
		})
	}
}

// handleChatPost is the form fallback for browsers without websockets.
func (s *Server) handleChatPost(route portal.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := s.sessions.lookup(r)
		if !ok || r.PostFormValue(render.CSRFFieldName) != v.csrf {
			http.Error(w, "invalid session", http.StatusForbidden)
			return
		}
		if _, err := s.sessions.bot(v).Send(r.Context(), r.PostFormValue("message")); err != nil &&
			!errors.Is(err, chat.ErrBlank) && !errors.Is(err, chat.ErrPending) {
			s.logger.Warn("chat send failed", zap.Error(err))
		}
		http.Redirect(w, r, route.Path, http.StatusSeeOther)
	}
}
