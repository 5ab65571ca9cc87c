package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/portal"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/submission"
)

// ActionField names the submit button value that selects what a form post
// does.
const ActionField = "_action"

// Form actions.
const (
	ActionSubmit = "submit"
	ActionUpdate = "update"
	ActionUpload = "upload"
	ActionRemove = "remove"
	ActionReset  = "reset"
	ActionCancel = "cancel"
)

// AttachmentsField is the multipart field carrying uploaded photos.
const AttachmentsField = "attachments"

// ErrUnknownAction is returned for an unrecognised _action value.
var ErrUnknownAction = errors.New("server: unknown form action")

// registerForm mounts the page and its action endpoints. The page itself
// accepts every action through _action so a single HTML form can drive it.
func (s *Server) registerForm(mux *http.ServeMux, route portal.Route) {
	mux.HandleFunc("GET "+route.Path, s.handleFormPage(route))
	mux.HandleFunc("POST "+route.Path, s.handleFormAction(route, ""))
	mux.HandleFunc("POST "+route.Path+"/field", s.handleFormAction(route, ActionUpdate))
	mux.HandleFunc("POST "+route.Path+"/submit", s.handleFormAction(route, ActionSubmit))
	mux.HandleFunc("POST "+route.Path+"/reset", s.handleFormAction(route, ActionReset))
	mux.HandleFunc("POST "+route.Path+"/cancel", s.handleFormAction(route, ActionCancel))
	mux.HandleFunc("POST "+route.Path+"/files", s.handleFormAction(route, ActionUpload))
	mux.HandleFunc("POST "+route.Path+"/files/remove", s.handleFormAction(route, ActionRemove))
}

func (s *Server) handleFormPage(route portal.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := s.sessions.visitor(w, r)
		session, err := s.sessions.form(v, route.Form)
		if err != nil {
			s.logger.Error("open form session", zap.String("form", route.Form), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		state := s.formState(v, route, session)
		s.writeHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
			return s.renderer.Form(buf, s.chrome(route.Title, route.Path), state)
		})
	}
}

func (s *Server) formState(v *visitor, route portal.Route, session *portal.Session) render.FormState {
	ctrl := session.Controller
	store := session.Store()
	state := render.FormState{
		Path:        route.Path,
		Form:        session.Entry.Form,
		Values:      store.Snapshot(),
		Errors:      store.Errors(),
		State:       ctrl.State(),
		Toasts:      s.notifier.Active(v.scope(route.Form)),
		Attachments: ctrl.Attachments(),
		Hidden:      []render.HiddenField{render.CSRFToken(v.csrf)},
		Now:         s.now(),
	}
	if receipt, ok := ctrl.Receipt(); ok {
		state.Receipt = &receipt
	}
	return state
}

// handleFormAction applies a post and redirects back to the page. A fixed
// action overrides the _action value.
func (s *Server) handleFormAction(route portal.Route, fixed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.uploadLimit)
		if err := parsePost(r); err != nil {
			http.Error(w, "invalid form payload", http.StatusBadRequest)
			return
		}
		v, ok := s.sessions.lookup(r)
		if !ok || r.PostForm.Get(render.CSRFFieldName) != v.csrf {
			http.Error(w, "invalid session", http.StatusForbidden)
			return
		}
		session, err := s.sessions.form(v, route.Form)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		action := fixed
		if action == ActionRemove {
			action = ActionRemove + ":" + r.PostForm.Get("index")
		}
		if action == "" {
			action = r.PostForm.Get(ActionField)
		}
		if err := s.apply(r, session, action); err != nil {
			if errors.Is(err, ErrUnknownAction) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.logger.Debug("form action ignored",
				zap.String("form", route.Form),
				zap.String("action", action),
				zap.Error(err),
			)
		}
		http.Redirect(w, r, route.Path, http.StatusSeeOther)
	}
}

func (s *Server) apply(r *http.Request, session *portal.Session, action string) error {
	ctrl := session.Controller
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case ActionReset:
		return ctrl.Reset()
	case ActionCancel:
		ctrl.Cancel()
		return nil
	}

	if ctrl.State() != submission.StateSubmitting {
		applyValues(session.Store(), r.PostForm, s.logger)
	}

	switch name {
	case "", ActionSubmit:
		_, err := ctrl.Submit(r.Context())
		return err
	case ActionUpdate:
		return nil
	case ActionUpload:
		intake := ctrl.Attachments()
		if intake == nil {
			return errors.New("form takes no attachments")
		}
		files, err := uploadedFiles(r)
		if err != nil {
			return err
		}
		for _, rejection := range intake.AddFiles(files) {
			s.logger.Debug("attachment rejected",
				zap.String("name", rejection.Name),
				zap.String("reason", string(rejection.Reason)),
			)
		}
		return nil
	case ActionRemove:
		intake := ctrl.Attachments()
		if intake == nil {
			return errors.New("form takes no attachments")
		}
		index, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("remove index %q: %w", arg, err)
		}
		return intake.RemoveFile(index)
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// applyValues copies posted values into the store as one update. Only
// declared fields are read and only values that differ from the store before
// the post are written, so untouched fields keep their errors. Booleans take
// the last value to honour the hidden-false plus checkbox-true idiom; arrays
// take every value.
func applyValues(store *formstate.Store, posted url.Values, logger *zap.Logger) {
	current := store.Snapshot()
	changed := make(map[string]any)
	for _, field := range store.Form().Fields {
		raw, ok := posted[field.Name]
		if !ok || len(raw) == 0 {
			continue
		}
		var value any
		switch field.Type {
		case model.FieldTypeBoolean:
			value = raw[len(raw)-1]
		case model.FieldTypeArray:
			value = raw
		default:
			value = raw[0]
		}
		coerced, err := formstate.Coerce(field, value)
		if err != nil {
			logger.Debug("posted value ignored", zap.String("field", field.Name), zap.Error(err))
			continue
		}
		if reflect.DeepEqual(current[field.Name], coerced) {
			continue
		}
		changed[field.Name] = coerced
	}
	if len(changed) == 0 {
		return
	}
	if err := store.SetFields(changed); err != nil {
		logger.Debug("posted values ignored", zap.Error(err))
	}
}

func parsePost(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(8 << 20)
	}
	return r.ParseForm()
}

func uploadedFiles(r *http.Request) ([]attachments.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[AttachmentsField]
	files := make([]attachments.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", header.Filename, err)
		}
		files = append(files, attachments.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        data,
		})
	}
	return files, nil
}
