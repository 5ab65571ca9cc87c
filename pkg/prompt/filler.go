package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/portal"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Scope is the toast scope used for terminal sessions.
const Scope = "terminal"

// AttachmentsMessage is the prompt shown on forms that accept photos.
const AttachmentsMessage = "Attach photos (comma-separated paths, blank to skip)"

// Option configures a Filler.
type Option func(*Filler)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithOutput sends toasts and summaries to out.
func WithOutput(out io.Writer) Option {
	return func(f *Filler) {
		if out != nil {
			f.printer = NewPrinter(out)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFileReader replaces os.ReadFile for attachment paths.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(f *Filler) {
		if read != nil {
			f.readFile = read
		}
	}
}

// Filler walks a form field by field and submits it.
type Filler struct {
	driver   Driver
	printer  *Printer
	logger   *zap.Logger
	readFile func(string) ([]byte, error)
}

// New constructs a Filler with the survey driver writing to stdout.
func New(opts ...Option) *Filler {
	f := &Filler{
		printer:  NewPrinter(os.Stdout),
		logger:   zap.NewNop(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill prompts for every visible field of the catalog form key, submits the
// answers and waits for the simulated remote. Fields the validator rejects on
// submit are asked again.
func (f *Filler) Fill(ctx context.Context, catalog *portal.Catalog, key string) (submission.Receipt, error) {
	if ctx == nil {
		return submission.Receipt{}, errors.New("prompt: context is required")
	}
	session, err := catalog.Open(key, portal.SessionOptions{Notifier: f.printer, Scope: Scope})
	if err != nil {
		return submission.Receipt{}, err
	}
	defer session.Close()

	form := session.Entry.Form
	ctrl := session.Controller
	f.printer.Title(form)

	pending := form.Fields
	askFiles := ctrl.Attachments() != nil
	for {
		for _, field := range pending {
			if visibility.IsHidden(form, session.Store().Snapshot(), field.Name) {
				continue
			}
			if err := f.ask(ctx, session, field); err != nil {
				return submission.Receipt{}, err
			}
		}
		if askFiles {
			if err := f.askAttachments(ctx, ctrl.Attachments()); err != nil {
				return submission.Receipt{}, err
			}
			askFiles = false
		}

		errs, err := ctrl.Submit(ctx)
		if err != nil {
			return submission.Receipt{}, fmt.Errorf("prompt: submit: %w", err)
		}
		if len(errs) == 0 {
			break
		}
		f.printer.FieldErrors(form, errs)
		pending = failing(form, errs)
	}

	f.logger.Debug("waiting for remote", zap.String("form", key))
	if err := ctrl.Wait(ctx); err != nil {
		ctrl.Cancel()
		return submission.Receipt{}, err
	}
	receipt, ok := ctrl.Receipt()
	if !ok {
		return submission.Receipt{}, ErrSubmissionFailed
	}
	f.printer.Receipt(form, receipt)
	return receipt, nil
}

// ask prompts until the answer passes the field's rules, then stores it.
func (f *Filler) ask(ctx context.Context, session *portal.Session, field model.Field) error {
	store := session.Store()
	check := func(value any) (any, error) {
		coerced, err := formstate.Coerce(field, value)
		if err != nil {
			return nil, err
		}
		return coerced, validateCandidate(session.Entry.Validator(), store.Snapshot(), field.Name, coerced)
	}

	for {
		value, err := f.answer(ctx, field, store.Value(field.Name), check)
		if err != nil {
			return err
		}
		coerced, err := check(value)
		if err != nil {
			if infoErr := f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", fieldLabel(field), err)); infoErr != nil {
				return infoErr
			}
			continue
		}
		return store.SetField(field.Name, coerced)
	}
}

func (f *Filler) answer(ctx context.Context, field model.Field, current any, check func(any) (any, error)) (any, error) {
	label := fieldLabel(field)
	help := field.Description

	switch {
	case field.Type == model.FieldTypeBoolean:
		return f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current == true, Help: help})
	case field.Type == model.FieldTypeArray && len(field.Options) > 0:
		options := optionLabels(field)
		indices, err := f.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  options,
			Defaults: selectedIndices(field, current),
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		values := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				values = append(values, field.Options[idx].Value)
			}
		}
		return values, nil
	case len(field.Options) > 0:
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      optionLabels(field),
			DefaultIndex: optionIndex(field, current),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx].Value, nil
	case strings.EqualFold(field.Metadata["widget"], "textarea"):
		return f.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: stringValue(current), Help: help})
	}
	return f.driver.Input(ctx, InputConfig{
		Message: label,
		Default: stringValue(current),
		Help:    inputHelp(field),
		Validator: func(text string) error {
			_, err := check(text)
			return err
		},
	})
}

func (f *Filler) askAttachments(ctx context.Context, intake *attachments.Intake) error {
	raw, err := f.driver.Input(ctx, InputConfig{
		Message: AttachmentsMessage,
		Help:    fmt.Sprintf("Up to %d images", intake.MaxFiles()),
	})
	if err != nil {
		return err
	}
	var files []attachments.File
	for _, path := range strings.Split(raw, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := f.readFile(path)
		if err != nil {
			if infoErr := f.driver.Info(ctx, fmt.Sprintf("Skipped %s: %v", path, err)); infoErr != nil {
				return infoErr
			}
			continue
		}
		files = append(files, attachments.File{
			Name:        filepath.Base(path),
			ContentType: detectContentType(path, data),
			Size:        int64(len(data)),
			Data:        data,
		})
	}
	for _, rejection := range intake.AddFiles(files) {
		if err := f.driver.Info(ctx, fmt.Sprintf("Skipped %s: %s", rejection.Name, rejectionText(rejection.Reason))); err != nil {
			return err
		}
	}
	return nil
}

func validateCandidate(v *validation.Validator, values model.Values, name string, value any) error {
	values[name] = value
	if msg, failed := v.ValidateField(name, values); failed {
		return errors.New(msg)
	}
	return nil
}

func failing(form model.FormModel, errs model.FieldErrors) []model.Field {
	var out []model.Field
	for _, field := range form.Fields {
		if _, ok := errs[field.Name]; ok {
			out = append(out, field)
		}
	}
	return out
}

func fieldLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return model.DefaultLabeler(field.Name)
}

func inputHelp(field model.Field) string {
	if field.Description != "" {
		return field.Description
	}
	return field.Placeholder
}

func optionLabels(field model.Field) []string {
	out := make([]string, len(field.Options))
	for i, opt := range field.Options {
		out[i] = opt.Label
		if out[i] == "" {
			out[i] = fmt.Sprint(opt.Value)
		}
	}
	return out
}

func optionIndex(field model.Field, current any) int {
	raw := fmt.Sprint(current)
	for i, opt := range field.Options {
		if fmt.Sprint(opt.Value) == raw {
			return i
		}
	}
	return -1
}

func selectedIndices(field model.Field, current any) []int {
	list, _ := current.([]any)
	var out []int
	for _, item := range list {
		if idx := optionIndex(field, item); idx >= 0 {
			out = append(out, idx)
		}
	}
	return out
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func detectContentType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		mediaType, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mediaType
		}
	}
	return http.DetectContentType(data)
}

func rejectionText(reason attachments.Reason) string {
	switch reason {
	case attachments.ReasonType:
		return "only images are accepted"
	case attachments.ReasonSize:
		return "file is too large"
	case attachments.ReasonOverCap:
		return "too many photos"
	}
	return string(reason)
}
