package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// FormState is everything needed to draw one form instance.
type FormState struct {
	Path        string
	Form        model.FormModel
	Values      model.Values
	Errors      model.FieldErrors
	State       submission.State
	Toasts      []notify.Toast
	Attachments *attachments.Intake
	Receipt     *submission.Receipt
	Hidden      []HiddenField
	// Now anchors date pickers; zero means time.Now.
	Now time.Time
}

// FormView is the template-facing projection of FormState. Every value is
// pre-formatted so templates never format numbers themselves.
type FormView struct {
	Path        string          `json:"path"`
	Operation   string          `json:"operation"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	State       string          `json:"state"`
	Busy        bool            `json:"busy"`
	Succeeded   bool            `json:"succeeded"`
	SubmitLabel string          `json:"submitLabel"`
	Success     string          `json:"success"`
	Fields      []FieldView     `json:"fields"`
	Toasts      []ToastView     `json:"toasts"`
	Hidden      []HiddenField   `json:"hidden"`
	Attachments AttachmentsView `json:"attachments"`
	Receipt     *ReceiptView    `json:"receipt,omitempty"`
}

// FieldView describes one rendered control.
type FieldView struct {
	Name        string       `json:"name"`
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Component   string       `json:"component"`
	Template    string       `json:"template"`
	InputType   string       `json:"inputType"`
	Placeholder string       `json:"placeholder"`
	Help        string       `json:"help"`
	Required    bool         `json:"required"`
	Value       string       `json:"value"`
	Checked     bool         `json:"checked"`
	Error       string       `json:"error"`
	Min         string       `json:"min"`
	MaxLength   string       `json:"maxLength"`
	Refresh     bool         `json:"refresh"`
	Hidden      bool         `json:"hidden"`
	Options     []OptionView `json:"options"`
}

// OptionView is one choice of a select, radio or rating control.
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ToastView is a toast as drawn on the page.
type ToastView struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AttachmentsView describes the attachment list of forms that accept files.
type AttachmentsView struct {
	Enabled bool       `json:"enabled"`
	Files   []FileView `json:"files"`
	Max     string     `json:"max"`
	Full    bool       `json:"full"`
}

// FileView is one accepted attachment.
type FileView struct {
	Index   string `json:"index"`
	Name    string `json:"name"`
	Size    string `json:"size"`
	Preview string `json:"preview"`
}

// ReceiptView summarises a successful submission.
type ReceiptView struct {
	Reference string      `json:"reference"`
	Entries   []EntryView `json:"entries"`
}

// EntryView is one label/value pair of a receipt summary.
type EntryView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// NewFormView projects state into a FormView.
func NewFormView(state FormState) FormView {
	form := state.Form
	now := state.Now
	if now.IsZero() {
		now = time.Now()
	}
	values := state.Values
	if values == nil {
		values = form.Defaults()
	}

	view := FormView{
		Path:        state.Path,
		Operation:   form.OperationID,
		Title:       form.Title,
		Summary:     form.Summary,
		State:       string(state.State),
		Busy:        state.State == submission.StateSubmitting,
		Succeeded:   state.State == submission.StateSucceeded,
		SubmitLabel: "Submit",
		Success:     form.Metadata["success"],
		Hidden:      SortedHiddenFields(state.Hidden...),
	}
	if view.Busy {
		view.SubmitLabel = "Submitting..."
	}

	hidden := visibility.Hidden(form, values)
	for _, field := range form.Fields {
		fv := newFieldView(field, values[field.Name], now)
		fv.Error = state.Errors[field.Name]
		fv.Hidden = hidden[field.Name]
		view.Fields = append(view.Fields, fv)
	}

	for _, toast := range state.Toasts {
		view.Toasts = append(view.Toasts, ToastView{ID: toast.ID, Kind: string(toast.Kind), Message: toast.Message})
	}

	if state.Attachments != nil {
		files := state.Attachments.Files()
		view.Attachments = AttachmentsView{
			Enabled: true,
			Max:     strconv.Itoa(state.Attachments.MaxFiles()),
			Full:    len(files) >= state.Attachments.MaxFiles(),
		}
		for i, file := range files {
			fileView := FileView{Index: strconv.Itoa(i), Name: file.Name, Size: humanSize(file.Size)}
			if file.Preview != "" {
				fileView.Preview = "/previews/" + file.Preview
			}
			view.Attachments.Files = append(view.Attachments.Files, fileView)
		}
	}

	if state.Receipt != nil {
		view.Receipt = newReceiptView(form, *state.Receipt)
	}
	return view
}

func newFieldView(field model.Field, value any, now time.Time) FieldView {
	component, inputType := resolveComponent(field)
	label := field.Label
	if label == "" {
		label = field.Name
	}
	fv := FieldView{
		Name:        field.Name,
		ID:          "field-" + field.Name,
		Label:       label,
		Component:   component,
		InputType:   inputType,
		Placeholder: field.Placeholder,
		Help:        field.Description,
		Required:    field.Required,
		Value:       displayValue(value),
		Refresh:     len(field.Clears) > 0,
	}
	if field.Type == model.FieldTypeBoolean {
		fv.Checked = value == true
		fv.Value = "true"
	}
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMaxLength:
			fv.MaxLength = rule.Params["value"]
		case model.ValidationRuleMinDate:
			if days, err := strconv.Atoi(rule.Params["days"]); err == nil {
				fv.Min = now.AddDate(0, 0, days).Format(validation.DateLayout)
			}
		}
	}
	for _, opt := range field.Options {
		optValue := displayValue(opt.Value)
		fv.Options = append(fv.Options, OptionView{
			Value:    optValue,
			Label:    opt.Label,
			Selected: optValue == fv.Value,
		})
	}
	return fv
}

func newReceiptView(form model.FormModel, receipt submission.Receipt) *ReceiptView {
	view := &ReceiptView{Reference: receipt.Reference}
	for _, field := range form.Fields {
		value, ok := receipt.Values[field.Name]
		if !ok {
			continue
		}
		var text string
		switch {
		case field.Type == model.FieldTypeBoolean:
			text = "No"
			if value == true {
				text = "Yes"
			}
		case len(field.Options) > 0:
			text = field.OptionLabel(value)
		default:
			text = displayValue(value)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		label := field.Label
		if label == "" {
			label = field.Name
		}
		view.Entries = append(view.Entries, EntryView{Label: label, Value: text})
	}
	if len(receipt.Attachments) > 0 {
		view.Entries = append(view.Entries, EntryView{Label: "Attachments", Value: strings.Join(receipt.Attachments, ", ")})
	}
	return view
}

func displayValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, displayValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(typed)
	}
}

func humanSize(size int64) string {
	switch {
	case size >= 1<<20:
		return strconv.FormatFloat(float64(size)/(1<<20), 'f', 1, 64) + " MB"
	case size >= 1<<10:
		return strconv.FormatFloat(float64(size)/(1<<10), 'f', 1, 64) + " KB"
	}
	return strconv.FormatInt(size, 10) + " B"
}
