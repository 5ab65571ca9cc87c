package prompt

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/submission"
)

var (
	successColor = lipgloss.AdaptiveColor{Light: "#14532d", Dark: "#bbf7d0"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#7f1d1d", Dark: "#fecaca"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#0284c7"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#8c8c8c", Dark: "#DDDDDD"}
)

// Printer writes toasts and summaries to a terminal. It satisfies
// notify.Notifier so a controller can report straight to the screen.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	now   func() time.Time
	toast map[notify.Kind]lipgloss.Style
	title lipgloss.Style
	muted lipgloss.Style
	key   lipgloss.Style
	card  lipgloss.Style
}

// NewPrinter styles output for out.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	base := r.NewStyle().Padding(0, 1).Bold(true)
	return &Printer{
		out: out,
		now: time.Now,
		toast: map[notify.Kind]lipgloss.Style{
			notify.KindSuccess: base.Foreground(successColor),
			notify.KindError:   base.Foreground(errorColor),
			notify.KindInfo:    base.Foreground(infoColor),
		},
		title: r.NewStyle().Bold(true).Foreground(infoColor),
		muted: r.NewStyle().Foreground(mutedColor),
		key:   r.NewStyle().Bold(true),
		card: r.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}

// Push prints the toast immediately. Terminal toasts never expire.
func (p *Printer) Push(scope string, kind notify.Kind, message string) notify.Toast {
	now := p.now()
	toast := notify.Toast{
		ID:        uuid.NewString(),
		Scope:     scope,
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now,
	}
	style, ok := p.toast[kind]
	if !ok {
		style = p.toast[notify.KindInfo]
	}
	p.println(style.Render(toastIcon(kind) + " " + message))
	return toast
}

// Title prints the form heading.
func (p *Printer) Title(form model.FormModel) {
	p.println(p.title.Render(form.Title))
	if form.Description != "" {
		p.println(p.muted.Render(form.Description))
	}
}

// FieldErrors lists failing fields in declared order.
func (p *Printer) FieldErrors(form model.FormModel, errs model.FieldErrors) {
	for _, field := range form.Fields {
		msg, ok := errs[field.Name]
		if !ok {
			continue
		}
		p.println(p.toast[notify.KindError].Render("  "+fieldLabel(field)+": ") + msg)
	}
}

// Receipt prints a card with the reference and the submitted values.
func (p *Printer) Receipt(form model.FormModel, receipt submission.Receipt) {
	rows := [][2]string{{"Reference", receipt.Reference}}
	for _, field := range form.Fields {
		value, ok := receipt.Values[field.Name]
		if !ok || isBlank(value) {
			continue
		}
		rows = append(rows, [2]string{fieldLabel(field), displayValue(field, value)})
	}
	if len(receipt.Attachments) > 0 {
		rows = append(rows, [2]string{"Photos", strings.Join(receipt.Attachments, ", ")})
	}

	width := 0
	for _, row := range rows {
		width = max(width, lipgloss.Width(row[0]))
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(row[0]))
		lines = append(lines, p.key.Render(row[0]+pad)+"  "+row[1])
	}
	p.println(p.card.Render(strings.Join(lines, "\n")))
}

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

func toastIcon(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return "✓"
	case notify.KindError:
		return "✗"
	}
	return "•"
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}

// displayValue prefers option labels over raw values.
func displayValue(field model.Field, value any) string {
	if list, ok := value.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = displayValue(field, item)
		}
		return strings.Join(parts, ", ")
	}
	if b, ok := value.(bool); ok {
		if b {
			return "Yes"
		}
		return "No"
	}
	raw := fmt.Sprint(value)
	for _, opt := range field.Options {
		if fmt.Sprint(opt.Value) == raw && opt.Label != "" {
			return opt.Label
		}
	}
	return raw
}
