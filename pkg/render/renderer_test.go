package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/portal"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	renderer, err := render.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func formFor(t *testing.T, key string) model.FormModel {
	t.Helper()
	entry, err := testsupport.Catalog(t).Entry(key)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	return entry.Form
}

func TestFormViewResolvesComponents(t *testing.T) {
	renderer := newRenderer(t)
	form := formFor(t, portal.FormFeedback)

	view, err := renderer.FormView(render.FormState{Path: "/feedback", Form: form, Now: testsupport.FixedNow})
	if err != nil {
		t.Fatalf("form view: %v", err)
	}

	got := map[string]string{}
	for _, field := range view.Fields {
		got[field.Name] = field.Template
	}
	want := map[string]string{
		"rating":      "components/rating.tmpl",
		"category":    "components/radio.tmpl",
		"comment":     "components/textarea.tmpl",
		"isAnonymous": "components/toggle.tmpl",
		"email":       "components/input.tmpl",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
	if view.Success != "Thank you for your feedback!" {
		t.Fatalf("success = %q", view.Success)
	}
}

func TestFormViewHidesClearedFields(t *testing.T) {
	form := formFor(t, portal.FormFeedback)
	values := form.Defaults()
	values["isAnonymous"] = true

	view := render.NewFormView(render.FormState{Form: form, Values: values})
	for _, field := range view.Fields {
		if field.Name == "email" && !field.Hidden {
			t.Fatalf("email should be hidden while anonymous")
		}
		if field.Name == "isAnonymous" && (!field.Checked || !field.Refresh) {
			t.Fatalf("toggle should be checked and refresh the form: %+v", field)
		}
	}
}

func TestFormViewDateMinimumAndReceipt(t *testing.T) {
	form := formFor(t, portal.FormRequest)
	receipt := &submission.Receipt{
		Reference: "K7QZ3WXN",
		Values:    model.Values{"name": "Jo", "service": "Plumbing", "notes": ""},
	}
	view := render.NewFormView(render.FormState{
		Form:    form,
		State:   submission.StateSucceeded,
		Receipt: receipt,
		Now:     testsupport.FixedNow,
	})

	for _, field := range view.Fields {
		if field.Name == "date" && field.Min != "2024-06-11" {
			t.Fatalf("date min = %q", field.Min)
		}
	}
	if !view.Succeeded || view.Receipt == nil {
		t.Fatalf("expected a succeeded view with a receipt")
	}
	want := []render.EntryView{
		{Label: "Full Name", Value: "Jo"},
		{Label: "Service Type", Value: "Plumbing"},
	}
	if diff := cmp.Diff(want, view.Receipt.Entries); diff != "" {
		t.Fatalf("receipt mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFormPage(t *testing.T) {
	renderer := newRenderer(t)
	form := formFor(t, portal.FormReport)
	values := form.Defaults()
	values["priority"] = "high"

	intake := attachments.NewIntake(attachments.WithPreviews(attachments.NewPreviews()))
	intake.AddFiles([]attachments.File{{Name: "leak.png", ContentType: "image/png", Data: []byte("png")}})

	var buf bytes.Buffer
	err := renderer.Form(&buf, render.Chrome{Title: form.Title, Path: "/report"}, render.FormState{
		Path:        "/report",
		Form:        form,
		Values:      values,
		Errors:      model.FieldErrors{"description": "Description must be at least 10 characters"},
		State:       submission.StateIdle,
		Toasts:      []notify.Toast{{ID: "t1", Kind: notify.KindError, Message: "Please fix the errors in the form"}},
		Attachments: intake,
		Hidden:      []render.HiddenField{render.CSRFToken("tok")},
	})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		`<h1>Report an Issue</h1>`,
		`<option value="high" selected>`,
		`Description must be at least 10 characters`,
		`aria-invalid="true"`,
		`name="_csrf" value="tok"`,
		`Please fix the errors in the form`,
		`leak.png`,
		`src="/previews/`,
		`value="remove:0"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered form missing %q", want)
		}
	}
}

func TestRenderBusyFormRefreshes(t *testing.T) {
	renderer := newRenderer(t)
	form := formFor(t, portal.FormRequest)

	var buf bytes.Buffer
	if err := renderer.Form(&buf, render.Chrome{Title: form.Title}, render.FormState{Form: form, State: submission.StateSubmitting}); err != nil {
		t.Fatalf("render form: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `http-equiv="refresh"`) || !strings.Contains(html, "Submitting...") {
		t.Fatalf("busy page should refresh and show progress:\n%s", html)
	}
}

func TestRenderPortalPages(t *testing.T) {
	renderer := newRenderer(t)
	cases := []struct {
		name string
		data any
		want []string
	}{
		{render.PageHome, portal.HomeData(), []string{"Smart Workspace", "99.2%", "Recognition and rewards program"}},
		{render.PageRewards, render.NewRewardsView(portal.RewardsData(func(int) int { return 0 })), []string{"12,750", "width: 85%", "Speed Demon", "You&#39;re on fire!"}},
		{render.PageDashboard, render.NewDashboardView(portal.DashboardData()), []string{"+12%", "-0.5%", "Alex Johnson", "2.4"}},
		{render.PageImpact, render.NewImpactView(portal.ImpactData()), []string{"1,245 kWh", "width: 83%", "Weight of an adult panda"}},
		{render.PageNotFound, nil, []string{"Page not found"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			chrome := render.Chrome{
				Title: tc.name,
				Path:  "/x",
				Nav:   []render.NavLink{{Path: "/", Label: "Home", Active: true}},
			}
			if err := renderer.Page(&buf, tc.name, chrome, tc.data); err != nil {
				t.Fatalf("render %s: %v", tc.name, err)
			}
			html := buf.String()
			for _, want := range tc.want {
				if !strings.Contains(html, want) {
					t.Errorf("%s page missing %q", tc.name, want)
				}
			}
			if !strings.Contains(html, `aria-current="page"`) {
				t.Errorf("%s page missing active nav link", tc.name)
			}
		})
	}
}

func TestComponentsRegistry(t *testing.T) {
	components := render.DefaultComponents()
	if err := components.Register("  Signature ", "components/signature.tmpl"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if tpl, ok := components.Template("signature"); !ok || tpl != "components/signature.tmpl" {
		t.Fatalf("template = %q, %v", tpl, ok)
	}
	if err := components.Register("", "x"); err == nil {
		t.Fatalf("expected error for empty name")
	}
	want := []string{"input", "radio", "rating", "select", "signature", "textarea", "toggle"}
	if diff := cmp.Diff(want, components.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestSortedHiddenFields(t *testing.T) {
	got := render.SortedHiddenFields(
		render.Hidden("b", 2),
		render.Hidden(" ", "dropped"),
		render.Hidden("a", "first"),
		render.Hidden("a", "second"),
	)
	want := []render.HiddenField{{Name: "a", Value: "second"}, {Name: "b", Value: "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}
