package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/prompt"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

// scriptedDriver answers prompts from per-message queues. Select answers are
// option labels; Confirm answers are bools.
type scriptedDriver struct {
	answers map[string][]any
	infos   []string
	asked   []string
}

func (s *scriptedDriver) next(message string) (any, error) {
	s.asked = append(s.asked, message)
	queue := s.answers[message]
	if len(queue) == 0 {
		return nil, fmt.Errorf("no answer scripted for %q", message)
	}
	s.answers[message] = queue[1:]
	return queue[0], nil
}

func (s *scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	v, err := s.next(cfg.Message)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *scriptedDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	v, err := s.next(cfg.Message)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *scriptedDriver) Confirm(_ context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	v, err := s.next(cfg.Message)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s *scriptedDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	v, err := s.next(cfg.Message)
	if err != nil {
		return -1, err
	}
	for i, option := range cfg.Options {
		if option == v.(string) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q is not an option of %q", v, cfg.Message)
}

func (s *scriptedDriver) MultiSelect(_ context.Context, cfg prompt.SelectConfig) ([]int, error) {
	return nil, errors.New("no multi-select fields in the portal")
}

func (s *scriptedDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func TestFillReport(t *testing.T) {
	driver := &scriptedDriver{answers: map[string][]any{
		"Issue Type":              {"Plumbing Problems"},
		"Location":                {"Cafeteria"},
		"Priority Level":          {"Urgent"},
		"Description":             {"leak", "Water pooling under the sink"},
		prompt.AttachmentsMessage: {"photos/sink.png, notes.txt, missing.png"},
	}}
	files := map[string][]byte{
		"photos/sink.png": []byte("\x89PNG\r\n\x1a\nrest"),
		"notes.txt":       []byte("plain text"),
	}
	var out bytes.Buffer
	filler := prompt.New(
		prompt.WithDriver(driver),
		prompt.WithOutput(&out),
		prompt.WithFileReader(func(path string) ([]byte, error) {
			data, ok := files[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return data, nil
		}),
	)

	receipt, err := filler.Fill(context.Background(), testsupport.Catalog(t), "report")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := model.Values{
		"issueType":   "plumbing",
		"location":    "Cafeteria",
		"priority":    "urgent",
		"description": "Water pooling under the sink",
	}
	if diff := cmp.Diff(want, receipt.Values); diff != "" {
		t.Fatalf("receipt values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sink.png"}, receipt.Attachments); diff != "" {
		t.Fatalf("attachments mismatch (-want +got):\n%s", diff)
	}

	wantInfos := []string{
		"Invalid Description: Description must be at least 10 characters",
		"Skipped missing.png: file does not exist",
		"Skipped notes.txt: only images are accepted",
	}
	if diff := cmp.Diff(wantInfos, driver.infos); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}

	printed := out.String()
	for _, fragment := range []string{"Report an Issue", "Issue reported successfully!", receipt.Reference, "Plumbing Problems"} {
		if !strings.Contains(printed, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, printed)
		}
	}
}

func TestFillFeedbackSkipsClearedFields(t *testing.T) {
	driver := &scriptedDriver{answers: map[string][]any{
		"Rate Your Experience":               {"Satisfied"},
		"What's your feedback about?":        {"Customer Service"},
		"Tell us more about your experience": {"Helpful and quick support"},
		"Submit anonymously":                 {true},
	}}
	var out bytes.Buffer
	filler := prompt.New(prompt.WithDriver(driver), prompt.WithOutput(&out))

	receipt, err := filler.Fill(context.Background(), testsupport.Catalog(t), "feedback")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	for _, asked := range driver.asked {
		if asked == "Email Address" {
			t.Fatalf("email should not be asked when anonymous")
		}
	}
	if receipt.Values["isAnonymous"] != true || receipt.Values["email"] != "" {
		t.Fatalf("unexpected values: %v", receipt.Values)
	}
	if !strings.Contains(out.String(), "Thank you for your feedback!") {
		t.Fatalf("missing success toast:\n%s", out.String())
	}
}

func TestFillStopsOnDriverError(t *testing.T) {
	driver := &scriptedDriver{answers: map[string][]any{}}
	filler := prompt.New(prompt.WithDriver(driver), prompt.WithOutput(&bytes.Buffer{}))

	if _, err := filler.Fill(context.Background(), testsupport.Catalog(t), "request"); err == nil {
		t.Fatalf("expected the missing answer to abort the fill")
	}
}

func TestFillUnknownForm(t *testing.T) {
	filler := prompt.New(prompt.WithDriver(&scriptedDriver{}), prompt.WithOutput(&bytes.Buffer{}))
	if _, err := filler.Fill(context.Background(), testsupport.Catalog(t), "parking"); err == nil {
		t.Fatalf("expected an error for an unknown form")
	}
}
