package notify_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/notify"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func messages(toasts []notify.Toast) []string {
	out := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		out = append(out, toast.Message)
	}
	return out
}

func TestDispatcherExpiresAfterDuration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	d := notify.NewDispatcher(notify.WithClock(clock.Now))

	d.Push("s1", notify.KindError, "Please fix the errors in the form")
	clock.Advance(2 * time.Second)
	d.Push("s1", notify.KindSuccess, "Issue reported successfully!")

	if diff := cmp.Diff([]string{"Please fix the errors in the form", "Issue reported successfully!"}, messages(d.Active("s1"))); diff != "" {
		t.Fatalf("active mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(notify.DefaultDuration - time.Second)
	if diff := cmp.Diff([]string{"Issue reported successfully!"}, messages(d.Active("s1"))); diff != "" {
		t.Fatalf("active mismatch after expiry (-want +got):\n%s", diff)
	}
}

func TestDispatcherScopesAndDismiss(t *testing.T) {
	d := notify.NewDispatcher(notify.WithDuration(time.Minute))
	first := notify.Scoped{Notifier: d, Scope: "a"}.Success("Thank you for your feedback!")
	d.Push("b", notify.KindInfo, "hello")

	if got := messages(d.Active("a")); len(got) != 1 {
		t.Fatalf("scope a should see one toast, got %v", got)
	}
	if first.ID == "" || first.Kind != notify.KindSuccess {
		t.Fatalf("unexpected toast: %+v", first)
	}
	if !d.Dismiss(first.ID) {
		t.Fatalf("dismiss should find the toast")
	}
	if d.Dismiss(first.ID) {
		t.Fatalf("second dismiss should report false")
	}
	if len(d.Active("a")) != 0 || len(d.Active("b")) != 1 {
		t.Fatalf("dismiss touched the wrong scope")
	}

	d.DropScope("b")
	if len(d.Active("b")) != 0 {
		t.Fatalf("drop scope left toasts behind")
	}
}

func TestDismissIfChecksOwnership(t *testing.T) {
	d := notify.NewDispatcher(notify.WithDuration(time.Minute))
	toast := d.Push("visitor-a:feedback", notify.KindError, "Please fix the errors in the form")
	ownedBy := func(prefix string) func(string) bool {
		return func(scope string) bool { return strings.HasPrefix(scope, prefix) }
	}

	if d.DismissIf(toast.ID, ownedBy("visitor-b:")) {
		t.Fatalf("another visitor must not dismiss the toast")
	}
	if len(d.Active("visitor-a:feedback")) != 1 {
		t.Fatalf("foreign dismiss removed the toast")
	}
	if !d.DismissIf(toast.ID, ownedBy("visitor-a:")) {
		t.Fatalf("owner should dismiss the toast")
	}
}
