package output

import (
	"strings"
	"testing"
	"time"

	"github.com/fieldops/fieldsync/internal/models"
)

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()

	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-time.Minute), "1m ago"},
		{now.Add(-30 * time.Minute), "30m ago"},
		{now.Add(-time.Hour), "1h ago"},
		{now.Add(-5 * time.Hour), "5h ago"},
		{now.Add(-24 * time.Hour), "1d ago"},
		{now.Add(-3 * 24 * time.Hour), "3d ago"},
	}
	for _, tt := range tests {
		if got := FormatTimeAgo(tt.at); got != tt.want {
			t.Errorf("FormatTimeAgo(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}

	old := now.Add(-30 * 24 * time.Hour)
	if got := FormatTimeAgo(old); got != old.Format("2006-01-02") {
		t.Errorf("FormatTimeAgo(old) = %q, want absolute date", got)
	}
}

func TestFormatMutation(t *testing.T) {
	m := &models.PendingMutation{
		ID:         7,
		Method:     models.MethodPatch,
		URL:        "/api/bookings/b-1",
		EntityType: "bookings",
		Status:     models.StatusFailed,
		RetryCount: 3,
		Error:      "HTTP 500 after 3 retries",
		CreatedAt:  time.Now().Add(-2 * time.Minute),
	}

	line := FormatMutation(m)
	for _, want := range []string{"#7", "failed", "PATCH", "/api/bookings/b-1", "retries:3", "HTTP 500 after 3 retries"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q:\n%s", want, line)
		}
	}

	clean := &models.PendingMutation{
		ID:        8,
		Method:    models.MethodPost,
		URL:       "/api/bookings",
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	line = FormatMutation(clean)
	if strings.Contains(line, "retries") || strings.Contains(line, "\n") {
		t.Errorf("clean row should be a single line without retries:\n%s", line)
	}
}

func TestFormatStatusUnknown(t *testing.T) {
	if got := FormatStatus(models.MutationStatus("weird")); got != "weird" {
		t.Errorf("FormatStatus(unknown) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	if got := Truncate("a long line of text", 10); got != "a long ..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 2); got != "abc" {
		t.Errorf("Truncate below minimum width = %q", got)
	}
}
