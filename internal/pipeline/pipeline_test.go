package pipeline

import (
	"strings"
	"testing"

	"github.com/solris/commhub/internal/spreadsheet"
)

func TestFetch(t *testing.T) {
	g := NewGenerator("success@solis.example")

	d, err := g.Fetch(DefaultInputs())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if d.Sender != "success@solis.example" {
		t.Errorf("Sender = %q", d.Sender)
	}
	if len(d.To) != 1 || d.To[0] != "client@acme.com" {
		t.Errorf("To = %v, want [client@acme.com]", d.To)
	}
	if len(d.Cc) != 1 || d.Cc[0] != "manager@solis.example" {
		t.Errorf("Cc = %v, want [manager@solis.example]", d.Cc)
	}
	if d.Subject != "Monthly Performance Review: Solis Enterprise" {
		t.Errorf("Subject = %q", d.Subject)
	}
	if !strings.Contains(d.Body, "Hello Acme Corp,") {
		t.Errorf("Body missing greeting: %q", d.Body)
	}
	if !strings.Contains(d.Body, "Uptime: 99.99%") {
		t.Errorf("Body missing highlights: %q", d.Body)
	}

	if len(d.Attachments) != 2 {
		t.Fatalf("len(Attachments) = %d, want 2", len(d.Attachments))
	}
	if d.Attachments[0].Filename != "usage_summary.xlsx" || d.Attachments[1].Filename != "device_metrics.xlsx" {
		t.Errorf("attachment names = %q, %q", d.Attachments[0].Filename, d.Attachments[1].Filename)
	}
	for _, a := range d.Attachments {
		rows, err := spreadsheet.Preview(a.Content, 0)
		if err != nil {
			t.Errorf("attachment %s not previewable: %v", a.Filename, err)
			continue
		}
		if len(rows) < 2 {
			t.Errorf("attachment %s has %d rows", a.Filename, len(rows))
		}
	}
}

func TestFetchDefaultsEmptyInputs(t *testing.T) {
	g := NewGenerator("success@solis.example")
	d, err := g.Fetch(Inputs{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if d.To[0] != "client@example.com" {
		t.Errorf("default recipient = %v", d.To)
	}
	if len(d.Cc) != 0 {
		t.Errorf("Cc = %v, want empty", d.Cc)
	}
	if !strings.Contains(d.Subject, "Global Connectivity") {
		t.Errorf("Subject = %q", d.Subject)
	}
}
