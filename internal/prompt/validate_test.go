package prompt

import (
	"testing"

	"github.com/hpungsan/promptbase/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		body    string
		wantErr bool
		missing []string
	}{
		{name: "both present", title: "a", body: "b"},
		{name: "empty title", title: "", body: "x", wantErr: true, missing: []string{"title"}},
		{name: "empty body", title: "x", body: "", wantErr: true, missing: []string{"body"}},
		{name: "both empty", title: "", body: "", wantErr: true, missing: []string{"title", "body"}},
		{name: "whitespace title", title: " \t\n", body: "x", wantErr: true, missing: []string{"title"}},
		{name: "whitespace body", title: "x", body: "   ", wantErr: true, missing: []string{"body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Validate(tt.title, tt.body)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				if payload.Title != tt.title || payload.Body != tt.body {
					t.Errorf("payload = %+v, want title=%q body=%q", payload, tt.title, tt.body)
				}
				return
			}

			if !errors.Is(err, errors.ErrValidation) {
				t.Fatalf("Validate() error = %v, want VALIDATION_FAILED", err)
			}
			pErr := errors.As(err)
			got, _ := pErr.Details["missing_fields"].([]string)
			if len(got) != len(tt.missing) {
				t.Fatalf("missing_fields = %v, want %v", got, tt.missing)
			}
			for i := range got {
				if got[i] != tt.missing[i] {
					t.Errorf("missing_fields[%d] = %q, want %q", i, got[i], tt.missing[i])
				}
			}
		})
	}
}

func TestValidate_KeepsOriginalContent(t *testing.T) {
	payload, err := Validate("  padded title  ", "\nbody with newline\n")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if payload.Title != "  padded title  " {
		t.Errorf("Title = %q, want untrimmed original", payload.Title)
	}
	if payload.Body != "\nbody with newline\n" {
		t.Errorf("Body = %q, want untrimmed original", payload.Body)
	}
}

func TestExportRecord_ToPrompt(t *testing.T) {
	r := &ExportRecord{
		ID:         99,
		Title:      "t",
		Body:       "b",
		IsFavorite: true,
		CreatedAt:  1000,
		UpdatedAt:  0,
	}
	p := r.ToPrompt()
	if p.ID != 0 {
		t.Errorf("ID = %d, want 0 (store assigns ids)", p.ID)
	}
	if !p.IsFavorite {
		t.Error("IsFavorite = false, want true")
	}
	if p.UpdatedAt != 1000 {
		t.Errorf("UpdatedAt = %d, want clamped to CreatedAt", p.UpdatedAt)
	}
}
