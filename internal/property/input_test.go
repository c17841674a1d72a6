package property

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr string
	}{
		{"valid", Input{Title: "Loft", PricePerNight: 500}, ""},
		{"free stay ok", Input{Title: "Loft", PricePerNight: 0}, ""},
		{"missing title", Input{PricePerNight: 500}, "title is required"},
		{"negative price", Input{Title: "Loft", PricePerNight: -1}, "price per night must not be negative"},
		{"long title", Input{Title: strings.Repeat("x", 201)}, "at most 200"},
		{"storage path image", Input{Title: "Loft", MainImageURL: strPtr("props/loft/1.jpg")}, ""},
		{"url image", Input{Title: "Loft", ImageURLs: []string{"https://cdn.example.com/1.jpg"}}, ""},
		{"bad scheme", Input{Title: "Loft", ImageURLs: []string{"ftp://x/1.jpg"}}, "invalid image reference"},
		{"whitespace path", Input{Title: "Loft", MainImageURL: strPtr("my photo.jpg")}, "invalid image reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInputNormalize(t *testing.T) {
	in := Input{
		Title:        "  Loft ",
		Description:  strPtr("   "),
		Location:     strPtr(" Malmö "),
		MainImageURL: strPtr(""),
	}
	in.Normalize()

	if in.Title != "Loft" {
		t.Errorf("title = %q", in.Title)
	}
	if in.Description != nil {
		t.Errorf("description = %q, want nil", *in.Description)
	}
	if in.Location == nil || *in.Location != "Malmö" {
		t.Errorf("location = %v", in.Location)
	}
	if in.MainImageURL != nil {
		t.Error("expected empty main image to become nil")
	}
	if in.ImageURLs == nil {
		t.Error("expected image urls to be an empty list, not nil")
	}
}

func TestInputFrom(t *testing.T) {
	p := Property{Title: "Loft", Location: "Lund", PricePerNight: 700, IsActive: true, ImageURLs: []string{"a.jpg"}}
	in := InputFrom(p)

	if in.Title != "Loft" || in.PricePerNight != 700 || !in.IsActive {
		t.Errorf("unexpected input %+v", in)
	}
	if in.Location == nil || *in.Location != "Lund" {
		t.Errorf("location = %v", in.Location)
	}
	if in.Description != nil {
		t.Error("expected empty description to be nil")
	}

	in.ImageURLs[0] = "changed.jpg"
	if p.ImageURLs[0] != "a.jpg" {
		t.Error("InputFrom shares the image slice with the property")
	}
}
