package services

import (
	"errors"
	"strings"
	"testing"

	"movie-booking/internal/apperrors"
)

func TestBannerObjectName(t *testing.T) {
	name, err := bannerObjectName("../posters/My Dune.JPG", "image/jpeg")
	if err != nil {
		t.Fatalf("bannerObjectName() error = %v", err)
	}
	if !strings.HasPrefix(name, "my-dune_") || !strings.HasSuffix(name, ".jpg") {
		t.Errorf("name = %q, want my-dune_<id>.jpg", name)
	}
	if len(name) != len("my-dune_")+8+len(".jpg") {
		t.Errorf("name = %q has unexpected length", name)
	}

	name, err = bannerObjectName("poster", "image/webp")
	if err != nil {
		t.Fatalf("bannerObjectName() error = %v", err)
	}
	if !strings.HasSuffix(name, ".webp") {
		t.Errorf("name = %q, want .webp extension from content type", name)
	}

	for _, tc := range []struct{ filename, contentType, field string }{
		{"", "image/png", "filename"},
		{"poster.pdf", "application/pdf", "contentType"},
	} {
		_, err := bannerObjectName(tc.filename, tc.contentType)
		var verr *apperrors.ErrValidation
		if !errors.As(err, &verr) {
			t.Fatalf("bannerObjectName(%q, %q) error = %v, want validation error", tc.filename, tc.contentType, err)
		}
		if _, ok := verr.Fields[tc.field]; !ok {
			t.Errorf("Fields = %v, want %q", verr.Fields, tc.field)
		}
	}
}

func TestPublicAndManagedObjectURL(t *testing.T) {
	const base = "http://localhost:9000/banners"

	public := publicObjectURL(base, "banners", "dune_1a2b3c4d.jpg")
	if public != "http://localhost:9000/banners/dune_1a2b3c4d.jpg" {
		t.Fatalf("publicObjectURL() = %q", public)
	}

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{public, "dune_1a2b3c4d.jpg", true},
		{public + "?X-Amz-Signature=abc", "dune_1a2b3c4d.jpg", true},
		{"http://LOCALHOST:9000/banners/a.png", "a.png", true},
		{"https://image.tmdb.org/t/p/w500/dune.jpg", "", false},
		{"http://localhost:9000/other/a.png", "", false},
		{"http://localhost:9000/banners/nested/a.png", "", false},
		{"dune.jpg", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := managedObjectName(base, "banners", tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("managedObjectName(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
