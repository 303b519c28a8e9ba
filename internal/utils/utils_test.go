package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"movie-booking/internal/apperrors"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "admin", "ada@example.com", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if tok.Token == "" || time.Until(tok.ExpiresAt) <= 0 {
		t.Fatalf("unexpected token %+v", tok)
	}

	claims, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Errorf("UserID() = %d, %v; want 42", id, err)
	}
	if claims.Role != "admin" || claims.Email != "ada@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	tok, _ := NewAccessToken("secret", 1, "customer", "a@b.co", time.Hour)
	if _, err := ParseAccessToken("other-secret", tok.Token); err == nil {
		t.Error("expected signature error")
	}

	expired, _ := NewAccessToken("secret", 1, "customer", "a@b.co", -time.Minute)
	if _, err := ParseAccessToken("secret", expired.Token); err == nil {
		t.Error("expected expiry error")
	}

	if _, err := ParseAccessToken("secret", "not-a-token"); err == nil {
		t.Error("expected parse error")
	}
}

func TestTokenClaims_UserIDInvalid(t *testing.T) {
	c := &TokenClaims{}
	c.Subject = "abc"
	if _, err := c.UserID(); err == nil {
		t.Error("expected error for non-numeric subject")
	}
	c.Subject = "0"
	if _, err := c.UserID(); err == nil {
		t.Error("expected error for zero subject")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "hunter22") {
		t.Error("expected password to verify")
	}
	if VerifyPassword(hash, "hunter23") {
		t.Error("wrong password verified")
	}
}

type signup struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=6"`
	ConfirmPassword string   `json:"confirm_password" validate:"omitempty,eqfield=Password"`
	Born            string   `json:"born" validate:"omitempty,date"`
	Tags            []string `json:"tags" validate:"omitempty,dive,required"`
}

func TestValidateStruct(t *testing.T) {
	ok := signup{Name: "Ada", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1", Born: "1815-12-10"}
	if err := ValidateStruct(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := signup{Email: "nope", Password: "123", ConfirmPassword: "1234", Born: "10/12/1815", Tags: []string{"x", ""}}
	err := ValidateStruct(bad)
	var verr *apperrors.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := map[string]string{
		"name":             "is required",
		"email":            "must be a valid email address",
		"password":         "must be at least 6 characters",
		"confirm_password": "must match password",
		"born":             "must be a date in YYYY-MM-DD format",
		"tags[1]":          "is required",
	}
	for field, msg := range want {
		if got := verr.Fields[field]; got != msg {
			t.Errorf("field %s: got %q, want %q", field, got, msg)
		}
	}
	if !strings.HasPrefix(verr.Error(), "validation failed: ") {
		t.Errorf("unexpected message %q", verr.Error())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 1 || d.Location() != time.UTC {
		t.Errorf("unexpected date %v", d)
	}
	for _, s := range []string{"", "2024-13-01", "2024-02-30", "01-03-2024"} {
		if IsDate(s) {
			t.Errorf("IsDate(%q) = true", s)
		}
	}
}

func TestCreatePaginationMeta(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		want        PaginationMeta
	}{
		{1, 10, 0, PaginationMeta{Page: 1, Limit: 10, Total: 0, TotalPages: 1}},
		{1, 10, 25, PaginationMeta{Page: 1, Limit: 10, Total: 25, TotalPages: 3, HasNext: true}},
		{3, 10, 25, PaginationMeta{Page: 3, Limit: 10, Total: 25, TotalPages: 3, HasPrevious: true}},
		{2, 10, 30, PaginationMeta{Page: 2, Limit: 10, Total: 30, TotalPages: 3, HasNext: true, HasPrevious: true}},
	}
	for _, tt := range tests {
		if got := CreatePaginationMeta(tt.page, tt.limit, tt.total); got != tt.want {
			t.Errorf("CreatePaginationMeta(%d, %d, %d) = %+v, want %+v", tt.page, tt.limit, tt.total, got, tt.want)
		}
	}
}
