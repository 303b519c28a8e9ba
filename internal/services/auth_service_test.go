package services

import (
	"context"
	"errors"
	"testing"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/models"
	"movie-booking/internal/utils"
)

func newTestAuthService(users *fakeUserRepo) AuthService {
	return NewAuthService(users, testConfig().Auth, quietLogger())
}

func TestRegister(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:            " Ana ",
		Email:           " Ana@Example.COM ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.User.Email != "ana@example.com" || res.User.Name != "Ana" {
		t.Errorf("user = %+v, want normalized name and email", res.User)
	}
	if res.User.Role != models.RoleCustomer {
		t.Errorf("Role = %q, want customer", res.User.Role)
	}
	if res.User.PasswordHash == "secret1" || !utils.VerifyPassword(res.User.PasswordHash, "secret1") {
		t.Error("password not hashed")
	}

	claims, err := utils.ParseAccessToken(testConfig().Auth.JWTSecret, res.AccessToken.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if id, _ := claims.UserID(); id != res.User.ID {
		t.Errorf("token subject = %d, want %d", id, res.User.ID)
	}

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "ana@example.com", Password: "secret2"})
	if !errors.Is(err, &apperrors.ErrConflict{}) {
		t.Errorf("duplicate Register() error = %v, want conflict", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "secret1"}, "email"},
		{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "123"}, "password"},
		{"mismatch", RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"}, "confirm_password"},
		{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1"}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			var verr *apperrors.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want validation error", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("Fields = %v, want key %q", verr.Fields, tt.field)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	if _, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	res, err := svc.Login(context.Background(), LoginInput{Email: "ANA@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.AccessToken.Token == "" {
		t.Error("empty token")
	}

	for _, in := range []LoginInput{
		{Email: "ana@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		_, err := svc.Login(context.Background(), in)
		var uerr *apperrors.ErrUnauthorized
		if !errors.As(err, &uerr) {
			t.Fatalf("Login(%s) error = %v, want unauthorized", in.Email, err)
		}
		if uerr.Message != "invalid email or password" {
			t.Errorf("message = %q", uerr.Message)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	res, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	name := "  Ana Maria "
	off := false
	user, err := svc.UpdateProfile(context.Background(), res.User.ID, ProfileInput{
		Name:           &name,
		FavoriteGenres: []string{" Drama ", "Comedy"},
		Notifications:  &off,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.Name != "Ana Maria" || user.Notifications || len(user.FavoriteGenres) != 2 || user.FavoriteGenres[0] != "Drama" {
		t.Errorf("user = %+v", user)
	}

	empty := " "
	if _, err := svc.UpdateProfile(context.Background(), res.User.ID, ProfileInput{Name: &empty}); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Errorf("blank name error = %v, want validation error", err)
	}
	if _, err := svc.GetProfile(context.Background(), 999); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("GetProfile(999) error = %v, want not found", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	users := newFakeUserRepo()
	cfg := testConfig().Auth
	cfg.AdminEmail = "Root@Example.com"
	cfg.AdminPassword = "rootpass"
	svc := NewAuthService(users, cfg, quietLogger())

	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	admin, _ := users.FindByEmail(context.Background(), "root@example.com")
	if admin == nil || !admin.IsAdmin() {
		t.Fatalf("admin = %+v, want admin account", admin)
	}

	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("second EnsureAdmin() error = %v", err)
	}
	if len(users.users) != 1 {
		t.Errorf("users = %d, want 1", len(users.users))
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	users := newFakeUserRepo()
	customer := newTestAuthService(users)
	if _, err := customer.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	cfg := testConfig().Auth
	cfg.AdminEmail = "ana@example.com"
	cfg.AdminPassword = "ignored"
	if err := NewAuthService(users, cfg, quietLogger()).EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	user, _ := users.FindByEmail(context.Background(), "ana@example.com")
	if !user.IsAdmin() {
		t.Error("existing user not promoted")
	}
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	users := newFakeUserRepo()
	if err := newTestAuthService(users).EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	if len(users.users) != 0 {
		t.Errorf("users = %d, want 0", len(users.users))
	}
}
