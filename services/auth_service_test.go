package services

import (
	"net/http"
	"strings"
	"testing"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/models"
	"github.com/amorlink/amorlink/services/utils"
)

type fakeMailer struct {
	recipients []string
	links      []string
}

func (f *fakeMailer) SendRegistrationEmail(recipient, link string) (string, error) {
	f.recipients = append(f.recipients, recipient)
	f.links = append(f.links, link)
	return "queued", nil
}

func newAuthFixture(t *testing.T) (*fakeAuthRepo, *fakeMailer, AuthService) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	hashed, err := utils.HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	authRepo := newFakeAuthRepo(
		&models.User{
			Model: models.Model{ID: 1}, Name: "Carlos", Email: "carlos@example.com",
			HashedPassword: hashed, IsActive: true, IsPasswordSet: true, Role: models.RoleUser,
		},
		&models.User{
			Model: models.Model{ID: 2}, Name: "Bloqueada", Email: "blocked@example.com",
			HashedPassword: hashed, IsActive: false, IsPasswordSet: true,
		},
		&models.User{
			Model: models.Model{ID: 3}, Name: "Pendente", Email: "pending@example.com",
			IsActive: true, IsPasswordSet: false,
		},
	)
	mail := &fakeMailer{}
	conf := &config.Config{JWTSecret: "test-secret", BaseUrl: "https://app.example.com"}
	return authRepo, mail, NewAuthService(authRepo, mail, conf)
}

func TestLoginUser(t *testing.T) {
	_, _, svc := newAuthFixture(t)

	resp, apiErr := svc.LoginUser(&models.LoginRequest{Email: "carlos@example.com", Password: "secret1"})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if resp.AccessToken == "" {
		t.Error("expected an access token")
	}
	if resp.UserResponse.Email != "carlos@example.com" {
		t.Errorf("response user = %+v", resp.UserResponse)
	}
}

func TestLoginUserRejections(t *testing.T) {
	_, _, svc := newAuthFixture(t)

	cases := []struct {
		name   string
		req    models.LoginRequest
		status int
	}{
		{"wrong password", models.LoginRequest{Email: "carlos@example.com", Password: "wrong12"}, http.StatusUnauthorized},
		{"unknown email", models.LoginRequest{Email: "nobody@example.com", Password: "secret1"}, http.StatusUnauthorized},
		{"inactive account", models.LoginRequest{Email: "blocked@example.com", Password: "secret1"}, http.StatusUnauthorized},
		{"password not set", models.LoginRequest{Email: "pending@example.com", Password: "secret1"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, apiErr := svc.LoginUser(&tc.req); apiErr == nil || apiErr.Status != tc.status {
				t.Fatalf("expected %d, got %v", tc.status, apiErr)
			}
		})
	}
}

func TestSignupWithPassword(t *testing.T) {
	_, mail, svc := newAuthFixture(t)

	created, apiErr := svc.SignupUser(&models.User{
		Model: models.Model{ID: 5}, Name: "Nova", Email: "nova@example.com",
		CPF: "12345678901", Phone: "11999991111", Password: "secret1",
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if !created.IsPasswordSet || created.HashedPassword == "" || created.Password != "" {
		t.Errorf("created = %+v", created)
	}
	if len(mail.recipients) != 0 {
		t.Error("signup with a password does not send a registration email")
	}
}

func TestSignupPreRegistration(t *testing.T) {
	_, mail, svc := newAuthFixture(t)

	created, apiErr := svc.SignupUser(&models.User{
		Model: models.Model{ID: 6}, Name: "Pre", Email: "pre@example.com",
		CPF: "98765432100", Phone: "11999992222",
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if created.IsPasswordSet {
		t.Error("pre-registration must not mark the password as set")
	}
	if created.RegistrationToken == "" || created.RegistrationTokenExpires == nil {
		t.Fatal("expected a registration token with an expiry")
	}
	if len(mail.recipients) != 1 || mail.recipients[0] != "pre@example.com" {
		t.Fatalf("mail recipients = %v", mail.recipients)
	}
	if !strings.HasPrefix(mail.links[0], "https://app.example.com/register/") {
		t.Errorf("registration link = %q", mail.links[0])
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	_, _, svc := newAuthFixture(t)

	_, apiErr := svc.SignupUser(&models.User{
		Model: models.Model{ID: 7}, Email: "x@example.com", CPF: "11111111111", Password: "short",
	})
	if apiErr == nil || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", apiErr)
	}
}

func TestSetPassword(t *testing.T) {
	authRepo, _, svc := newAuthFixture(t)

	token, err := utils.GenerateRegistrationToken("pending@example.com")
	if err != nil {
		t.Fatal(err)
	}
	authRepo.users[3].RegistrationToken = token

	if apiErr := svc.SetPassword(token, "secret1"); apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if apiErr := svc.SetPassword("garbage-token", "secret1"); apiErr == nil || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %v", apiErr)
	}
}
