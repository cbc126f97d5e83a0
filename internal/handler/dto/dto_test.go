package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/keydesk/keydesk/internal/model"
)

func TestAdminCredentialsRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     AdminCredentialsRequest
		wantErr bool
	}{
		{"valid", AdminCredentialsRequest{Email: "a@example.com", Password: "secret"}, false},
		{"missing email", AdminCredentialsRequest{Password: "secret"}, true},
		{"missing password", AdminCredentialsRequest{Email: "a@example.com"}, true},
		{"whitespace email", AdminCredentialsRequest{Email: "   ", Password: "secret"}, true},
		{"whitespace password", AdminCredentialsRequest{Email: "a@example.com", Password: " \t"}, true},
		{"email too long", AdminCredentialsRequest{Email: strings.Repeat("a", MaxEmailLength+1), Password: "x"}, true},
		{"password too long", AdminCredentialsRequest{Email: "a@example.com", Password: strings.Repeat("p", MaxPasswordLength+1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAdminCredentialsRequest_TrimsEmailOnly(t *testing.T) {
	req := AdminCredentialsRequest{Email: "  a@example.com ", Password: " pass "}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if req.Email != "a@example.com" {
		t.Errorf("Email = %q, want trimmed", req.Email)
	}
	if req.Password != " pass " {
		t.Errorf("Password = %q, must not be modified", req.Password)
	}
}

func TestRegisterUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterUserRequest
		wantErr string
	}{
		{"valid", RegisterUserRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, ""},
		{"missing first name", RegisterUserRequest{LastName: "Lovelace", Email: "ada@example.com"}, "first_name"},
		{"missing last name", RegisterUserRequest{FirstName: "Ada", Email: "ada@example.com"}, "last_name"},
		{"missing email", RegisterUserRequest{FirstName: "Ada", LastName: "Lovelace"}, "email"},
		{"blank name", RegisterUserRequest{FirstName: "  ", LastName: "Lovelace", Email: "ada@example.com"}, "first_name"},
		{"name too long", RegisterUserRequest{FirstName: strings.Repeat("n", MaxNameLength+1), LastName: "L", Email: "e"}, "first_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterUserRequest_ToUser(t *testing.T) {
	req := RegisterUserRequest{FirstName: " Ada ", LastName: "Lovelace", Email: "ada@example.com "}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	user := req.ToUser()
	if user.FirstName != "Ada" || user.Email != "ada@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestToDashboardResponse_NeverNull(t *testing.T) {
	data, err := json.Marshal(ToDashboardResponse(&model.Dashboard{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"users":[],"keys":[]}` {
		t.Errorf("got %s", data)
	}
}

func TestToRegisterUserResponse(t *testing.T) {
	expires := time.Date(2026, 11, 17, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	resp := ToRegisterUserResponse(&model.IssuedKey{Key: "abc", ExpiresAt: expires})

	if resp.ExpiresAt != "2026-11-17T09:30:00Z" {
		t.Errorf("ExpiresAt = %q", resp.ExpiresAt)
	}

	data, _ := json.Marshal(resp)
	if !strings.Contains(string(data), `"apiKey":"abc"`) || !strings.Contains(string(data), `"expiresAt"`) {
		t.Errorf("unexpected JSON field names: %s", data)
	}
}

func TestErrorResponse_Shape(t *testing.T) {
	data, _ := json.Marshal(NewErrorResponse("EMAIL_EXISTS", "Email already registered"))
	want := `{"error":{"code":"EMAIL_EXISTS","message":"Email already registered"}}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
