package auth

import (
	"testing"
)

func newTestService() *Service {
	return NewService(NewDemoRepository(), "test-secret")
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		password    string
		wantSuccess bool
		wantMessage string
		wantError   string
	}{
		{
			name:        "demo account",
			email:       "demo@trading.com",
			password:    "demo123",
			wantSuccess: true,
			wantMessage: "Login berhasil",
		},
		{
			name:        "email case insensitive",
			email:       "DEMO@TRADING.COM",
			password:    "demo123",
			wantSuccess: true,
			wantMessage: "Login berhasil",
		},
		{
			name:      "wrong password",
			email:     "demo@trading.com",
			password:  "nope",
			wantError: "Password salah",
		},
		{
			name:      "unknown email",
			email:     "ghost@trading.com",
			password:  "demo123",
			wantError: "Email tidak ditemukan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newTestService().Login(tt.email, tt.password)
			if resp.Success != tt.wantSuccess {
				t.Fatalf("success: got %v, want %v (%+v)", resp.Success, tt.wantSuccess, resp)
			}
			if tt.wantSuccess {
				if resp.Message != tt.wantMessage {
					t.Errorf("message: got %q, want %q", resp.Message, tt.wantMessage)
				}
				if resp.Token == "" {
					t.Error("successful login must issue a token")
				}
				if resp.User == nil || resp.User.Email != "demo@trading.com" {
					t.Errorf("unexpected user: %+v", resp.User)
				}
			} else if resp.Error != tt.wantError {
				t.Errorf("error: got %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		wantError string
	}{
		{name: "valid", userName: "Alex", email: "alex@example.com", password: "secret1"},
		{name: "short name", userName: "A", email: "a@example.com", password: "secret1", wantError: "Nama harus minimal 2 karakter"},
		{name: "bad email", userName: "Alex", email: "not-an-email", password: "secret1", wantError: "Format email tidak valid"},
		{name: "short password", userName: "Alex", email: "alex@example.com", password: "123", wantError: "Password harus minimal 6 karakter"},
		{name: "duplicate email", userName: "Demo Again", email: "demo@trading.com", password: "secret1", wantError: "Email sudah terdaftar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newTestService().Register(tt.userName, tt.email, tt.password, "")
			if tt.wantError == "" {
				if !resp.Success {
					t.Fatalf("expected success, got %+v", resp)
				}
				if resp.Message != "Registrasi berhasil" {
					t.Errorf("message: got %q", resp.Message)
				}
				if resp.Token == "" {
					t.Error("registration must issue a token")
				}
				return
			}
			if resp.Success {
				t.Fatalf("expected failure, got success: %+v", resp)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error: got %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestRegisteredUserCanLogin(t *testing.T) {
	svc := newTestService()
	if resp := svc.Register("Alex", "alex@example.com", "secret1", "+628111"); !resp.Success {
		t.Fatalf("register failed: %+v", resp)
	}
	if resp := svc.Login("alex@example.com", "secret1"); !resp.Success {
		t.Fatalf("login after register failed: %+v", resp)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	user := &User{ID: "7", Name: "Demo User", Email: "demo@trading.com"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims["userId"] != "7" || claims["email"] != "demo@trading.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	other := NewService(NewDemoRepository(), "different-secret")
	if _, err := other.VerifyToken(token); err == nil {
		t.Error("token signed with another secret must not verify")
	}
}
