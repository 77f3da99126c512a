package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reviewpromax/reviewpromax-backend/internal/auth"
	pkgerrors "github.com/reviewpromax/reviewpromax-backend/pkg/errors"
)

type testAuthService struct {
	loginFn   func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	refreshFn func(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error)
	logoutFn  func(ctx context.Context, accessToken string) error
}

func (s *testAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return &auth.LoginResponse{}, nil
}

func (s *testAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, req)
	}
	return &auth.RefreshResponse{}, nil
}

func (s *testAuthService) Logout(ctx context.Context, accessToken string) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, accessToken)
	}
	return nil
}

type testRegisterService struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) error
}

func (s *testRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return nil
}

func TestRegisterSuccess(t *testing.T) {
	var captured auth.RegisterRequest
	svc := &testRegisterService{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) error {
			captured = req
			return nil
		},
	}

	body := `{"first_name":"Jane","last_name":"Doe","email":"jane@example.com","password":"longenough","accept_tos":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Register(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if captured.Email != "jane@example.com" {
		t.Fatalf("unexpected email %s", captured.Email)
	}
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	body := `{"first_name":"Jane","email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Register(&testRegisterService{}, testControllerLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := &testAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			if req.Email != "jane@example.com" {
				t.Fatalf("unexpected email %s", req.Email)
			}
			return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}

	body := `{"email":"jane@example.com","password":"secretpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Login(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AccessToken != "access" {
		t.Fatalf("unexpected token %s", envelope.Data.AccessToken)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := &testAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		},
	}

	body := `{"email":"jane@example.com","password":"wrongpass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Login(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestLogoutRequiresToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	Logout(&testAuthService{}, testControllerLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	var captured string
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, accessToken string) error {
			captured = accessToken
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer the-token")
	resp := httptest.NewRecorder()
	Logout(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured != "the-token" {
		t.Fatalf("unexpected token %q", captured)
	}
}
