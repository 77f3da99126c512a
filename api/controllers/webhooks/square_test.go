package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	squarewebhook "github.com/reviewpromax/reviewpromax-backend/internal/webhooks/square"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

type stubWebhookService struct {
	handled []string
	err     error
}

func (s *stubWebhookService) HandleEvent(_ context.Context, event *squarewebhook.SquareWebhookEvent) error {
	if s.err != nil {
		return s.err
	}
	s.handled = append(s.handled, event.EventID)
	return nil
}

type stubGuard struct {
	seen    map[string]bool
	deleted []string
}

func newStubGuard() *stubGuard {
	return &stubGuard{seen: map[string]bool{}}
}

func (g *stubGuard) CheckAndMark(_ context.Context, eventID string) (bool, error) {
	if g.seen[eventID] {
		return true, nil
	}
	g.seen[eventID] = true
	return false, nil
}

func (g *stubGuard) Delete(_ context.Context, eventID string) error {
	g.deleted = append(g.deleted, eventID)
	delete(g.seen, eventID)
	return nil
}

type stubSquareClient struct{ secret string }

func (c stubSquareClient) SigningSecret() string { return c.secret }

func signPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestSquareWebhookRejectsMissingSignature(t *testing.T) {
	handler := SquareWebhook(&stubWebhookService{}, stubSquareClient{secret: "s"}, newStubGuard(), webhookTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/square", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSquareWebhookRejectsBadSignature(t *testing.T) {
	handler := SquareWebhook(&stubWebhookService{}, stubSquareClient{secret: "s"}, newStubGuard(), webhookTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/square", strings.NewReader(`{}`))
	req.Header.Set("Square-Signature", "deadbeef")
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code == http.StatusOK {
		t.Fatal("expected signature rejection")
	}
}

func TestSquareWebhookProcessesEventOnce(t *testing.T) {
	svc := &stubWebhookService{}
	guard := newStubGuard()
	handler := SquareWebhook(svc, stubSquareClient{secret: "s"}, guard, webhookTestLogger())

	payload := `{"event_id":"evt-1","type":"payment.updated","data":{"object":{"payment":{"id":"pay-1","status":"FAILED"}}}}`
	sig := signPayload(payload, "s")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/square", strings.NewReader(payload))
		req.Header.Set("Square-Signature", sig)
		resp := httptest.NewRecorder()
		handler(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i, resp.Code)
		}
	}

	if len(svc.handled) != 1 {
		t.Fatalf("expected event handled once, got %d", len(svc.handled))
	}
}

func TestSquareWebhookReleasesGuardOnFailure(t *testing.T) {
	svc := &stubWebhookService{err: context.DeadlineExceeded}
	guard := newStubGuard()
	handler := SquareWebhook(svc, stubSquareClient{secret: "s"}, guard, webhookTestLogger())

	payload := `{"event_id":"evt-2","type":"payment.updated","data":{"object":{"payment":{"id":"pay-2","status":"FAILED"}}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/square", strings.NewReader(payload))
	req.Header.Set("Square-Signature", signPayload(payload, "s"))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code == http.StatusOK {
		t.Fatal("expected error response")
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt-2" {
		t.Fatalf("expected guard released for evt-2, got %v", guard.deleted)
	}
}
