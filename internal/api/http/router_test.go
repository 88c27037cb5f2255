package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/studioops/support-mailroom/internal/api/http/handlers"
	"github.com/studioops/support-mailroom/internal/auth"
	"github.com/studioops/support-mailroom/internal/config"
	"github.com/studioops/support-mailroom/internal/ingestion"
	"github.com/studioops/support-mailroom/internal/notification"
	"github.com/studioops/support-mailroom/internal/observability"
	"github.com/studioops/support-mailroom/internal/repository"
)

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	pipeline := ingestion.NewPipeline(config.MailroomConfig{
		DedupWindowHours:    24,
		SimilarityThreshold: 0.7,
	}, ingestion.PipelineDependencies{
		MappingRepo: repository.NewMemoryMappingRepository(),
		TicketRepo:  repository.NewMemoryTicketRepository(),
		Logger:      logger,
		Metrics:     metrics,
	})

	router := notification.NewRouter(notification.RouterDependencies{
		NotificationRepo: repository.NewMemoryNotificationRepository(),
		PreferenceRepo:   repository.NewMemoryPreferenceRepository(),
		DigestRepo:       repository.NewMemoryDigestRepository(),
		Email:            notification.LogEmailSender{Logger: logger},
		Chat:             notification.NewWebhookChatSender(config.NotificationConfig{}, logger),
		SMS:              notification.LogSMSSender{Logger: logger},
		InApp:            notification.LogInAppSender{Logger: logger},
		Logger:           logger,
		Metrics:          metrics,
	})

	tokens := auth.NewTokenManager("test-secret", 60)
	token, _, err := tokens.GenerateToken("test-suite")
	if err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(nil, nil),
		Mailroom:       handlers.NewMailroomHandler(pipeline),
		Notifications:  handlers.NewNotificationsHandler(router),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})
	return app, token
}

func TestInboundEmailWebhook(t *testing.T) {
	app, token := newTestApp(t)

	body := `{"from": "alice@x.com", "to": ["support@studio.com"], "subject": "Help", "text": "it broke"}`
	req := httptest.NewRequest("POST", "/webhooks/email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var decoded struct {
		Data struct {
			TicketID string `json:"ticket_id"`
			Created  bool   `json:"created"`
		} `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if !decoded.Data.Created || decoded.Data.TicketID == "" {
		t.Errorf("unexpected response: %+v", decoded.Data)
	}

	// The same payload again dedups to the existing ticket with a 200.
	req = httptest.NewRequest("POST", "/webhooks/email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("duplicate status = %d, want 200", resp.StatusCode)
	}
}

func TestInboundEmailWebhookRejectsBadPayload(t *testing.T) {
	app, token := newTestApp(t)

	req := httptest.NewRequest("POST", "/webhooks/email", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/webhooks/email", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHealthLiveIsOpen(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	app, token := newTestApp(t)

	send := `{"user_ids": ["u1"], "type": "TICKET_UPDATED", "title": "Update", "message": "hi"}`
	req := httptest.NewRequest("POST", "/notifications", strings.NewReader(send))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("send status = %d, body %s", resp.StatusCode, raw)
	}

	req = httptest.NewRequest("GET", "/users/u1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list struct {
		Data []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if len(list.Data) != 1 || list.Data[0].Title != "Update" {
		t.Fatalf("list = %+v", list.Data)
	}

	req = httptest.NewRequest("POST", "/notifications/"+list.Data[0].ID+"/read", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("mark read status = %d", resp.StatusCode)
	}

	update := `{"channels": {"EMAIL": false}}`
	req = httptest.NewRequest("PUT", "/users/u1/notification-preferences", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("update prefs status = %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/users/u1/notification-preferences", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var prefs struct {
		Data struct {
			Channels map[string]bool `json:"channels"`
		} `json:"data"`
	}
	raw, _ = io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &prefs); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if enabled, ok := prefs.Data.Channels["EMAIL"]; !ok || enabled {
		t.Errorf("channels = %v, want EMAIL disabled", prefs.Data.Channels)
	}
}
