package ingestion

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

func TestRawEmailUnmarshal(t *testing.T) {
	t.Run("camelCase keys", func(t *testing.T) {
		var raw RawEmail
		payload := `{
			"from": "alice@x.com",
			"to": ["support@studio.com"],
			"subject": "Hi",
			"text": "hello",
			"messageId": "m1",
			"inReplyTo": "m0",
			"references": ["m0"]
		}`
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			t.Fatal(err)
		}
		if raw.From != "alice@x.com" || raw.MessageID != "m1" || raw.InReplyTo != "m0" {
			t.Errorf("unexpected decode: %+v", raw)
		}
		if len(raw.To) != 1 || raw.To[0] != "support@studio.com" {
			t.Errorf("to = %v", raw.To)
		}
	})

	t.Run("header-style keys", func(t *testing.T) {
		var raw RawEmail
		payload := `{"message-id": "m1", "in-reply-to": "m0", "body": "hello"}`
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			t.Fatal(err)
		}
		if raw.MessageID != "m1" || raw.InReplyTo != "m0" || raw.Text != "hello" {
			t.Errorf("unexpected decode: %+v", raw)
		}
	})

	t.Run("scalar recipients become lists", func(t *testing.T) {
		var raw RawEmail
		payload := `{"to": "support@studio.com", "cc": "ops@studio.com", "references": "m0"}`
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			t.Fatal(err)
		}
		if len(raw.To) != 1 || raw.To[0] != "support@studio.com" {
			t.Errorf("to = %v", raw.To)
		}
		if len(raw.CC) != 1 || raw.CC[0] != "ops@studio.com" {
			t.Errorf("cc = %v", raw.CC)
		}
		if len(raw.References) != 1 || raw.References[0] != "m0" {
			t.Errorf("references = %v", raw.References)
		}
	})

	t.Run("mistyped fields are ignored", func(t *testing.T) {
		var raw RawEmail
		payload := `{"from": 42, "subject": ["a"], "to": 7}`
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			t.Fatal(err)
		}
		if raw.From != "" || raw.Subject != "" || raw.To != nil {
			t.Errorf("unexpected decode: %+v", raw)
		}
	})
}

func TestNormalize(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("defaults for missing envelope", func(t *testing.T) {
		msg := Normalize(RawEmail{Text: "hello"}, now)
		if msg.From != UnknownSender {
			t.Errorf("from = %q", msg.From)
		}
		if msg.Subject != NoSubject {
			t.Errorf("subject = %q", msg.Subject)
		}
		if msg.To == nil || len(msg.To) != 0 {
			t.Errorf("to = %v, want empty non-nil list", msg.To)
		}
		if !msg.ReceivedAt.Equal(now) {
			t.Errorf("receivedAt = %v", msg.ReceivedAt)
		}
		if msg.ID == "" {
			t.Error("internal id must be assigned")
		}
	})

	t.Run("html stripped when no text body", func(t *testing.T) {
		msg := Normalize(RawEmail{HTML: "<p>Hello&nbsp;there</p>"}, now)
		if msg.Body != "Hello there" {
			t.Errorf("body = %q", msg.Body)
		}
		if msg.HTMLBody == "" {
			t.Error("raw html should be preserved")
		}
	})

	t.Run("text body preferred over html", func(t *testing.T) {
		msg := Normalize(RawEmail{Text: "plain", HTML: "<p>rich</p>"}, now)
		if msg.Body != "plain" {
			t.Errorf("body = %q", msg.Body)
		}
	})

	t.Run("provider date wins over clock", func(t *testing.T) {
		sent := time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
		msg := Normalize(RawEmail{Text: "hello", Date: &sent}, now)
		if !msg.ReceivedAt.Equal(sent) {
			t.Errorf("receivedAt = %v, want %v", msg.ReceivedAt, sent)
		}
	})

	t.Run("attachments decoded from base64", func(t *testing.T) {
		content := base64.StdEncoding.EncodeToString([]byte("file-bytes"))
		msg := Normalize(RawEmail{
			Text: "see attached",
			Attachments: []RawAttachment{
				{FileName: "a.txt", ContentType: "text/plain", Content: content},
			},
		}, now)
		if len(msg.Attachments) != 1 {
			t.Fatalf("attachments = %d", len(msg.Attachments))
		}
		att := msg.Attachments[0]
		if string(att.Content) != "file-bytes" {
			t.Errorf("content = %q", att.Content)
		}
		if att.SizeBytes != int64(len("file-bytes")) {
			t.Errorf("size = %d", att.SizeBytes)
		}
	})
}

func TestSenderHelpers(t *testing.T) {
	tests := []struct {
		from       string
		wantAddr   string
		wantName   string
		wantDomain string
	}{
		{"Alice Smith <alice@x.com>", "alice@x.com", "Alice Smith", "x.com"},
		{"bob@y.org", "bob@y.org", "bob", "y.org"},
		{UnknownSender, "unknown@example.com", "unknown", "example.com"},
	}
	for _, tt := range tests {
		if got := SenderAddress(tt.from); got != tt.wantAddr {
			t.Errorf("SenderAddress(%q) = %q, want %q", tt.from, got, tt.wantAddr)
		}
		if got := SenderName(tt.from); got != tt.wantName {
			t.Errorf("SenderName(%q) = %q, want %q", tt.from, got, tt.wantName)
		}
		if got := SenderDomain(tt.from); got != tt.wantDomain {
			t.Errorf("SenderDomain(%q) = %q, want %q", tt.from, got, tt.wantDomain)
		}
	}
}
