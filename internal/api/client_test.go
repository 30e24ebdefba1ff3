package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/models"
)

func newTestClient(t *testing.T, mock *MockHttpClient) *HTTPReplyClient {
	t.Helper()
	client, err := NewClient(
		WithHTTPClient(mock),
		WithBackendURL("https://reply.example.test/"),
		WithTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(WithHTTPClient(&MockHttpClient{}))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.BaseURL() != models.DefaultBackendURL {
		t.Errorf("BaseURL = %s, want %s", client.BaseURL(), models.DefaultBackendURL)
	}
	if client.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", client.timeout)
	}
}

func TestNewClient_RealTransport(t *testing.T) {
	client, err := NewClient(WithTimeout(10 * time.Second))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.httpClient == nil {
		t.Error("expected a transport to be created")
	}
}

func TestFetchReply_Success(t *testing.T) {
	mock := NewMockHttpClient([]byte(`{"replyText":"hey you"}`), 200)
	client := newTestClient(t, mock)

	reply, err := client.FetchReply(context.Background(), ReplyRequest{
		ContactID: models.ContactAlex,
		UserText:  "hi",
	})
	if err != nil {
		t.Fatalf("FetchReply failed: %v", err)
	}
	if reply != "hey you" {
		t.Errorf("reply = %q, want %q", reply, "hey you")
	}

	if mock.LastRequest == nil {
		t.Fatal("no request captured")
	}
	if got := mock.LastRequest.URL.String(); got != "https://reply.example.test/api/message" {
		t.Errorf("URL = %s", got)
	}
	if mock.LastRequest.Method != "POST" {
		t.Errorf("Method = %s, want POST", mock.LastRequest.Method)
	}
	if ct := mock.LastRequest.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}

	var sent map[string]string
	if err := json.Unmarshal(mock.LastBody, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent["contactId"] != "alex" || sent["userText"] != "hi" {
		t.Errorf("request body = %v", sent)
	}
}

func TestFetchReply_Failures(t *testing.T) {
	tests := []struct {
		name       string
		mock       *MockHttpClient
		wantStatus int
		check      func(error) bool
	}{
		{
			name:       "server error",
			mock:       NewMockHttpClient([]byte("boom"), 500),
			wantStatus: 500,
			check:      apierrors.IsAPIError,
		},
		{
			name:       "not found with empty body",
			mock:       NewMockHttpClient(nil, 404),
			wantStatus: 404,
			check:      apierrors.IsAPIError,
		},
		{
			name:  "transport failure",
			mock:  NewMockHttpClientWithError(errors.New("connection refused")),
			check: apierrors.IsNetworkError,
		},
		{
			name: "missing replyText",
			mock: NewMockHttpClient([]byte(`{"other":"x"}`), 200),
			check: func(err error) bool {
				return errors.Is(err, apierrors.ErrEmptyReply)
			},
		},
		{
			name: "empty replyText",
			mock: NewMockHttpClient([]byte(`{"replyText":""}`), 200),
			check: func(err error) bool {
				return errors.Is(err, apierrors.ErrEmptyReply)
			},
		},
		{
			name: "malformed body",
			mock: NewMockHttpClient([]byte(`<html>`), 200),
			check: func(err error) bool {
				var pe *apierrors.ParseError
				return errors.As(err, &pe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.mock)

			reply, err := client.FetchReply(context.Background(), ReplyRequest{ContactID: models.ContactElly, UserText: "yo"})
			if err == nil {
				t.Fatalf("expected error, got reply %q", reply)
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %T %v", err, err)
			}
			if !apierrors.IsReplyError(err) {
				t.Errorf("expected a reply error, got %v", err)
			}
			if tt.wantStatus != 0 && apierrors.GetHTTPStatus(err) != tt.wantStatus {
				t.Errorf("status = %d, want %d", apierrors.GetHTTPStatus(err), tt.wantStatus)
			}
		})
	}
}

func TestFetchReply_WhitespaceReplyIsKept(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte(`{"replyText":"  \n "}`), 200))

	reply, err := client.FetchReply(context.Background(), ReplyRequest{ContactID: models.ContactAlex, UserText: "hi"})
	if err != nil {
		t.Fatalf("FetchReply failed: %v", err)
	}
	if reply != "  \n " {
		t.Errorf("reply = %q, want the whitespace as sent", reply)
	}
}

func TestMockReplyClient(t *testing.T) {
	mock := &MockReplyClient{Reply: "ok"}

	reply, err := mock.FetchReply(context.Background(), ReplyRequest{ContactID: models.ContactNotes, UserText: "a"})
	if err != nil || reply != "ok" {
		t.Errorf("FetchReply = %q, %v", reply, err)
	}

	mock.ReplyFunc = func(_ context.Context, req ReplyRequest) (string, error) {
		return "echo " + req.UserText, nil
	}
	reply, _ = mock.FetchReply(context.Background(), ReplyRequest{UserText: "b"})
	if reply != "echo b" {
		t.Errorf("reply = %q", reply)
	}

	calls := mock.Calls()
	if len(calls) != 2 || calls[0].UserText != "a" || calls[1].UserText != "b" {
		t.Errorf("calls = %+v", calls)
	}
}
