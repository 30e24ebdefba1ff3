package api

import (
	"context"
	"sync"
)

// MockReplyClient is a mock implementation of ReplyClient for testing
type MockReplyClient struct {
	mu sync.Mutex

	// Reply is returned when ReplyFunc is nil
	Reply string
	Err   error

	// ReplyFunc overrides Reply/Err when set
	ReplyFunc func(ctx context.Context, req ReplyRequest) (string, error)

	// Requests records every call in arrival order
	Requests []ReplyRequest
}

// Ensure MockReplyClient implements ReplyClient
var _ ReplyClient = (*MockReplyClient)(nil)

// FetchReply implements ReplyClient
func (m *MockReplyClient) FetchReply(ctx context.Context, req ReplyRequest) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	fn, reply, err := m.ReplyFunc, m.Reply, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return reply, err
}

// Calls returns a copy of the recorded requests
func (m *MockReplyClient) Calls() []ReplyRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ReplyRequest, len(m.Requests))
	copy(out, m.Requests)
	return out
}
