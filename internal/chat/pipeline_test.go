package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diogo/monachat/internal/api"
	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/timeline"
)

type recordingPresence struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingPresence) Composing(id models.ContactID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "composing:"+string(id)+":"+name)
}

func (r *recordingPresence) Idle(id models.ContactID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "idle:"+string(id))
}

func (r *recordingPresence) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// statusLog records the status of a contact's first message in every
// persisted snapshot
type statusLog struct {
	mu       sync.Mutex
	contact  models.ContactID
	statuses []models.Status
}

func (s *statusLog) Persist(snap timeline.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msgs := snap.Conversations[s.contact]; len(msgs) > 0 {
		s.statuses = append(s.statuses, msgs[0].Status)
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestPipeline(store *timeline.Store, replies api.ReplyClient, opts ...Option) *Pipeline {
	base := []Option{
		WithThinkTime(0, 0),
		WithClock(fixedClock(time.Date(2026, 10, 19, 14, 30, 0, 0, time.Local))),
	}
	return New(store, replies, append(base, opts...)...)
}

func TestSend_FullLifecycle(t *testing.T) {
	log := &statusLog{contact: models.ContactAlex}
	store := timeline.New(timeline.WithPersister(log))
	replies := &api.MockReplyClient{Reply: "hey you!"}
	presence := &recordingPresence{}
	p := newTestPipeline(store, replies, WithPresence(presence))

	reply, err := p.Send(context.Background(), models.ContactAlex, Draft{Text: "  hi  "})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply.Content != "hey you!" || reply.Role != models.RoleAssistant {
		t.Errorf("reply = %+v", reply)
	}
	if reply.ID == "" {
		t.Error("reply should carry an id")
	}

	msgs, _ := store.Messages(models.ContactAlex)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hi" || msgs[0].Status != models.StatusRead {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[0].Time != "2:30 PM" || msgs[0].DateKey != "2026-10-19" {
		t.Errorf("user message time = %q %q", msgs[0].Time, msgs[0].DateKey)
	}
	if msgs[1].Content != "hey you!" || msgs[1].Status != "" {
		t.Errorf("assistant message = %+v", msgs[1])
	}

	want := []models.Status{models.StatusSent, models.StatusDelivered, models.StatusRead, models.StatusRead}
	if len(log.statuses) != len(want) {
		t.Fatalf("persisted statuses = %v, want %v", log.statuses, want)
	}
	for i := range want {
		if log.statuses[i] != want[i] {
			t.Errorf("snapshot %d status = %s, want %s", i, log.statuses[i], want[i])
		}
	}

	calls := replies.Calls()
	if len(calls) != 1 || calls[0].ContactID != models.ContactAlex || calls[0].UserText != "hi" {
		t.Errorf("requests = %+v", calls)
	}

	events := presence.Events()
	if len(events) != 2 || events[0] != "composing:alex:Alex" || events[1] != "idle:alex" {
		t.Errorf("presence events = %v", events)
	}
}

func TestSend_FailureUsesFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server error", apierrors.NewAPIError(500, "/api/message", "boom"), models.FallbackServerError},
		{"transport failure", apierrors.NewNetworkError("fetch reply", "/api/message", errors.New("refused")), models.FallbackUnreachable},
		{"empty reply", apierrors.ErrEmptyReply, models.FallbackEmptyReply},
		{"malformed reply", apierrors.NewParseError("bad json", ""), models.FallbackUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := timeline.New()
			p := newTestPipeline(store, &api.MockReplyClient{Err: tt.err})

			reply, err := p.Send(context.Background(), models.ContactElly, Draft{Text: "hello?"})
			if err != nil {
				t.Fatalf("failure must not surface, got %v", err)
			}
			if reply.Content != tt.want {
				t.Errorf("reply = %q, want %q", reply.Content, tt.want)
			}

			msgs, _ := store.Messages(models.ContactElly)
			if len(msgs) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(msgs))
			}
			if msgs[0].Status != models.StatusRead {
				t.Errorf("user status = %s, want read", msgs[0].Status)
			}
		})
	}
}

func TestSubmit_EmptyDraftIsNoop(t *testing.T) {
	calls := 0
	store := timeline.New(timeline.WithPersister(timeline.PersisterFunc(func(timeline.Snapshot) error {
		calls++
		return nil
	})))
	replies := &api.MockReplyClient{Reply: "x"}
	p := newTestPipeline(store, replies)

	for _, d := range []Draft{{}, {Text: "   \n\t"}} {
		ticket, err := p.Submit(models.ContactAlex, d)
		if ticket != nil || err != nil {
			t.Errorf("Submit(%q) = %v, %v; want nil, nil", d.Text, ticket, err)
		}
	}
	if store.Len(models.ContactAlex) != 0 {
		t.Error("empty draft appended a message")
	}
	if calls != 0 {
		t.Errorf("empty draft persisted %d times", calls)
	}
	if len(replies.Calls()) != 0 {
		t.Error("empty draft reached the reply service")
	}
}

func TestSubmit_UnknownContact(t *testing.T) {
	p := newTestPipeline(timeline.New(), &api.MockReplyClient{Reply: "x"})

	_, err := p.Submit("bob", Draft{Text: "hi"})
	if !apierrors.IsUnknownContact(err) {
		t.Errorf("expected unknown contact error, got %v", err)
	}
}

func TestSubmit_StatusBeforeAwait(t *testing.T) {
	store := timeline.New()
	p := newTestPipeline(store, &api.MockReplyClient{Reply: "later"})

	ticket, err := p.Submit(models.ContactFriend, Draft{Text: "ping"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	msg, ok := store.Message(models.ContactFriend, ticket.MessageID)
	if !ok || msg.Status != models.StatusDelivered {
		t.Errorf("message before await = %+v", msg)
	}
	if p.Pending(models.ContactFriend) != 1 {
		t.Errorf("pending = %d, want 1", p.Pending(models.ContactFriend))
	}

	if _, err := ticket.Await(context.Background()); err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	select {
	case <-ticket.Done():
	default:
		t.Error("Done should be closed after Await")
	}
	if p.Pending(models.ContactFriend) != 0 {
		t.Errorf("pending = %d, want 0", p.Pending(models.ContactFriend))
	}

	// awaiting again returns the same reply without another request
	again, _ := ticket.Await(context.Background())
	if again.Content != "later" || store.Len(models.ContactFriend) != 2 {
		t.Errorf("second Await = %+v, len %d", again, store.Len(models.ContactFriend))
	}
}

func TestSubmit_ImageOnly(t *testing.T) {
	store := timeline.New()
	replies := &api.MockReplyClient{Reply: "cute pic"}
	p := newTestPipeline(store, replies)

	_, err := p.Send(context.Background(), models.ContactNotes, Draft{ImageData: "data:image/png;base64,AAAA"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	calls := replies.Calls()
	if len(calls) != 1 || calls[0].UserText != models.ImagePlaceholderText {
		t.Errorf("requests = %+v", calls)
	}

	msgs, _ := store.Messages(models.ContactNotes)
	if !msgs[0].IsImage() || msgs[0].Content != "" || msgs[0].ImageData == "" {
		t.Errorf("image message = %+v", msgs[0])
	}
}

func TestSubmit_ImageWithCaptionSendsCaption(t *testing.T) {
	replies := &api.MockReplyClient{Reply: "nice"}
	p := newTestPipeline(timeline.New(), replies)

	if _, err := p.Send(context.Background(), models.ContactNotes, Draft{Text: "my cat", ImageData: "data:image/png;base64,AAAA"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := replies.Calls()[0].UserText; got != "my cat" {
		t.Errorf("UserText = %q, want caption", got)
	}
}

func TestReplyDateKeyFromReplyInstant(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 3, 14, 23, 59, 59, 0, time.Local),
		time.Date(2026, 3, 15, 0, 0, 1, 0, time.Local),
	}
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ts := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return ts
	}

	store := timeline.New()
	p := New(store, &api.MockReplyClient{Reply: "morning"}, WithThinkTime(0, 0), WithClock(clock))

	if _, err := p.Send(context.Background(), models.ContactAlex, Draft{Text: "late"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs, _ := store.Messages(models.ContactAlex)
	if msgs[0].DateKey != "2026-03-14" || msgs[1].DateKey != "2026-03-15" {
		t.Errorf("date keys = %s, %s", msgs[0].DateKey, msgs[1].DateKey)
	}
}

func TestSerializedSends_ResolveInOrder(t *testing.T) {
	store := timeline.New()
	release := make(chan struct{})
	replies := &api.MockReplyClient{
		ReplyFunc: func(_ context.Context, req api.ReplyRequest) (string, error) {
			if req.UserText == "one" {
				<-release
			}
			return "re " + req.UserText, nil
		},
	}
	presence := &recordingPresence{}
	p := newTestPipeline(store, replies, WithPresence(presence))

	first, _ := p.Submit(models.ContactAlex, Draft{Text: "one"})
	second, _ := p.Submit(models.ContactAlex, Draft{Text: "two"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = second.Await(context.Background())
	}()

	close(release)
	wg.Wait()

	if _, err := first.Await(context.Background()); err != nil {
		t.Fatalf("first Await failed: %v", err)
	}

	msgs, _ := store.Messages(models.ContactAlex)
	var got []string
	for _, m := range msgs {
		if m.Role == models.RoleAssistant {
			got = append(got, m.Content)
		}
	}
	if len(got) != 2 || got[0] != "re one" || got[1] != "re two" {
		t.Errorf("replies = %v, want [re one re two]", got)
	}
	for _, m := range msgs {
		if m.Role == models.RoleUser && m.Status != models.StatusRead {
			t.Errorf("user message %q status = %s", m.Content, m.Status)
		}
	}

	events := presence.Events()
	want := []string{"composing:alex:Alex", "composing:alex:Alex", "idle:alex"}
	if len(events) != len(want) {
		t.Fatalf("presence events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestSerializedSends_CancelledLaterSendKeepsEarlierReply(t *testing.T) {
	store := timeline.New()
	replies := &api.MockReplyClient{
		ReplyFunc: func(ctx context.Context, req api.ReplyRequest) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return "re " + req.UserText, nil
		},
	}
	p := newTestPipeline(store, replies)

	first, _ := p.Submit(models.ContactAlex, Draft{Text: "one"})
	second, _ := p.Submit(models.ContactAlex, Draft{Text: "two"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r2, err := second.Await(ctx)
	if err != nil {
		t.Fatalf("second Await failed: %v", err)
	}
	r1, err := first.Await(context.Background())
	if err != nil {
		t.Fatalf("first Await failed: %v", err)
	}

	if r1.Content != "re one" {
		t.Errorf("first reply = %q, want re one", r1.Content)
	}
	if r2.Content != models.FallbackUnreachable {
		t.Errorf("second reply = %q, want unreachable fallback", r2.Content)
	}

	msgs, _ := store.Messages(models.ContactAlex)
	var got []string
	for _, m := range msgs {
		if m.Role == models.RoleAssistant {
			got = append(got, m.Content)
		}
	}
	if len(got) != 2 || got[0] != "re one" {
		t.Errorf("replies = %v", got)
	}
}

func TestUnserializedSends_Overlap(t *testing.T) {
	store := timeline.New()
	release := make(chan struct{})
	replies := &api.MockReplyClient{
		ReplyFunc: func(_ context.Context, req api.ReplyRequest) (string, error) {
			if req.UserText == "one" {
				<-release
			}
			return "re " + req.UserText, nil
		},
	}
	p := newTestPipeline(store, replies, WithSerializeSends(false))

	first, _ := p.Submit(models.ContactElly, Draft{Text: "one"})
	second, _ := p.Submit(models.ContactElly, Draft{Text: "two"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = first.Await(context.Background())
	}()

	if _, err := second.Await(context.Background()); err != nil {
		t.Fatalf("second Await failed: %v", err)
	}
	close(release)
	wg.Wait()

	msgs, _ := store.Messages(models.ContactElly)
	last := msgs[len(msgs)-1]
	if last.Content != "re one" {
		t.Errorf("last reply = %q, want the slower first reply", last.Content)
	}
	// each reply advanced its own message
	for _, m := range msgs {
		if m.Role == models.RoleUser && m.Status != models.StatusRead {
			t.Errorf("user message %q status = %s", m.Content, m.Status)
		}
	}
}

func TestSends_OnDifferentContactsAreIndependent(t *testing.T) {
	store := timeline.New()
	release := make(chan struct{})
	replies := &api.MockReplyClient{
		ReplyFunc: func(_ context.Context, req api.ReplyRequest) (string, error) {
			if req.ContactID == models.ContactAlex {
				<-release
			}
			return "ok", nil
		},
	}
	p := newTestPipeline(store, replies)

	alex, _ := p.Submit(models.ContactAlex, Draft{Text: "a"})
	elly, _ := p.Submit(models.ContactElly, Draft{Text: "b"})

	done := make(chan struct{})
	go func() {
		_, _ = alex.Await(context.Background())
		close(done)
	}()

	if _, err := elly.Await(context.Background()); err != nil {
		t.Fatalf("elly Await failed: %v", err)
	}
	if store.Len(models.ContactElly) != 2 {
		t.Error("elly's reply should not wait for alex")
	}

	close(release)
	<-done
}

func TestThinkTime(t *testing.T) {
	p := New(timeline.New(), &api.MockReplyClient{},
		WithThinkTime(100*time.Millisecond, 300*time.Millisecond),
		WithJitter(func(n int64) int64 { return n - 1 }),
	)
	if got := p.thinkTime(); got != 300*time.Millisecond-1 {
		t.Errorf("thinkTime = %v", got)
	}

	p = New(timeline.New(), &api.MockReplyClient{}, WithThinkTime(50*time.Millisecond, 10*time.Millisecond))
	if got := p.thinkTime(); got != 50*time.Millisecond {
		t.Errorf("thinkTime with inverted window = %v, want 50ms", got)
	}
}

func TestSend_WaitsForThinkTime(t *testing.T) {
	p := New(timeline.New(), &api.MockReplyClient{Reply: "hi"},
		WithThinkTime(40*time.Millisecond, 40*time.Millisecond),
	)

	start := time.Now()
	if _, err := p.Send(context.Background(), models.ContactAlex, Draft{Text: "yo"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("reply arrived after %v, want at least 40ms", elapsed)
	}
}

func TestActiveContact(t *testing.T) {
	replies := &api.MockReplyClient{Reply: "hey"}
	p := newTestPipeline(timeline.New(), replies)

	if p.ActiveContact() != models.ContactAlex {
		t.Errorf("default active = %s, want alex", p.ActiveContact())
	}
	if err := p.SetActiveContact("bob"); !apierrors.IsUnknownContact(err) {
		t.Errorf("expected unknown contact error, got %v", err)
	}
	if err := p.SetActiveContact(models.ContactOffice); err != nil {
		t.Fatalf("SetActiveContact failed: %v", err)
	}
	if _, err := p.SendActive(context.Background(), Draft{Text: "status?"}); err != nil {
		t.Fatalf("SendActive failed: %v", err)
	}
	if got := replies.Calls()[0].ContactID; got != models.ContactOffice {
		t.Errorf("request contact = %s, want office", got)
	}
}

func TestFallbackFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apierrors.NewAPIError(502, "", "bad gateway"), models.FallbackServerError},
		{apierrors.NewNetworkError("fetch reply", "", context.DeadlineExceeded), models.FallbackUnreachable},
		{apierrors.ErrEmptyReply, models.FallbackEmptyReply},
		{errors.New("anything else"), models.FallbackUnreachable},
	}
	for _, tt := range tests {
		if got := FallbackFor(tt.err); got != tt.want {
			t.Errorf("FallbackFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
