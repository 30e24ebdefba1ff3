// Package chat drives a user message through sent, delivered and read
// while obtaining the contact's reply.
package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/diogo/monachat/internal/api"
	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/logging"
	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/timeline"
)

// Default think-time window
const (
	DefaultThinkMin = 800 * time.Millisecond
	DefaultThinkMax = 2000 * time.Millisecond
)

// Draft is what the user composed
type Draft struct {
	Text      string
	ImageData string
}

// Empty reports whether the draft has nothing to send
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Text) == "" && d.ImageData == ""
}

// Presence receives composing indicators for contacts
type Presence interface {
	Composing(id models.ContactID, name string)
	Idle(id models.ContactID)
}

type nopPresence struct{}

func (nopPresence) Composing(models.ContactID, string) {}
func (nopPresence) Idle(models.ContactID)              {}

// Pipeline sends user messages and appends the replies
type Pipeline struct {
	store    *timeline.Store
	replies  api.ReplyClient
	presence Presence

	thinkMin  time.Duration
	thinkMax  time.Duration
	serialize bool
	now       func() time.Time
	jitter    func(n int64) int64

	mu      sync.Mutex
	tails   map[models.ContactID]*Ticket
	pending map[models.ContactID]int
	active  models.ContactID
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithPresence sets the composing indicator sink
func WithPresence(p Presence) Option {
	return func(pl *Pipeline) {
		if p != nil {
			pl.presence = p
		}
	}
}

// WithThinkTime sets the window the reply delay is drawn from
func WithThinkTime(lo, hi time.Duration) Option {
	return func(pl *Pipeline) {
		if lo < 0 {
			lo = 0
		}
		if hi < lo {
			hi = lo
		}
		pl.thinkMin, pl.thinkMax = lo, hi
	}
}

// WithSerializeSends controls whether replies on one contact resolve in
// send order
func WithSerializeSends(enabled bool) Option {
	return func(pl *Pipeline) {
		pl.serialize = enabled
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(pl *Pipeline) {
		pl.now = now
	}
}

// WithJitter overrides the random source used for think time.
// fn must return a value in [0, n).
func WithJitter(fn func(n int64) int64) Option {
	return func(pl *Pipeline) {
		pl.jitter = fn
	}
}

// New creates a pipeline over store using replies as the reply boundary
func New(store *timeline.Store, replies api.ReplyClient, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		replies:   replies,
		presence:  nopPresence{},
		thinkMin:  DefaultThinkMin,
		thinkMax:  DefaultThinkMax,
		serialize: true,
		now:       time.Now,
		jitter:    rand.Int63n,
		tails:     make(map[models.ContactID]*Ticket),
		pending:   make(map[models.ContactID]int),
		active:    models.ContactAlex,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the timeline store the pipeline writes to
func (p *Pipeline) Store() *timeline.Store {
	return p.store
}

// SetActiveContact selects the contact SendActive targets
func (p *Pipeline) SetActiveContact(id models.ContactID) error {
	if !models.IsKnownContact(id) {
		return apierrors.NewUnknownContactError(string(id))
	}
	p.mu.Lock()
	p.active = id
	p.mu.Unlock()
	return nil
}

// ActiveContact returns the selected contact
func (p *Pipeline) ActiveContact() models.ContactID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Pending returns the number of unresolved sends for a contact
func (p *Pipeline) Pending(id models.ContactID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending[id]
}

// Submit appends the user message, acknowledges it as delivered and shows
// the composing indicator. An empty draft is ignored and yields a nil
// ticket. The reply is obtained by awaiting the ticket.
func (p *Pipeline) Submit(id models.ContactID, draft Draft) (*Ticket, error) {
	if draft.Empty() {
		return nil, nil
	}

	contact, err := p.store.Contact(id)
	if err != nil {
		return nil, err
	}

	now := p.now()
	text := strings.TrimSpace(draft.Text)
	msg := models.Message{
		Role:      models.RoleUser,
		Type:      models.TypeText,
		Content:   text,
		Time:      timeline.FormatTime(now),
		DateKey:   timeline.DateKeyOf(now),
		Status:    models.StatusSent,
		Timestamp: now,
	}
	if draft.ImageData != "" {
		msg.Type = models.TypeImage
		msg.ImageData = draft.ImageData
	}

	msgID, err := p.store.Append(id, msg)
	if err != nil {
		return nil, err
	}

	userText := text
	if userText == "" {
		userText = models.ImagePlaceholderText
	}
	ticket := &Ticket{
		ContactID: id,
		MessageID: msgID,
		pipeline:  p,
		request:   api.ReplyRequest{ContactID: id, UserText: userText},
		done:      make(chan struct{}),
	}

	if err := p.store.Advance(id, msgID, models.StatusDelivered); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.serialize {
		ticket.prev = p.tails[id]
		p.tails[id] = ticket
	}
	p.pending[id]++
	p.mu.Unlock()

	p.presence.Composing(id, contact.Name)

	logging.WithContact(id).Debug("message submitted", "message_id", msgID, "image", msg.IsImage())
	return ticket, nil
}

// Send submits draft and waits for the reply
func (p *Pipeline) Send(ctx context.Context, id models.ContactID, draft Draft) (models.Message, error) {
	ticket, err := p.Submit(id, draft)
	if err != nil || ticket == nil {
		return models.Message{}, err
	}
	return ticket.Await(ctx)
}

// SendActive sends draft to the active contact
func (p *Pipeline) SendActive(ctx context.Context, draft Draft) (models.Message, error) {
	return p.Send(ctx, p.ActiveContact(), draft)
}

// thinkTime draws the minimum reply delay
func (p *Pipeline) thinkTime() time.Duration {
	span := int64(p.thinkMax - p.thinkMin)
	if span <= 0 {
		return p.thinkMin
	}
	return p.thinkMin + time.Duration(p.jitter(span))
}

// fetch obtains the reply text, substituting a fallback on failure.
// It returns the failure alongside the fallback so callers can log it.
func (p *Pipeline) fetch(ctx context.Context, req api.ReplyRequest) (string, error) {
	timer := time.NewTimer(p.thinkTime())
	defer timer.Stop()

	reply, err := p.replies.FetchReply(ctx, req)
	if err != nil {
		reply = FallbackFor(err)
	}

	// The think timer is cosmetic pacing; a cancelled context skips it.
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	return reply, err
}

// finish records the reply for a resolved ticket
func (p *Pipeline) finish(t *Ticket, reply string) (models.Message, error) {
	defer p.release(t)

	if err := p.store.Advance(t.ContactID, t.MessageID, models.StatusRead); err != nil {
		return models.Message{}, err
	}

	now := p.now()
	msg := models.Message{
		Role:      models.RoleAssistant,
		Type:      models.TypeText,
		Content:   reply,
		Time:      timeline.FormatTime(now),
		DateKey:   timeline.DateKeyOf(now),
		Timestamp: now,
	}
	id, err := p.store.Append(t.ContactID, msg)
	if err != nil {
		return models.Message{}, err
	}
	msg.ID = id
	return msg, nil
}

// release drops t from the pending set and clears presence when it was
// the contact's last outstanding send
func (p *Pipeline) release(t *Ticket) {
	p.mu.Lock()
	p.pending[t.ContactID]--
	remaining := p.pending[t.ContactID]
	if remaining <= 0 {
		delete(p.pending, t.ContactID)
	}
	if p.tails[t.ContactID] == t {
		delete(p.tails, t.ContactID)
	}
	p.mu.Unlock()

	if remaining <= 0 {
		p.presence.Idle(t.ContactID)
	}
}

// FallbackFor maps a reply boundary failure to the text shown instead
func FallbackFor(err error) string {
	switch {
	case errors.Is(err, apierrors.ErrEmptyReply):
		return models.FallbackEmptyReply
	case apierrors.IsAPIError(err):
		return models.FallbackServerError
	default:
		return models.FallbackUnreachable
	}
}

// Ticket tracks one submitted message until its reply is recorded
type Ticket struct {
	ContactID models.ContactID
	MessageID string

	pipeline *Pipeline
	request  api.ReplyRequest
	prev     *Ticket

	once  sync.Once
	done  chan struct{}
	reply models.Message
	err   error
}

// Done is closed once the reply has been recorded
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Await obtains the reply, moves the message to read and appends the
// reply to the timeline. Reply failures are absorbed into fallback text.
// With serialized sends, the previous ticket on the same contact is
// resolved first, detached from ctx so that cancelling this send leaves
// the earlier reply intact. Await may be called repeatedly; the work
// happens once.
func (t *Ticket) Await(ctx context.Context) (models.Message, error) {
	t.once.Do(func() {
		defer close(t.done)

		if t.prev != nil {
			_, _ = t.prev.Await(context.WithoutCancel(ctx))
			t.prev = nil
		}

		log := logging.WithContact(t.ContactID)
		reply, err := t.pipeline.fetch(ctx, t.request)
		if err != nil {
			log.Warn("reply failed, using fallback", "message_id", t.MessageID, "error", err)
		} else {
			log.Debug("reply received", "message_id", t.MessageID)
		}

		t.reply, t.err = t.pipeline.finish(t, reply)
	})
	return t.reply, t.err
}
