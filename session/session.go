// Package session runs one connected client: it joins the client's group,
// writes shaped group events to the transport in order, and hands inbound
// messages to the role's action handler.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"ordercast/groups"
	"ordercast/protocol"
)

var (
	ErrMissingIdentity = errors.New("session: role requires a customer email")
	ErrClosed          = errors.New("session: closed")
)

type LogFunc func(format string, args ...any)

type State int32

const (
	Connecting State = iota
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Transport is the client connection. ReadMessage blocks until a message
// arrives or the transport fails; Close must unblock it.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Snapshotter computes the counts a notification session sends on connect.
type Snapshotter interface {
	OwnerCounts(ctx context.Context) (*protocol.PendingCount, error)
	CustomerCount(ctx context.Context, email string) (*protocol.CustomerNotification, error)
}

const DefaultSendBuffer = 64

// Deps are the collaborators shared by every session.
type Deps struct {
	Registry    *groups.Registry
	Publisher   groups.Publisher // defaults to Registry
	Snapshotter Snapshotter      // optional
	SendBuffer  int
	LogFunc     LogFunc
	Debug       bool
}

type Session struct {
	ID       string
	role     Role
	identity string
	group    string

	deps    Deps
	handler handler
	ingest  *protocol.Ingestor

	out        chan protocol.Event
	done       chan struct{}
	writerDone chan struct{}
	state      atomic.Int32

	mu        sync.Mutex
	transport Transport
	joined    []string
	closeOnce sync.Once
}

// New validates role preconditions and returns a session in the Connecting
// state. Customer-scoped roles fail with ErrMissingIdentity when identity is
// empty.
func New(role Role, identity string, deps Deps) (*Session, error) {
	if _, ok := roleNames[role]; !ok {
		return nil, fmt.Errorf("session: unknown role %d", int(role))
	}
	if role.RequiresIdentity() && identity == "" {
		return nil, ErrMissingIdentity
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("session: registry is required")
	}
	if deps.Publisher == nil {
		deps.Publisher = deps.Registry
	}
	if deps.SendBuffer <= 0 {
		deps.SendBuffer = DefaultSendBuffer
	}
	if deps.LogFunc == nil {
		deps.LogFunc = log.Printf
	}

	s := &Session{
		ID:         uuid.New().String(),
		role:       role,
		identity:   identity,
		group:      role.Group(identity),
		deps:       deps,
		out:        make(chan protocol.Event, deps.SendBuffer),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	s.handler = newHandler(s)
	s.ingest = protocol.NewIngestor(s.handler)
	return s, nil
}

func (s *Session) Role() Role       { return s.role }
func (s *Session) Identity() string { return s.identity }
func (s *Session) Group() string    { return s.group }
func (s *Session) State() State     { return State(s.state.Load()) }

func (s *Session) logf(format string, args ...any) {
	s.deps.LogFunc("session %s (%s): "+format, append([]any{s.ID[:8], s.role}, args...)...)
}

func (s *Session) debugf(format string, args ...any) {
	if s.deps.Debug {
		s.logf(format, args...)
	}
}

// Run joins the session's group, sends the connect snapshot, then reads
// client messages until the transport fails, the client closes, or ctx is
// cancelled. The session is Closed when Run returns.
func (s *Session) Run(ctx context.Context, t Transport) error {
	s.mu.Lock()
	if s.State() != Connecting {
		s.mu.Unlock()
		return ErrClosed
	}
	s.transport = t
	s.deps.Registry.Join(s.group, s)
	s.joined = append(s.joined, s.group)
	s.state.Store(int32(Connected))
	s.mu.Unlock()
	defer s.Close()

	s.debugf("joined %s", s.group)

	// The snapshot is written before the writer starts so it is always the
	// first message. Events published meanwhile wait in the mailbox and
	// follow it, even when they were computed from an older store read; the
	// badge then lags until the next change. Reading before Join instead
	// would lose changes made between the read and the join.
	if err := s.sendSnapshot(ctx, t); err != nil {
		s.logf("write snapshot: %v", err)
		s.Close()
		return nil
	}

	go s.writeLoop(t)

	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	for {
		data, err := t.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.debugf("read: %v", err)
			}
			break
		}
		s.handleInbound(ctx, data)
	}

	s.Close()
	<-s.writerDone
	return nil
}

func (s *Session) handleInbound(ctx context.Context, data []byte) {
	err := s.ingest.HandleRaw(ctx, data)
	switch {
	case err == nil:
	case errors.Is(err, protocol.ErrMalformed), errors.Is(err, protocol.ErrUnknownAction):
		s.logf("dropped client payload: %v", err)
	default:
		s.logf("handle action: %v", err)
	}
}

// sendSnapshot writes the current counts for notification roles. A store
// failure is logged and the session stays connected.
func (s *Session) sendSnapshot(ctx context.Context, t Transport) error {
	if s.deps.Snapshotter == nil {
		return nil
	}
	var ev protocol.Event
	switch s.role {
	case OwnerNotification:
		pc, err := s.deps.Snapshotter.OwnerCounts(ctx)
		if err != nil {
			s.logf("snapshot: %v", err)
			return nil
		}
		ev = pc
	case CustomerNotification:
		cn, err := s.deps.Snapshotter.CustomerCount(ctx, s.identity)
		if err != nil {
			s.logf("snapshot: %v", err)
			return nil
		}
		ev = cn
	default:
		return nil
	}
	return s.write(t, ev)
}

// Deliver queues ev for the writer. It never blocks: when the mailbox is
// full or the session is closed the event is dropped.
func (s *Session) Deliver(ev protocol.Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- ev:
	default:
		s.logf("mailbox full, dropping %s", ev.EventType())
	}
}

func (s *Session) writeLoop(t Transport) {
	defer close(s.writerDone)
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.out:
			if err := s.write(t, ev); err != nil {
				s.logf("write: %v", err)
				s.Close()
				return
			}
		}
	}
}

// write shapes ev for this role and sends it. Events the role ignores are
// not an error.
func (s *Session) write(t Transport, ev protocol.Event) error {
	msg, err := protocol.Shape(s.handler, ev)
	if err != nil {
		s.logf("shape: %v", err)
		return nil
	}
	if msg == nil {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logf("marshal %s: %v", ev.EventType(), err)
		return nil
	}
	return t.WriteMessage(data)
}

// Close leaves every joined group, stops the writer and closes the
// transport. It is safe to call more than once and from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state.Store(int32(Closed))
		for _, g := range s.joined {
			s.deps.Registry.Leave(g, s)
		}
		s.joined = nil
		t := s.transport
		s.mu.Unlock()

		close(s.done)
		if t != nil {
			t.Close()
		}
		s.debugf("closed")
	})
}

func (s *Session) publish(ctx context.Context, group string, ev protocol.Event) error {
	if err := s.deps.Publisher.Publish(ctx, group, ev); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.EventType(), group, err)
	}
	return nil
}

// ignoreEvent is the arm every role uses for group events it has no
// message for.
func (s *Session) ignoreEvent(ev protocol.Event) any {
	s.logf("ignoring foreign event %s", ev.EventType())
	return nil
}

func (s *Session) ignoreAction(action string) error {
	s.logf("ignoring action %s not accepted by this role", action)
	return nil
}

var _ groups.Member = (*Session)(nil)
