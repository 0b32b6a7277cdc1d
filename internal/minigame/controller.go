package minigame

import (
	"time"

	"github.com/verte-zerg/keymaster/internal/catalog"
)

const (
	// Cooldown is the minimum time between the end of one challenge and the next request.
	Cooldown = 15 * time.Second
	// TickInterval is the countdown step of an active challenge.
	TickInterval = 100 * time.Millisecond
)

// Economy is the part of the economy engine a challenge pays into.
type Economy interface {
	ApplyPresses(amount float64)
	ClickValue() float64
	UnlockedKeys() []string
}

// KeyPicker chooses reaction targets.
type KeyPicker interface {
	PickKey(keys []string) string
}

// Session is a challenge that is offered or running.
type Session struct {
	Kind          Kind
	Duration      time.Duration
	TimeRemaining time.Duration
	Score         int
	// TargetKey is set only for reaction tests.
	TargetKey string
	StartedAt time.Time
}

// Result summarises a finished challenge.
type Result struct {
	Kind      Kind
	Score     int
	Reward    float64
	StartedAt time.Time
	EndedAt   time.Time
}

// EventType identifies a controller notification.
type EventType int

const (
	EventReady EventType = iota
	EventStarted
	EventProgress
	EventInstruction
	EventEnded
)

// Event is sent to the observer on every lifecycle change.
type Event struct {
	Type          EventType
	Kind          Kind
	TimeRemaining time.Duration
	Score         int
	Instruction   string
	// Result is set for EventEnded.
	Result *Result
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for the cooldown guard and result timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithObserver registers fn to receive every Event.
func WithObserver(fn func(Event)) Option {
	return func(c *Controller) {
		c.notify = fn
	}
}

// Controller owns at most one challenge session. It is not safe for concurrent use.
type Controller struct {
	economy Economy
	picker  KeyPicker
	now     func() time.Time
	notify  func(Event)

	phase         Phase
	session       *Session
	accumulated   time.Duration
	lastCompleted time.Time
}

// NewController returns an idle controller paying into econ.
func NewController(econ Economy, picker KeyPicker, opts ...Option) *Controller {
	c := &Controller{
		economy: econ,
		picker:  picker,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current state.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Session returns a copy of the offered or active session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// CooldownRemaining returns how long new requests are still refused.
func (c *Controller) CooldownRemaining() time.Duration {
	if c.lastCompleted.IsZero() {
		return 0
	}
	remaining := Cooldown - c.now().Sub(c.lastCompleted)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RequestChallenge offers a challenge of kind. It fails while another challenge
// is offered or active and during the cooldown.
func (c *Controller) RequestChallenge(kind Kind) bool {
	if c.phase != Idle || !kind.Valid() || c.CooldownRemaining() > 0 {
		return false
	}
	p := kind.Params()
	c.session = &Session{
		Kind:          kind,
		Duration:      p.Duration,
		TimeRemaining: p.Duration,
	}
	c.phase = Offered
	c.emit(Event{Type: EventReady, Kind: kind, TimeRemaining: p.Duration})
	return true
}

// Decline discards an offered challenge without starting the cooldown.
func (c *Controller) Decline() bool {
	if c.phase != Offered {
		return false
	}
	c.session = nil
	c.phase = Idle
	return true
}

// ConfirmStart starts the offered challenge.
func (c *Controller) ConfirmStart() bool {
	if c.phase != Offered {
		return false
	}
	s := c.session
	s.Score = 0
	s.TimeRemaining = s.Duration
	s.StartedAt = c.now()
	c.accumulated = 0
	c.phase = Active
	if s.Kind == ReactionTest {
		c.nextTarget()
	}
	c.emit(Event{Type: EventStarted, Kind: s.Kind, TimeRemaining: s.TimeRemaining})
	return true
}

// OnTick advances the countdown by dt, one TickInterval step at a time.
func (c *Controller) OnTick(dt time.Duration) {
	if c.phase != Active || dt <= 0 {
		return
	}
	c.accumulated += dt
	for c.phase == Active && c.accumulated >= TickInterval {
		c.accumulated -= TickInterval
		c.step()
	}
}

// HandleKeyPress scores key against the active challenge.
func (c *Controller) HandleKeyPress(key string) bool {
	if c.phase != Active {
		return false
	}
	s := c.session
	p := s.Kind.Params()
	switch s.Kind {
	case SpeedChallenge:
		if key != catalog.SpaceKey {
			return false
		}
	case ReactionTest:
		if s.TargetKey == "" || catalog.NormalizeKey(key) != s.TargetKey {
			return false
		}
	default:
		return false
	}
	s.Score++
	c.economy.ApplyPresses(c.economy.ClickValue() * p.PressFactor)
	if s.Kind == ReactionTest {
		c.nextTarget()
	}
	c.emit(Event{Type: EventProgress, Kind: s.Kind, TimeRemaining: s.TimeRemaining, Score: s.Score})
	return true
}

func (c *Controller) step() {
	s := c.session
	s.TimeRemaining -= TickInterval
	if s.TimeRemaining < 0 {
		s.TimeRemaining = 0
	}
	c.emit(Event{Type: EventProgress, Kind: s.Kind, TimeRemaining: s.TimeRemaining, Score: s.Score})
	if s.TimeRemaining <= 0 {
		c.end()
	}
}

// end leaves the Active phase before paying out, so no further tick or key
// press can reach the session once the reward is applied.
func (c *Controller) end() {
	s := c.session
	c.phase = Idle
	c.accumulated = 0

	ended := c.now()
	result := Result{
		Kind:      s.Kind,
		Score:     s.Score,
		Reward:    float64(s.Score) * s.Kind.Params().RewardPerPoint,
		StartedAt: s.StartedAt,
		EndedAt:   ended,
	}
	c.economy.ApplyPresses(result.Reward)
	c.lastCompleted = ended
	c.session = nil
	c.emit(Event{Type: EventEnded, Kind: result.Kind, Score: result.Score, Result: &result})
}

func (c *Controller) nextTarget() {
	s := c.session
	key := ""
	if c.picker != nil {
		key = catalog.NormalizeKey(c.picker.PickKey(c.economy.UnlockedKeys()))
	}
	s.TargetKey = key
	c.emit(Event{
		Type:          EventInstruction,
		Kind:          s.Kind,
		TimeRemaining: s.TimeRemaining,
		Score:         s.Score,
		Instruction:   "Press: " + catalog.KeyLabel(key),
	})
}

func (c *Controller) emit(ev Event) {
	if c.notify != nil {
		c.notify(ev)
	}
}
