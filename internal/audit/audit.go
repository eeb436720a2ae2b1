package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action names recorded for domain events.
const (
	ActionSessionStarted        = "SessionStarted"
	ActionSessionEnded          = "SessionEnded"
	ActionSessionTerminated     = "SessionTerminated"
	ActionAccountDeposit        = "AccountDeposit"
	ActionAccountWithdrawal     = "AccountWithdrawal"
	ActionSessionCharge         = "SessionCharge"
	ActionAccountCreated        = "AccountCreated"
	ActionUserRegistered        = "UserRegistered"
	ActionUserStatusChanged     = "UserStatusChanged"
	ActionComputerRegistered    = "ComputerRegistered"
	ActionComputerStatusChanged = "ComputerStatusChanged"
	ActionComputerRemoved       = "ComputerRemoved"
)

// Entity names.
const (
	EntitySession  = "Session"
	EntityAccount  = "Account"
	EntityUser     = "User"
	EntityComputer = "Computer"
)

// Event is one audit record.
type Event struct {
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  uuid.UUID `json:"entity_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail"`
}

// Sink delivers events to one destination.
type Sink interface {
	Name() string
	Record(ctx context.Context, event Event) error
}

// Recorder fans events out to its sinks in the background.
// Sink failures are logged and never reach the caller.
type Recorder struct {
	sinks   []Sink
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRecorder creates a Recorder. A non-positive timeout defaults to five seconds.
func NewRecorder(logger *slog.Logger, timeout time.Duration, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{sinks: sinks, logger: logger, timeout: timeout}
}

// Record schedules delivery of event and returns immediately.
func (r *Recorder) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	for _, sink := range r.sinks {
		r.wg.Add(1)
		go r.deliver(sink, event)
	}
}

func (r *Recorder) deliver(sink Sink, event Event) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("audit sink panicked", "sink", sink.Name(), "action", event.Action, "panic", p)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := sink.Record(ctx, event); err != nil {
		r.logger.Warn("failed to record audit event",
			"sink", sink.Name(),
			"action", event.Action,
			"entity", event.Entity,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}

// Wait blocks until every scheduled delivery has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
