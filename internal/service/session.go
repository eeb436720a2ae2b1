package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/pkg/errors"
	"internet-cafe-api/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RemainingTime is the usage time an account balance still buys on the current computer.
type RemainingTime struct {
	SessionID   uuid.UUID       `json:"session_id"`
	Balance     decimal.Decimal `json:"balance"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	AccruedCost decimal.Decimal `json:"accrued_cost"`
	Remaining   time.Duration   `json:"-"`
	// RemainingSeconds mirrors Remaining for JSON clients.
	RemainingSeconds int64 `json:"remaining_seconds"`
	Unlimited        bool  `json:"unlimited"`
}

// SessionService is the session engine. Every start and close runs in one transaction
// spanning the session row, the computer status and the account balance.
type SessionService struct {
	store  Store
	audit  AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(store Store, recorder AuditRecorder, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SessionService{
		store:  store,
		audit:  recorder,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// StartSession opens a session for the user on an Available computer and marks the computer InUse.
// The account must hold at least a quarter hour at the computer's rate.
func (s *SessionService) StartSession(ctx context.Context, userID, computerID, actor uuid.UUID) (*model.SessionView, error) {
	var view *model.SessionView
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		user, err := repos.Users.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.Status == model.UserStatusSuspended {
			return conflict(ReasonUserSuspended, "user is suspended")
		}

		if _, err := repos.Sessions.GetActiveSessionByUser(ctx, userID); err == nil {
			return repository.ErrActiveSessionExists
		} else if !isErr(err, repository.ErrSessionNotFound) {
			return err
		}

		computer, err := repos.Computers.GetComputerByID(ctx, computerID)
		if err != nil {
			return err
		}
		if computer.UsageStatus != model.StatusAvailable {
			return repository.ErrComputerNotAvailable
		}

		account, err := repos.Accounts.GetAccountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		required := MinimumReservation(computer.HourlyRate)
		if account.Balance.LessThan(required) {
			return &repository.InsufficientBalanceError{Current: account.Balance, Required: required}
		}

		// The conditional update serializes concurrent starts on the same computer.
		if err := repos.Computers.CompareAndSetStatus(ctx, computerID, model.StatusAvailable, model.StatusInUse, actor); err != nil {
			return err
		}

		session := &model.Session{
			ID:         uuid.New(),
			UserID:     userID,
			ComputerID: computerID,
			StartTime:  s.now(),
			TotalCost:  decimal.Zero,
			Status:     model.SessionActive,
		}
		if err := repos.Sessions.CreateSession(ctx, session, actor); err != nil {
			return err
		}

		view = &model.SessionView{Session: *session, UserName: user.Username, ComputerName: computer.Name}
		return nil
	})
	if err != nil {
		return nil, translate(err, "start session")
	}

	s.audit.Record(audit.Event{
		Action:   audit.ActionSessionStarted,
		Entity:   audit.EntitySession,
		EntityID: view.ID,
		ActorID:  actor,
		Detail:   fmt.Sprintf("Session started for user %s on computer %s", view.UserName, view.ComputerName),
	})
	s.logger.Info("session started", "session_id", view.ID, "user_id", userID, "computer_id", computerID)

	return view, nil
}

// EndSession closes an active session as Completed and charges its cost.
// If the account can no longer cover the cost nothing is changed and InsufficientFunds is returned.
func (s *SessionService) EndSession(ctx context.Context, sessionID uuid.UUID, notes string, actor uuid.UUID) (*model.SessionView, error) {
	return s.closeSession(ctx, sessionID, model.SessionCompleted, notes, actor)
}

// TerminateSession force-closes an active session as Terminated.
// It always succeeds for an active session: the account is charged what it can cover
// and any shortfall is written to the session notes.
func (s *SessionService) TerminateSession(ctx context.Context, sessionID uuid.UUID, reason string, actor uuid.UUID) (*model.SessionView, error) {
	return s.closeSession(ctx, sessionID, model.SessionTerminated, reason, actor)
}

func (s *SessionService) closeSession(ctx context.Context, sessionID uuid.UUID, status model.SessionStatus, notes string, actor uuid.UUID) (*model.SessionView, error) {
	if err := validation.ValidateMaxLength("notes", notes, validation.MaxSessionNotesLength); err != nil {
		return nil, errors.ValidationError(err.Error())
	}

	var (
		view   *model.SessionView
		charge *model.Transaction
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		session, err := repos.Sessions.GetSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !session.IsActive() {
			return repository.ErrSessionNotActive
		}

		computer, err := repos.Computers.GetComputerByID(ctx, session.ComputerID)
		if err != nil {
			return err
		}

		end := s.now()
		elapsed := end.Sub(session.StartTime)
		if elapsed < 0 {
			elapsed = 0
		}
		cost := CalculateCost(elapsed, computer.HourlyRate)

		session.EndTime = &end
		session.DurationSeconds = int64(elapsed / time.Second)
		session.TotalCost = cost
		session.Status = status
		session.Notes = notes

		charged := cost
		var account *model.Account
		if cost.IsPositive() {
			account, err = repos.Accounts.GetAccountByUserID(ctx, session.UserID)
			if err != nil {
				return err
			}
			if status == model.SessionTerminated {
				// Lock the balance so the capped amount cannot be raced below.
				account, err = repos.Accounts.LockAccount(ctx, account.ID)
				if err != nil {
					return err
				}
				if account.Balance.LessThan(cost) {
					charged = decimal.Max(account.Balance, decimal.Zero)
					session.Notes = appendNote(session.Notes, "unpaid: "+cost.Sub(charged).StringFixed(2))
				}
			}
		}

		if err := repos.Sessions.CloseSession(ctx, session, actor); err != nil {
			return err
		}
		if err := repos.Computers.CompareAndSetStatus(ctx, computer.ID, model.StatusInUse, model.StatusAvailable, actor); err != nil {
			return err
		}

		if charged.IsPositive() {
			charge, err = chargeForSession(ctx, repos, account, session.ID, charged, actor)
			if err != nil {
				return err
			}
		}

		view = &model.SessionView{Session: *session, UserName: unknownName, ComputerName: computer.Name}
		if user, err := repos.Users.GetUserByID(ctx, session.UserID); err == nil {
			view.UserName = user.Username
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "close session")
	}

	action, verb := audit.ActionSessionEnded, "ended"
	if status == model.SessionTerminated {
		action, verb = audit.ActionSessionTerminated, "terminated"
	}
	s.audit.Record(audit.Event{
		Action:   action,
		Entity:   audit.EntitySession,
		EntityID: view.ID,
		ActorID:  actor,
		Detail: fmt.Sprintf("Session %s for user %s on computer %s, cost %s",
			verb, view.UserName, view.ComputerName, view.TotalCost.StringFixed(2)),
	})
	if charge != nil {
		s.audit.Record(chargeEvent(charge, actor))
	}
	s.logger.Info("session closed", "session_id", view.ID, "status", status,
		"duration_seconds", view.DurationSeconds, "cost", view.TotalCost.StringFixed(2))

	return view, nil
}

// appendNote adds note after notes, cutting notes short so the result fits the notes column.
func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	const sep = "; "
	room := validation.MaxSessionNotesLength - utf8.RuneCountInString(sep+note)
	if r := []rune(notes); len(r) > room {
		notes = string(r[:max(room, 0)])
	}
	return notes + sep + note
}

// GetRemainingTime reports how long the user's balance lasts on the computer they are using.
func (s *SessionService) GetRemainingTime(ctx context.Context, userID, computerID uuid.UUID) (*RemainingTime, error) {
	repos := s.store.Repos()

	session, err := repos.Sessions.GetActiveSessionByComputer(ctx, computerID)
	if err != nil {
		if isErr(err, repository.ErrSessionNotFound) {
			return nil, noActiveSession()
		}
		return nil, translate(err, "retrieve active session")
	}
	if session.UserID != userID {
		return nil, noActiveSession()
	}

	computer, err := repos.Computers.GetComputerByID(ctx, computerID)
	if err != nil {
		return nil, translate(err, "retrieve computer")
	}
	account, err := repos.Accounts.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err, "retrieve account")
	}

	remaining := RemainingDuration(account.Balance, computer.HourlyRate)
	return &RemainingTime{
		SessionID:        session.ID,
		Balance:          account.Balance,
		HourlyRate:       computer.HourlyRate,
		AccruedCost:      CalculateCost(s.now().Sub(session.StartTime), computer.HourlyRate),
		Remaining:        remaining,
		RemainingSeconds: int64(remaining / time.Second),
		Unlimited:        !computer.HourlyRate.IsPositive(),
	}, nil
}

func noActiveSession() *errors.AppError {
	return errors.NotFoundError("active session")
}

// CalculateSessionCost returns the stored cost of a closed session or the live cost of an active one.
func (s *SessionService) CalculateSessionCost(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	repos := s.store.Repos()

	session, err := repos.Sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return decimal.Zero, translate(err, "retrieve session")
	}
	if !session.IsActive() {
		return session.TotalCost, nil
	}

	computer, err := repos.Computers.GetComputerByID(ctx, session.ComputerID)
	if err != nil {
		return decimal.Zero, translate(err, "retrieve computer")
	}
	return CalculateCost(s.now().Sub(session.StartTime), computer.HourlyRate), nil
}

// GetSession retrieves a session view by ID
func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*model.SessionView, error) {
	session, err := s.store.Repos().Sessions.GetSessionByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve session")
	}
	views, err := s.views(ctx, []model.Session{*session})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetSessionDetails returns a session with the ledger entries it produced
func (s *SessionService) GetSessionDetails(ctx context.Context, id uuid.UUID) (*model.SessionDetails, error) {
	view, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	txns, err := s.store.Repos().Transactions.ListTransactionsBySession(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve session transactions")
	}
	return &model.SessionDetails{SessionView: *view, Transactions: txns}, nil
}

// GetActiveSessionByComputer returns the session currently running on a computer
func (s *SessionService) GetActiveSessionByComputer(ctx context.Context, computerID uuid.UUID) (*model.SessionView, error) {
	session, err := s.store.Repos().Sessions.GetActiveSessionByComputer(ctx, computerID)
	if err != nil {
		if isErr(err, repository.ErrSessionNotFound) {
			return nil, noActiveSession()
		}
		return nil, translate(err, "retrieve active session")
	}
	views, err := s.views(ctx, []model.Session{*session})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// HasActiveSession reports whether the user currently has an active session
func (s *SessionService) HasActiveSession(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := s.store.Repos().Sessions.GetActiveSessionByUser(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case isErr(err, repository.ErrSessionNotFound):
		return false, nil
	default:
		return false, translate(err, "retrieve active session")
	}
}

// ListActiveSessions returns every running session
func (s *SessionService) ListActiveSessions(ctx context.Context) ([]model.SessionView, error) {
	sessions, err := s.store.Repos().Sessions.ListActiveSessions(ctx)
	if err != nil {
		return nil, translate(err, "retrieve active sessions")
	}
	return s.views(ctx, sessions)
}

// ListSessionsByUser returns a user's sessions, newest first
func (s *SessionService) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.SessionView, error) {
	repos := s.store.Repos()
	if _, err := repos.Users.GetUserByID(ctx, userID); err != nil {
		return nil, translate(err, "retrieve user")
	}

	sessions, err := repos.Sessions.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "retrieve sessions")
	}
	return s.views(ctx, sessions)
}

// ListSessionsByDateRange returns sessions that started inside [from, to]
func (s *SessionService) ListSessionsByDateRange(ctx context.Context, from, to time.Time) ([]model.SessionView, error) {
	if from.After(to) {
		return nil, errors.InvalidParameterError("from", "start date must not be after end date")
	}

	sessions, err := s.store.Repos().Sessions.ListSessionsByDateRange(ctx, from, to)
	if err != nil {
		return nil, translate(err, "retrieve sessions")
	}
	return s.views(ctx, sessions)
}

// views resolves display names, caching lookups per call. Missing rows show as "Unknown".
func (s *SessionService) views(ctx context.Context, sessions []model.Session) ([]model.SessionView, error) {
	repos := s.store.Repos()
	users := map[uuid.UUID]string{}
	computers := map[uuid.UUID]string{}

	views := make([]model.SessionView, 0, len(sessions))
	for _, session := range sessions {
		userName, ok := users[session.UserID]
		if !ok {
			userName = unknownName
			user, err := repos.Users.GetUserByID(ctx, session.UserID)
			switch {
			case err == nil:
				userName = user.Username
			case !isErr(err, repository.ErrUserNotFound):
				return nil, translate(err, "retrieve user")
			}
			users[session.UserID] = userName
		}

		computerName, ok := computers[session.ComputerID]
		if !ok {
			computerName = unknownName
			computer, err := repos.Computers.GetComputerByID(ctx, session.ComputerID)
			switch {
			case err == nil:
				computerName = computer.Name
			case !isErr(err, repository.ErrComputerNotFound):
				return nil, translate(err, "retrieve computer")
			}
			computers[session.ComputerID] = computerName
		}

		views = append(views, model.SessionView{Session: session, UserName: userName, ComputerName: computerName})
	}
	return views, nil
}
