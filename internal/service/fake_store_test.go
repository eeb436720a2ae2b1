package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory Store. WithinTx runs one transaction at a time and
// restores a snapshot of every table when fn fails.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users     map[uuid.UUID]model.User
	accounts  map[uuid.UUID]model.Account
	computers map[uuid.UUID]model.Computer
	sessions  map[uuid.UUID]model.Session
	txns      []model.Transaction

	// debitErr, when set, is returned by every Debit call.
	debitErr error
	txCount  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[uuid.UUID]model.User{},
		accounts:  map[uuid.UUID]model.Account{},
		computers: map[uuid.UUID]model.Computer{},
		sessions:  map[uuid.UUID]model.Session{},
	}
}

func (s *fakeStore) Repos() repository.Repositories {
	return repository.Repositories{
		Users:        &fakeUsers{s},
		Accounts:     &fakeAccounts{s},
		Computers:    &fakeComputers{s},
		Sessions:     &fakeSessions{s},
		Transactions: &fakeTransactions{s},
	}
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txCount++
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type fakeSnapshot struct {
	users     map[uuid.UUID]model.User
	accounts  map[uuid.UUID]model.Account
	computers map[uuid.UUID]model.Computer
	sessions  map[uuid.UUID]model.Session
	txns      []model.Transaction
}

func (s *fakeStore) snapshot() fakeSnapshot {
	return fakeSnapshot{
		users:     copyMap(s.users),
		accounts:  copyMap(s.accounts),
		computers: copyMap(s.computers),
		sessions:  copyMap(s.sessions),
		txns:      append([]model.Transaction(nil), s.txns...),
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.users = snap.users
	s.accounts = snap.accounts
	s.computers = snap.computers
	s.sessions = snap.sessions
	s.txns = snap.txns
}

func copyMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Test accessors.

func (s *fakeStore) account(id uuid.UUID) model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id]
}

func (s *fakeStore) computer(id uuid.UUID) model.Computer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computers[id]
}

func (s *fakeStore) session(id uuid.UUID) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *fakeStore) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *fakeStore) transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.txns...)
}

type fakeUsers struct{ s *fakeStore }

func (r *fakeUsers) CreateUser(ctx context.Context, user *model.User, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}
	user.Lifecycle = model.LifecycleActive
	user.Touch(actor, time.Now().UTC())
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.Lifecycle != model.LifecycleActive {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUsers) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username && u.Lifecycle == model.LifecycleActive {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUsers) ListUsers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.User], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := []model.User{}
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return &repository.Page[model.User]{Items: paginate(users, params), TotalCount: len(users)}, nil
}

func (r *fakeUsers) UpdateUser(ctx context.Context, user *model.User, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.Touch(actor, time.Now().UTC())
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUsers) UpdateUserStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Status = status
	u.Touch(actor, time.Now().UTC())
	r.s.users[id] = u
	return nil
}

func (r *fakeUsers) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

func (r *fakeUsers) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastLoginTime = &at
	r.s.users[id] = u
	return nil
}

type fakeAccounts struct{ s *fakeStore }

func (r *fakeAccounts) CreateAccount(ctx context.Context, account *model.Account, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.UserID == account.UserID {
			return repository.ErrAccountExists
		}
	}
	account.Lifecycle = model.LifecycleActive
	account.Touch(actor, time.Now().UTC())
	r.s.accounts[account.ID] = *account
	return nil
}

func (r *fakeAccounts) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &a, nil
}

func (r *fakeAccounts) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			return &a, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccounts) LockAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return r.GetAccountByID(ctx, id)
}

func (r *fakeAccounts) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return decimal.Zero, repository.ErrAccountNotFound
	}
	now := time.Now().UTC()
	a.Balance = a.Balance.Add(amount)
	a.LastDepositDate = &now
	a.Touch(actor, now)
	r.s.accounts[id] = a
	return a.Balance, nil
}

func (r *fakeAccounts) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.debitErr != nil {
		return decimal.Zero, r.s.debitErr
	}
	a, ok := r.s.accounts[id]
	if !ok {
		return decimal.Zero, repository.ErrAccountNotFound
	}
	if a.Balance.LessThan(amount) {
		return decimal.Zero, &repository.InsufficientBalanceError{Current: a.Balance, Required: amount}
	}
	now := time.Now().UTC()
	a.Balance = a.Balance.Sub(amount)
	a.LastUsageDate = &now
	a.Touch(actor, now)
	r.s.accounts[id] = a
	return a.Balance, nil
}

type fakeComputers struct{ s *fakeStore }

func (r *fakeComputers) CreateComputer(ctx context.Context, computer *model.Computer, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.computers {
		if c.Lifecycle == model.LifecycleActive && (c.Name == computer.Name || c.IPAddress == computer.IPAddress) {
			return repository.ErrDuplicateComputer
		}
	}
	computer.Lifecycle = model.LifecycleActive
	computer.Touch(actor, time.Now().UTC())
	r.s.computers[computer.ID] = *computer
	return nil
}

func (r *fakeComputers) GetComputerByID(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.computers[id]
	if !ok || c.Lifecycle != model.LifecycleActive {
		return nil, repository.ErrComputerNotFound
	}
	return &c, nil
}

func (r *fakeComputers) active() []model.Computer {
	computers := []model.Computer{}
	for _, c := range r.s.computers {
		if c.Lifecycle == model.LifecycleActive {
			computers = append(computers, c)
		}
	}
	sort.Slice(computers, func(i, j int) bool { return computers[i].Name < computers[j].Name })
	return computers
}

func (r *fakeComputers) ListComputers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.Computer], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	computers := r.active()
	return &repository.Page[model.Computer]{Items: paginate(computers, params), TotalCount: len(computers)}, nil
}

func (r *fakeComputers) ListComputersByStatus(ctx context.Context, status model.UsageStatus) ([]model.Computer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	computers := []model.Computer{}
	for _, c := range r.active() {
		if c.UsageStatus == status {
			computers = append(computers, c)
		}
	}
	return computers, nil
}

func (r *fakeComputers) UpdateComputer(ctx context.Context, computer *model.Computer, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.computers[computer.ID]
	if !ok || existing.Lifecycle != model.LifecycleActive {
		return repository.ErrComputerNotFound
	}
	for id, c := range r.s.computers {
		if id != computer.ID && c.Lifecycle == model.LifecycleActive &&
			(c.Name == computer.Name || c.IPAddress == computer.IPAddress) {
			return repository.ErrDuplicateComputer
		}
	}
	computer.Touch(actor, time.Now().UTC())
	computer.UsageStatus = existing.UsageStatus
	r.s.computers[computer.ID] = *computer
	return nil
}

func (r *fakeComputers) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to model.UsageStatus, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.computers[id]
	if !ok || c.Lifecycle != model.LifecycleActive {
		return repository.ErrComputerNotFound
	}
	if c.UsageStatus != from {
		return repository.ErrStatusMismatch
	}
	now := time.Now().UTC()
	c.UsageStatus = to
	switch to {
	case model.StatusInUse:
		c.LastUsedDate = &now
	case model.StatusMaintenance:
		c.LastMaintenanceDate = &now
	}
	c.Touch(actor, now)
	r.s.computers[id] = c
	return nil
}

func (r *fakeComputers) CancelComputer(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.computers[id]
	if !ok || c.Lifecycle != model.LifecycleActive {
		return repository.ErrComputerNotFound
	}
	if c.UsageStatus == model.StatusInUse {
		return repository.ErrComputerInUse
	}
	c.Lifecycle = model.LifecycleCancelled
	r.s.computers[id] = c
	return nil
}

type fakeSessions struct{ s *fakeStore }

func (r *fakeSessions) CreateSession(ctx context.Context, session *model.Session, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sessions {
		if existing.Status != model.SessionActive {
			continue
		}
		if existing.ComputerID == session.ComputerID {
			return repository.ErrComputerNotAvailable
		}
		if existing.UserID == session.UserID {
			return repository.ErrActiveSessionExists
		}
	}
	session.Lifecycle = model.LifecycleActive
	session.Touch(actor, time.Now().UTC())
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessions) GetSessionByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (r *fakeSessions) findActive(match func(model.Session) bool) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, s := range r.s.sessions {
		if s.Status == model.SessionActive && match(s) {
			return &s, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (r *fakeSessions) GetActiveSessionByUser(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	return r.findActive(func(s model.Session) bool { return s.UserID == userID })
}

func (r *fakeSessions) GetActiveSessionByComputer(ctx context.Context, computerID uuid.UUID) (*model.Session, error) {
	return r.findActive(func(s model.Session) bool { return s.ComputerID == computerID })
}

func (r *fakeSessions) filter(match func(model.Session) bool) []model.Session {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sessions := []model.Session{}
	for _, s := range r.s.sessions {
		if match(s) {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime.Before(sessions[j].StartTime) })
	return sessions
}

func (r *fakeSessions) ListActiveSessions(ctx context.Context) ([]model.Session, error) {
	return r.filter(func(s model.Session) bool { return s.Status == model.SessionActive }), nil
}

func (r *fakeSessions) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	return r.filter(func(s model.Session) bool { return s.UserID == userID }), nil
}

func (r *fakeSessions) ListSessionsByDateRange(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	return r.filter(func(s model.Session) bool {
		return !s.StartTime.Before(from) && !s.StartTime.After(to)
	}), nil
}

func (r *fakeSessions) CloseSession(ctx context.Context, session *model.Session, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.sessions[session.ID]
	if !ok || existing.Status != model.SessionActive {
		return repository.ErrSessionNotActive
	}
	session.Touch(actor, time.Now().UTC())
	r.s.sessions[session.ID] = *session
	return nil
}

type fakeTransactions struct{ s *fakeStore }

func (r *fakeTransactions) CreateTransaction(ctx context.Context, txn *model.Transaction, actor uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now().UTC()
	txn.CreatedBy = actor
	r.s.txns = append(r.s.txns, *txn)
	return nil
}

func (r *fakeTransactions) byAccount(accountID uuid.UUID) []model.Transaction {
	txns := []model.Transaction{}
	for i := len(r.s.txns) - 1; i >= 0; i-- {
		if r.s.txns[i].AccountID == accountID {
			txns = append(txns, r.s.txns[i])
		}
	}
	return txns
}

func (r *fakeTransactions) ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, params repository.PaginationParams) (*repository.Page[model.Transaction], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	txns := r.byAccount(accountID)
	return &repository.Page[model.Transaction]{Items: paginate(txns, params), TotalCount: len(txns)}, nil
}

func (r *fakeTransactions) ListRecentTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return paginate(r.byAccount(accountID), repository.PaginationParams{Limit: limit}), nil
}

func (r *fakeTransactions) ListTransactionsBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	txns := []model.Transaction{}
	for _, t := range r.s.txns {
		if t.SessionID != nil && *t.SessionID == sessionID {
			txns = append(txns, t)
		}
	}
	return txns, nil
}

func paginate[T any](items []T, params repository.PaginationParams) []T {
	if params.Offset >= len(items) {
		return []T{}
	}
	items = items[params.Offset:]
	if params.Limit > 0 && len(items) > params.Limit {
		items = items[:params.Limit]
	}
	return items
}
