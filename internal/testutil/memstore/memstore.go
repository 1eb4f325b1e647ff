// Package memstore is an in-memory repository.Store used by service and
// handler tests.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
)

// Store is an in-memory repository.Store for tests. WithTx snapshots the
// tables and restores them when fn fails.
type Store struct {
	mu       sync.Mutex
	users    map[int64]*entity.User
	sessions map[int64]*entity.Session
	audit    []entity.AuditEvent
	nextUser int64
	nextSess int64

	failCreate []error
}

// New returns an empty Store.
func New() *Store {
	return &Store{users: map[int64]*entity.User{}, sessions: map[int64]*entity.Session{}}
}

func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Sessions() repository.SessionRepository { return sessionRepo{s} }
func (s *Store) Audit() repository.AuditRepository      { return auditRepo{s} }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.mu.Lock()
	users := make(map[int64]*entity.User, len(s.users))
	for k, v := range s.users {
		cp := *v
		users[k] = &cp
	}
	sessions := make(map[int64]*entity.Session, len(s.sessions))
	for k, v := range s.sessions {
		cp := *v
		sessions[k] = &cp
	}
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.users, s.sessions = users, sessions
		s.mu.Unlock()
		return err
	}
	return nil
}

// ByPublicID returns a copy of the stored user, or nil.
func (s *Store) ByPublicID(publicID string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.PublicID == publicID {
			cp := *u
			return &cp
		}
	}
	return nil
}

// LiveSessions counts the user's non-revoked sessions.
func (s *Store) LiveSessions(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ss := range s.sessions {
		if ss.UserID == userID && !ss.Revoked {
			n++
		}
	}
	return n
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failCreate) > 0 {
		err := s.failCreate[0]
		s.failCreate = s.failCreate[1:]
		return err
	}
	for _, x := range s.users {
		switch {
		case x.Phone == u.Phone:
			return fmt.Errorf("%w: users_phone_key", repository.ErrDuplicate)
		case u.Email != "" && x.Email == u.Email:
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		case x.PublicID == u.PublicID:
			return fmt.Errorf("%w: users_user_id_key", repository.ErrDuplicate)
		}
	}
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (r userRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email != "" && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) update(id int64, fn func(u *entity.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (r userRepo) SetVerificationToken(_ context.Context, id int64, hash string, _ time.Time) error {
	return r.update(id, func(u *entity.User) { u.VerificationHash = hash; u.VerificationAttempts = 0 })
}

func (r userRepo) IncrementVerificationAttempts(_ context.Context, id int64) error {
	return r.update(id, func(u *entity.User) { u.VerificationAttempts++ })
}

func (r userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByPublicID(_ context.Context, publicID string) (*entity.User, error) {
	if u := r.s.ByPublicID(publicID); u != nil {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) GetByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == identifier || (u.Email != "" && u.Email == identifier) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) MarkVerified(_ context.Context, id int64, _ time.Time) (bool, error) {
	changed := false
	err := r.update(id, func(u *entity.User) {
		if u.Status == entity.StatusPending {
			u.Status = entity.StatusVerified
			u.VerificationHash = ""
			changed = true
		}
	})
	return changed, err
}

func (r userRepo) UpdateProfile(_ context.Context, id int64, fullName, avatarURL string) error {
	return r.update(id, func(u *entity.User) { u.FullName = fullName; u.AvatarURL = avatarURL })
}

func (r userRepo) SetStatus(_ context.Context, id int64, status entity.AccountStatus) error {
	return r.update(id, func(u *entity.User) { u.Status = status })
}

func (r userRepo) SetRole(_ context.Context, id int64, role entity.Role) error {
	return r.update(id, func(u *entity.User) { u.Role = role })
}

func (r userRepo) ForceActivate(_ context.Context, id int64) error {
	return r.update(id, func(u *entity.User) {
		u.Status = entity.StatusActive
		u.VerificationHash = ""
		u.VerificationAttempts = 0
	})
}

func (r userRepo) List(_ context.Context, search string) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(search)
	var out []entity.User
	for id := int64(1); id <= r.s.nextUser; id++ {
		u, ok := r.s.users[id]
		if !ok {
			continue
		}
		hay := strings.ToLower(u.FullName + " " + u.Phone + " " + u.Email + " " + u.PublicID)
		if q == "" || strings.Contains(hay, q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r userRepo) ListByPublicIDs(_ context.Context, publicIDs []string) ([]entity.User, error) {
	var out []entity.User
	for _, id := range publicIDs {
		if u := r.s.ByPublicID(id); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r userRepo) Stats(_ context.Context) (repository.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var st repository.UserStats
	for _, u := range r.s.users {
		st.Total++
		switch u.Status {
		case entity.StatusVerified, entity.StatusActive:
			st.Active++
		case entity.StatusPending:
			st.Pending++
		case entity.StatusSuspended:
			st.Suspended++
		}
		if u.Role == entity.RoleAdmin {
			st.Admins++
		}
	}
	return st, nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, ss *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.sessions {
		if x.RefreshTokenHash == ss.RefreshTokenHash {
			return fmt.Errorf("%w: user_sessions_refresh_token_hash_key", repository.ErrDuplicate)
		}
	}
	r.s.nextSess++
	ss.ID = r.s.nextSess
	ss.CreatedAt = time.Now().UTC()
	cp := *ss
	r.s.sessions[ss.ID] = &cp
	return nil
}

func (r sessionRepo) FindActiveByHash(_ context.Context, hash string) (*entity.SessionWithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ss := range r.s.sessions {
		if ss.RefreshTokenHash == hash && !ss.Revoked {
			u, ok := r.s.users[ss.UserID]
			if !ok {
				return nil, repository.ErrNotFound
			}
			return &entity.SessionWithUser{SessionID: ss.ID, CreatedAt: ss.CreatedAt, User: *u}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r sessionRepo) RevokeByHash(_ context.Context, hash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ss := range r.s.sessions {
		if ss.RefreshTokenHash == hash && !ss.Revoked {
			ss.Revoked = true
			return true, nil
		}
	}
	return false, nil
}

func (r sessionRepo) RevokeByID(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ss, ok := r.s.sessions[id]; ok {
		ss.Revoked = true
	}
	return nil
}

func (r sessionRepo) RevokeAllForUser(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, ss := range r.s.sessions {
		if ss.UserID == userID && !ss.Revoked {
			ss.Revoked = true
			n++
		}
	}
	return n, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Insert(_ context.Context, e entity.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, e)
	return nil
}

// FailCreate makes the next Users().Create calls return errs in order.
func (s *Store) FailCreate(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = append(s.failCreate, errs...)
}

// UserCount is the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// AuditEvents returns a copy of every inserted audit event.
func (s *Store) AuditEvents() []entity.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditEvent(nil), s.audit...)
}
