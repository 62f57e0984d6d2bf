// Package memrepo is an in-process store for STORAGE=memory and tests.
package memrepo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"audit-auth/internal/data/entity"
	"audit-auth/internal/data/repository"
)

// Store holds users and OTPs in memory. Transactions are serialized and
// rolled back by restoring only the rows they touched.
type Store struct {
	txMu sync.Mutex

	mu     sync.Mutex
	users  map[int64]entity.User
	otps   map[int64]entity.OTP
	nextID int64
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[int64]entity.User),
		otps:  make(map[int64]entity.OTP),
		now:   time.Now,
	}
}

// NewRepository returns a repository.Repository backed by a fresh Store.
func NewRepository() *repository.Repository {
	return NewStore().Repository()
}

func (s *Store) Repository() *repository.Repository {
	return repository.New(userStore{s: s}, otpStore{s: s}, s.withTx, nil)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	undo := newUndoLog()
	tx := repository.New(userStore{s: s, undo: undo}, otpStore{s: s, undo: undo}, nil, nil)

	err := fn(tx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.rollback(undo)
		return err
	}
	return nil
}

// undoLog keeps the pre-transaction version of each touched row; a nil
// entry means the row did not exist.
type undoLog struct {
	users map[int64]*entity.User
	otps  map[int64]*entity.OTP
}

func newUndoLog() *undoLog {
	return &undoLog{
		users: make(map[int64]*entity.User),
		otps:  make(map[int64]*entity.OTP),
	}
}

// saveUser and saveOTP must be called with Store.mu held, before the write.
func (l *undoLog) saveUser(users map[int64]entity.User, id int64) {
	if l == nil {
		return
	}
	if _, seen := l.users[id]; seen {
		return
	}
	if prev, ok := users[id]; ok {
		l.users[id] = &prev
		return
	}
	l.users[id] = nil
}

func (l *undoLog) saveOTP(otps map[int64]entity.OTP, id int64) {
	if l == nil {
		return
	}
	if _, seen := l.otps[id]; seen {
		return
	}
	if prev, ok := otps[id]; ok {
		l.otps[id] = &prev
		return
	}
	l.otps[id] = nil
}

func (s *Store) rollback(undo *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, prev := range undo.users {
		if prev == nil {
			delete(s.users, id)
			continue
		}
		s.users[id] = *prev
	}
	for id, prev := range undo.otps {
		if prev == nil {
			delete(s.otps, id)
			continue
		}
		s.otps[id] = *prev
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// OTPs returns a copy of every stored OTP row for userID.
func (s *Store) OTPs(userID int64) []entity.OTP {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.OTP
	for _, o := range s.otps {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b entity.OTP) int { return int(a.ID - b.ID) })
	return out
}

type userStore struct {
	s    *Store
	undo *undoLog
}

func (u userStore) Create(_ context.Context, user *entity.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	now := u.s.now()
	user.ID = u.s.id()
	u.undo.saveUser(u.s.users, user.ID)
	user.CreatedAt = now
	user.UpdatedAt = now
	u.s.users[user.ID] = *user
	return nil
}

func (u userStore) FindByID(_ context.Context, id int64) (*entity.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (u userStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, user := range u.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, nil
}

// LockByID only checks existence; transactions already hold txMu.
func (u userStore) LockByID(_ context.Context, id int64) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[id]; !ok {
		return fmt.Errorf("lock user %d: not found", id)
	}
	return nil
}

func (u userStore) MarkVerified(_ context.Context, id int64) error {
	return u.update(id, "mark user verified", func(user *entity.User) {
		user.EmailVerified = true
	})
}

func (u userStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return u.update(id, "update password", func(user *entity.User) {
		user.PasswordHash = passwordHash
	})
}

func (u userStore) update(id int64, op string, apply func(*entity.User)) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return fmt.Errorf("%s: user %d not found", op, id)
	}
	u.undo.saveUser(u.s.users, id)
	apply(&user)
	user.UpdatedAt = u.s.now()
	u.s.users[id] = user
	return nil
}

type otpStore struct {
	s    *Store
	undo *undoLog
}

func (o otpStore) Create(_ context.Context, otp *entity.OTP) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	if _, ok := o.s.users[otp.UserID]; !ok {
		return fmt.Errorf("create OTP for user %d: user not found", otp.UserID)
	}

	otp.ID = o.s.id()
	o.undo.saveOTP(o.s.otps, otp.ID)
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = o.s.now()
	}
	o.s.otps[otp.ID] = *otp
	return nil
}

func (o otpStore) FindLatest(_ context.Context, userID int64, code string, purposes []entity.OTPPurpose) (*entity.OTP, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	var latest *entity.OTP
	for _, otp := range o.s.otps {
		if otp.UserID != userID || otp.Code != code || !slices.Contains(purposes, otp.Purpose) {
			continue
		}
		if latest == nil || newer(otp, *latest) {
			found := otp
			latest = &found
		}
	}
	return latest, nil
}

func newer(a, b entity.OTP) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (o otpStore) Delete(_ context.Context, id int64) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	if _, ok := o.s.otps[id]; !ok {
		return fmt.Errorf("delete OTP %d: %w", id, repository.ErrNotFound)
	}
	o.undo.saveOTP(o.s.otps, id)
	delete(o.s.otps, id)
	return nil
}

func (o otpStore) DeleteByUserAndPurpose(_ context.Context, userID int64, purpose entity.OTPPurpose) (int64, error) {
	return o.deleteWhere(func(otp entity.OTP) bool {
		return otp.UserID == userID && otp.Purpose == purpose
	}), nil
}

func (o otpStore) IncrementAttempts(_ context.Context, userID int64, purposes []entity.OTPPurpose, now time.Time, maxAttempts int) (int64, error) {
	o.s.mu.Lock()
	for id, otp := range o.s.otps {
		if otp.UserID == userID && slices.Contains(purposes, otp.Purpose) && !otp.Expired(now) {
			o.undo.saveOTP(o.s.otps, id)
			otp.Attempts++
			o.s.otps[id] = otp
		}
	}
	o.s.mu.Unlock()

	if maxAttempts <= 0 {
		return 0, nil
	}

	return o.deleteWhere(func(otp entity.OTP) bool {
		return otp.UserID == userID && slices.Contains(purposes, otp.Purpose) && otp.Attempts >= maxAttempts
	}), nil
}

func (o otpStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	return o.deleteWhere(func(otp entity.OTP) bool {
		return !otp.ExpiresAt.After(before)
	}), nil
}

func (o otpStore) deleteWhere(match func(entity.OTP) bool) int64 {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	var n int64
	for id, otp := range o.s.otps {
		if match(otp) {
			o.undo.saveOTP(o.s.otps, id)
			delete(o.s.otps, id)
			n++
		}
	}
	return n
}
