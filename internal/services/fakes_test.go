package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/routinely-backend/internal/logger"
	"github.com/yungbote/routinely-backend/internal/requestdata"
	"github.com/yungbote/routinely-backend/internal/sendgrid"
	"github.com/yungbote/routinely-backend/internal/types"
)

// In-memory repo fakes. Each one keeps just enough state to drive the
// service check chains; error injection fields simulate storage failures
// the real postgres layer would produce.

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return log
}

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

type fakeRoutineRepo struct {
	routines map[uuid.UUID]*types.Routine
	trace    *[]string
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: make(map[uuid.UUID]*types.Routine)}
}

func (f *fakeRoutineRepo) Create(ctx context.Context, tx *gorm.DB, routines []*types.Routine) ([]*types.Routine, error) {
	for _, r := range routines {
		f.routines[r.ID] = r
	}
	return routines, nil
}

func (f *fakeRoutineRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) (*types.Routine, error) {
	r, ok := f.routines[routineID]
	if !ok || r.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeRoutineRepo) GetAllByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Routine, error) {
	var out []*types.Routine
	for _, r := range f.routines {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoutineRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Routine, error) {
	for _, r := range f.routines {
		if r.UserID == userID && r.IsActive {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoutineRepo) DeactivateAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	for _, r := range f.routines {
		if r.UserID == userID {
			r.IsActive = false
		}
	}
	return nil
}

func (f *fakeRoutineRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if f.trace != nil {
		*f.trace = append(*f.trace, "routine.delete")
	}
	for _, id := range ids {
		delete(f.routines, id)
	}
	return nil
}

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*types.Task
	trace *[]string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*types.Task)}
}

func (f *fakeTaskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return tasks, nil
}

func (f *fakeTaskRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, taskID, userID uuid.UUID) (*types.Task, error) {
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTaskRepo) GetByRoutineIDs(ctx context.Context, tx *gorm.DB, routineIDs []uuid.UUID) ([]*types.Task, error) {
	want := make(map[uuid.UUID]struct{}, len(routineIDs))
	for _, id := range routineIDs {
		want[id] = struct{}{}
	}
	var out []*types.Task
	for _, t := range f.tasks {
		if _, ok := want[t.RoutineID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) FullDeleteByRoutineID(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) error {
	if f.trace != nil {
		*f.trace = append(*f.trace, "task.delete")
	}
	for id, t := range f.tasks {
		if t.RoutineID == routineID && t.UserID == userID {
			delete(f.tasks, id)
		}
	}
	return nil
}

type fakeProgressRepo struct {
	rows      []*types.Progress
	createErr error
	trace     *[]string
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{}
}

func (f *fakeProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Progress) ([]*types.Progress, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeProgressRepo) GetByRoutineIDs(ctx context.Context, tx *gorm.DB, routineIDs []uuid.UUID) ([]*types.Progress, error) {
	want := make(map[uuid.UUID]struct{}, len(routineIDs))
	for _, id := range routineIDs {
		want[id] = struct{}{}
	}
	var out []*types.Progress
	for _, row := range f.rows {
		if _, ok := want[row.RoutineID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) ExistsForDay(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID, date time.Time) (bool, error) {
	key := date.Format("2006-01-02")
	for _, row := range f.rows {
		if row.UserID == userID && row.TaskID == taskID && row.Date.Format("2006-01-02") == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProgressRepo) FullDeleteByRoutineID(ctx context.Context, tx *gorm.DB, routineID, userID uuid.UUID) error {
	if f.trace != nil {
		*f.trace = append(*f.trace, "progress.delete")
	}
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.RoutineID != routineID || row.UserID != userID {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

type fakeUserRepo struct {
	users map[string]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*types.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		f.users[u.Email] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	want := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	var out []*types.User
	for _, u := range f.users {
		if _, ok := want[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	var out []*types.User
	for _, email := range emails {
		if u, ok := f.users[email]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, tx *gorm.DB, email string) error {
	u, ok := f.users[email]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsVerified = true
	return nil
}

type fakeOtpTokenRepo struct {
	tokens map[string]*types.OtpToken
}

func newFakeOtpTokenRepo() *fakeOtpTokenRepo {
	return &fakeOtpTokenRepo{tokens: make(map[string]*types.OtpToken)}
}

func (f *fakeOtpTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.OtpToken) ([]*types.OtpToken, error) {
	for _, tok := range tokens {
		f.tokens[tok.Email] = tok
	}
	return tokens, nil
}

func (f *fakeOtpTokenRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.OtpToken, error) {
	var out []*types.OtpToken
	for _, email := range emails {
		if tok, ok := f.tokens[email]; ok {
			out = append(out, tok)
		}
	}
	return out, nil
}

func (f *fakeOtpTokenRepo) IncrementAttempts(ctx context.Context, tx *gorm.DB, email string) (*types.OtpToken, error) {
	tok, ok := f.tokens[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	tok.Attempts++
	return tok, nil
}

func (f *fakeOtpTokenRepo) FullDeleteByEmails(ctx context.Context, tx *gorm.DB, emails []string) error {
	for _, email := range emails {
		delete(f.tokens, email)
	}
	return nil
}

func (f *fakeOtpTokenRepo) FullDeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) error {
	for email, tok := range f.tokens {
		if tok.ExpiresAt.Before(before) {
			delete(f.tokens, email)
		}
	}
	return nil
}

type fakeMailer struct {
	sent    []sendgrid.SendEmailRequest
	sendErr error
}

func (f *fakeMailer) Send(ctx context.Context, req sendgrid.SendEmailRequest) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, req)
	return nil
}

// fakeAuthService satisfies AuthService for verification tests; only
// IssueSession is expected to be reached.
type fakeAuthService struct{}

func (f *fakeAuthService) RegisterUser(ctx context.Context, fullName, email, password string) (*types.User, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeAuthService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	return "", "", fmt.Errorf("not implemented")
}

func (f *fakeAuthService) RefreshUser(ctx context.Context) (string, string, error) {
	return "", "", fmt.Errorf("not implemented")
}

func (f *fakeAuthService) LogoutUser(ctx context.Context) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeAuthService) IssueSession(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
	return "access-" + user.ID.String(), "refresh-" + user.ID.String(), nil
}

func (f *fakeAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	return ctx, fmt.Errorf("not implemented")
}

func (f *fakeAuthService) GetAccessTTL() time.Duration {
	return time.Hour
}
