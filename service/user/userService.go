package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/eliff53/kitapkiralama/model"
	userrepo "github.com/eliff53/kitapkiralama/repository/user"
	"github.com/eliff53/kitapkiralama/service/policy"
	"github.com/eliff53/kitapkiralama/util/hash"
)

type ErrCode string

const (
	ErrBadInput      ErrCode = "BAD_INPUT"
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrSelfTarget    ErrCode = "SELF_TARGET"
	ErrWrongPassword ErrCode = "WRONG_PASSWORD"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type AdminRow = userrepo.AdminRow

// Profile is the caller's own view: identity plus rental volume. Book
// and rental listings come from their own endpoints.
type Profile struct {
	User         *model.User `json:"user"`
	TotalRentals int64       `json:"total_rentals"`
}

type Repo interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, name string, address *string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ListOthers(ctx context.Context, excludeID int64) ([]model.User, error)
	ListWithCounts(ctx context.Context) ([]AdminRow, error)
	Delete(ctx context.Context, id int64) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	CountRentals(ctx context.Context, userID int64) (int64, error)
}

type Service interface {
	Profile(ctx context.Context, caller model.Caller) (*Profile, error)
	UpdateProfile(ctx context.Context, caller model.Caller, name string, address *string) (*model.User, error)
	ChangePassword(ctx context.Context, caller model.Caller, current, next string) error
	ListOthers(ctx context.Context, caller model.Caller) ([]model.User, error)

	// Admin surface.
	ListAll(ctx context.Context, caller model.Caller) ([]AdminRow, error)
	Delete(ctx context.Context, caller model.Caller, userID int64) error
	ChangeRole(ctx context.Context, caller model.Caller, userID int64, role string) (*model.User, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Profile(ctx context.Context, caller model.Caller) (*Profile, error) {
	u, err := s.r.ByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	total, err := s.r.CountRentals(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, TotalRentals: total}, nil
}

func (s *service) UpdateProfile(ctx context.Context, caller model.Caller, name string, address *string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, makeErr(ErrBadInput)
	}
	if err := s.r.UpdateProfile(ctx, caller.ID, name, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return s.r.ByID(ctx, caller.ID)
}

func (s *service) ChangePassword(ctx context.Context, caller model.Caller, current, next string) error {
	if current == "" || len(next) < 6 {
		return makeErr(ErrBadInput)
	}
	u, err := s.r.ByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !hash.Check(u.PasswordHash, current) {
		return makeErr(ErrWrongPassword)
	}
	hashed, err := hash.HashPassword(next)
	if err != nil {
		return err
	}
	return s.r.UpdatePassword(ctx, caller.ID, hashed)
}

func (s *service) ListOthers(ctx context.Context, caller model.Caller) ([]model.User, error) {
	return s.r.ListOthers(ctx, caller.ID)
}

func (s *service) ListAll(ctx context.Context, caller model.Caller) ([]AdminRow, error) {
	if !policy.CanManageUsers(caller) {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.ListWithCounts(ctx)
}

func (s *service) Delete(ctx context.Context, caller model.Caller, userID int64) error {
	if !policy.CanManageUsers(caller) {
		return makeErr(ErrForbidden)
	}
	if userID == caller.ID {
		return makeErr(ErrSelfTarget)
	}
	if err := s.r.Delete(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) ChangeRole(ctx context.Context, caller model.Caller, userID int64, role string) (*model.User, error) {
	if !policy.CanManageUsers(caller) {
		return nil, makeErr(ErrForbidden)
	}
	if userID == caller.ID {
		return nil, makeErr(ErrSelfTarget)
	}
	r := model.Role(role)
	if r != model.RoleUser && r != model.RoleAdmin {
		return nil, makeErr(ErrBadInput)
	}
	if err := s.r.UpdateRole(ctx, userID, r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return s.r.ByID(ctx, userID)
}
