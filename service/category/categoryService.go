package category

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eliff53/kitapkiralama/model"
	"github.com/eliff53/kitapkiralama/service/policy"
)

type ErrCode string

const (
	ErrBadInput  ErrCode = "BAD_INPUT"
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrNameTaken ErrCode = "NAME_TAKEN"
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

type Repo interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name string) (int64, error)
}

type Service interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, caller model.Caller, name string) (int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context) ([]model.Category, error) {
	return s.r.List(ctx)
}

func (s *service) Create(ctx context.Context, caller model.Caller, name string) (int64, error) {
	if !policy.CanManageCatalog(caller) {
		return 0, makeErr(ErrForbidden)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, makeErr(ErrBadInput)
	}
	id, err := s.r.Create(ctx, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, makeErr(ErrNameTaken)
		}
		return 0, err
	}
	return id, nil
}
