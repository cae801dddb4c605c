package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eliff53/kitapkiralama/model"
)

type repoMock struct {
	listFn      func(ctx context.Context, bookID int64) ([]model.Review, error)
	findFn      func(ctx context.Context, userID, bookID int64) (*model.Review, error)
	insertFn    func(ctx context.Context, rv *model.Review) error
	updateFn    func(ctx context.Context, id int64, rating int, comment *string) error
	hasRentedFn func(ctx context.Context, userID, bookID int64) (bool, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) ListByBook(ctx context.Context, bookID int64) ([]model.Review, error) {
	return m.listFn(ctx, bookID)
}
func (m *repoMock) FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error) {
	if m.findFn == nil {
		return nil, nil
	}
	return m.findFn(ctx, userID, bookID)
}
func (m *repoMock) Insert(ctx context.Context, rv *model.Review) error {
	return m.insertFn(ctx, rv)
}
func (m *repoMock) Update(ctx context.Context, id int64, rating int, comment *string) error {
	return m.updateFn(ctx, id, rating, comment)
}
func (m *repoMock) HasRented(ctx context.Context, userID, bookID int64) (bool, error) {
	if m.hasRentedFn == nil {
		return true, nil
	}
	return m.hasRentedFn(ctx, userID, bookID)
}

var caller = model.Caller{ID: 7, Role: model.RoleUser, Name: "Ayşe"}

func TestForBook_Average(t *testing.T) {
	m := &repoMock{
		listFn: func(ctx context.Context, bookID int64) ([]model.Review, error) {
			return []model.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}, nil
		},
	}
	s := New(m)

	sum, err := s.ForBook(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 3, sum.TotalReviews)
	require.Equal(t, 4.3, sum.AverageRating) // 13/3 rounded to one decimal
}

func TestForBook_Empty(t *testing.T) {
	m := &repoMock{
		listFn: func(ctx context.Context, bookID int64) ([]model.Review, error) { return nil, nil },
	}
	s := New(m)

	sum, err := s.ForBook(context.Background(), 1)
	require.NoError(t, err)
	require.Zero(t, sum.TotalReviews)
	require.Zero(t, sum.AverageRating)
}

func TestUpsert_BadRating(t *testing.T) {
	s := New(&repoMock{})
	for _, r := range []int{0, -1, 6} {
		_, err := s.Upsert(context.Background(), caller, 1, r, nil)
		require.Equal(t, ErrBadRating, Code(err))
	}
}

func TestUpsert_RequiresRentalHistory(t *testing.T) {
	m := &repoMock{
		hasRentedFn: func(ctx context.Context, userID, bookID int64) (bool, error) { return false, nil },
	}
	s := New(m)

	_, err := s.Upsert(context.Background(), caller, 1, 5, nil)
	require.Equal(t, ErrNotRented, Code(err))
}

func TestUpsert_InsertsFirstReview(t *testing.T) {
	m := &repoMock{
		insertFn: func(ctx context.Context, rv *model.Review) error {
			rv.ID = 11
			return nil
		},
	}
	s := New(m)

	rv, err := s.Upsert(context.Background(), caller, 3, 4, nil)
	require.NoError(t, err)
	require.Equal(t, int64(11), rv.ID)
	require.Equal(t, caller.ID, rv.UserID)
	require.Equal(t, 4, rv.Rating)
}

func TestUpsert_UpdatesExistingReview(t *testing.T) {
	comment := "better on a second read"
	var updatedID int64
	m := &repoMock{
		findFn: func(ctx context.Context, userID, bookID int64) (*model.Review, error) {
			return &model.Review{ID: 11, UserID: userID, BookID: bookID, Rating: 2}, nil
		},
		updateFn: func(ctx context.Context, id int64, rating int, c *string) error {
			updatedID = id
			require.Equal(t, 5, rating)
			return nil
		},
	}
	s := New(m)

	rv, err := s.Upsert(context.Background(), caller, 3, 5, &comment)
	require.NoError(t, err)
	require.Equal(t, int64(11), updatedID)
	require.Equal(t, 5, rv.Rating)
	require.Equal(t, &comment, rv.Comment)
}
