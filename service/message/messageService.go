package message

import (
	"context"
	"errors"
	"strings"

	"github.com/eliff53/kitapkiralama/model"
)

type ErrCode string

const (
	ErrEmptyContent     ErrCode = "EMPTY_CONTENT"
	ErrSelfMessage      ErrCode = "SELF_MESSAGE"
	ErrReceiverNotFound ErrCode = "RECEIVER_NOT_FOUND"
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
	Insert(ctx context.Context, m *model.Message) error
	ListForUser(ctx context.Context, userID int64) ([]model.Message, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID int64) (int64, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type Service interface {
	Send(ctx context.Context, caller model.Caller, receiverID int64, content string) (*model.Message, error)
	ListForUser(ctx context.Context, caller model.Caller) ([]model.Message, error)
	UnreadCount(ctx context.Context, caller model.Caller) (int64, error)

	// MarkRead flags every unread message from senderID to the caller.
	MarkRead(ctx context.Context, caller model.Caller, senderID int64) (int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Send(ctx context.Context, caller model.Caller, receiverID int64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, makeErr(ErrEmptyContent)
	}
	if receiverID == caller.ID {
		return nil, makeErr(ErrSelfMessage)
	}

	exists, err := s.r.UserExists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, makeErr(ErrReceiverNotFound)
	}

	m := &model.Message{SenderID: caller.ID, SenderName: caller.Name, ReceiverID: receiverID, Content: content}
	if err := s.r.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListForUser(ctx context.Context, caller model.Caller) ([]model.Message, error) {
	return s.r.ListForUser(ctx, caller.ID)
}

func (s *service) UnreadCount(ctx context.Context, caller model.Caller) (int64, error) {
	return s.r.UnreadCount(ctx, caller.ID)
}

func (s *service) MarkRead(ctx context.Context, caller model.Caller, senderID int64) (int64, error) {
	return s.r.MarkConversationRead(ctx, caller.ID, senderID)
}
