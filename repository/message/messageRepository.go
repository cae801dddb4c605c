// repository/message/messageRepository.go
package message

import (
	"context"
	"database/sql"

	"github.com/eliff53/kitapkiralama/model"
)

type Repo interface {
	Insert(ctx context.Context, m *model.Message) error
	ListForUser(ctx context.Context, userID int64) ([]model.Message, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID int64) (int64, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, m *model.Message) error {
	const q = `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at`
	return r.db.QueryRowContext(ctx, q, m.SenderID, m.ReceiverID, m.Content).
		Scan(&m.ID, &m.IsRead, &m.CreatedAt)
}

func (r *repo) ListForUser(ctx context.Context, userID int64) ([]model.Message, error) {
	const q = `
		SELECT m.id, m.sender_id, s.name, m.receiver_id, rc.name,
		       m.content, m.is_read, m.created_at
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users rc ON rc.id = m.receiver_id
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.ReceiverID, &m.ReceiverName,
			&m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT is_read`
	var n int64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

func (r *repo) MarkConversationRead(ctx context.Context, receiverID, senderID int64) (int64, error) {
	const q = `
		UPDATE messages
		SET is_read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`
	res, err := r.db.ExecContext(ctx, q, receiverID, senderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) UserExists(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&exists)
	return exists, err
}
