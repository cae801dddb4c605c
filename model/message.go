// model/message.go
package model

import "time"

type Message struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"sender_id"`
	SenderName   string    `json:"sender_name,omitempty"`
	ReceiverID   int64     `json:"receiver_id"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	Content      string    `json:"content"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}
