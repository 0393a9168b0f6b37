package interfaces

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("state not found")

// State stores the conversation state of a user in a chat.
type State interface {
	Get(ctx context.Context, userId, chatId int) (string, map[string]string, error)
	Set(ctx context.Context, userId, chatId int, state string, data map[string]string) error
	Delete(ctx context.Context, userId, chatId int) error
	GetData(ctx context.Context, userId, chatId int, key string) (string, error)
	UpdateData(ctx context.Context, userId, chatId int, data map[string]string) error
}
