package tgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"stickerstreet/pkg/kv"
	"stickerstreet/pkg/tgrouter/interfaces"
)

type stateRecord struct {
	State string            `json:"state"`
	Data  map[string]string `json:"data"`
}

type kvState struct {
	store kv.Store
}

// NewKVState keeps conversation states in store.
func NewKVState(store kv.Store) interfaces.State {
	return &kvState{store: store}
}

func stateKey(userId, chatId int) string {
	return fmt.Sprintf("bot_state:%d:%d", chatId, userId)
}

func (s *kvState) load(ctx context.Context, userId, chatId int) (stateRecord, error) {
	raw, err := s.store.Get(ctx, stateKey(userId, chatId))
	if errors.Is(err, kv.ErrNotFound) {
		return stateRecord{}, interfaces.ErrNotFound
	}
	if err != nil {
		return stateRecord{}, fmt.Errorf("tgrouter: failed get state: %w", err)
	}

	var rec stateRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return stateRecord{}, interfaces.ErrNotFound
	}
	if rec.Data == nil {
		rec.Data = make(map[string]string)
	}
	return rec, nil
}

func (s *kvState) Get(ctx context.Context, userId, chatId int) (string, map[string]string, error) {
	rec, err := s.load(ctx, userId, chatId)
	if err != nil {
		return "", nil, err
	}
	return rec.State, rec.Data, nil
}

func (s *kvState) Set(ctx context.Context, userId, chatId int, state string, data map[string]string) error {
	b, err := json.Marshal(stateRecord{State: state, Data: data})
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, stateKey(userId, chatId), string(b)); err != nil {
		return fmt.Errorf("tgrouter: failed update state: %w", err)
	}
	return nil
}

func (s *kvState) Delete(ctx context.Context, userId, chatId int) error {
	if err := s.store.Delete(ctx, stateKey(userId, chatId)); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("tgrouter: failed delete state: %w", err)
	}
	return nil
}

func (s *kvState) GetData(ctx context.Context, userId, chatId int, key string) (string, error) {
	rec, err := s.load(ctx, userId, chatId)
	if err != nil {
		return "", err
	}
	return rec.Data[key], nil
}

func (s *kvState) UpdateData(ctx context.Context, userId, chatId int, data map[string]string) error {
	rec, err := s.load(ctx, userId, chatId)
	if err != nil {
		return err
	}
	maps.Copy(rec.Data, data)
	return s.Set(ctx, userId, chatId, rec.State, rec.Data)
}
