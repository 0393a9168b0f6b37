package storefront

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"stickerstreet/internal/structs"
	"stickerstreet/pkg/apiclient"
)

const chatErrorHint = "Erreur d'envoi. Vérifie ta connexion et l'URL de l'API."

func (s *Store) Messages() []structs.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]structs.ChatMessage(nil), s.messages...)
}

// RefreshChat replaces the transcript with the server's. Failures keep the
// current transcript.
func (s *Store) RefreshChat(ctx context.Context) error {
	messages, err := s.api.Chat(ctx)
	if err != nil {
		s.logger.Debug(ctx, "->api.Chat", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()
	return nil
}

// SendChatMessage shows text right away, then adopts the server transcript.
// A failure appends a bot message with the error.
func (s *Store) SendChatMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	s.messages = append(s.messages, structs.ChatMessage{
		From: structs.ChatFromUser,
		Text: text,
		Time: s.now().Format("15:04"),
	})
	s.mu.Unlock()

	messages, err := s.api.PostChatMessage(ctx, text)
	if err != nil {
		s.logger.Warn(ctx, "->api.PostChatMessage", zap.Error(err))

		msg := strings.TrimSpace(apiclient.Message(err))
		if msg == "" {
			msg = chatErrorHint
		}

		s.mu.Lock()
		s.messages = append(s.messages, structs.ChatMessage{
			From: structs.ChatFromBot,
			Text: msg + " Réessaie ou contacte-nous via Telegram.",
			Time: s.now().Format("15:04"),
		})
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()
	return nil
}
