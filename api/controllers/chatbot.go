package controllers

import (
	"net/http"

	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/chatbot"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/logger"
)

const maxChatMessage = 2000

type chatRequest struct {
	Message string `json:"message" validate:"notblank"`
}

type chatResponse struct {
	Reply    chatbot.Message   `json:"reply"`
	Messages []chatbot.Message `json:"messages"`
}

// ChatSend forwards one message to the assistant. An unreachable assistant
// still answers 200 with the apology recorded in the transcript.
func ChatSend(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body chatRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		reply, err := s.Chat.Send(r.Context(), validators.SanitizeString(body.Message, maxChatMessage))
		if err != nil && reply.ID == "" {
			return nil, err
		}
		return chatResponse{Reply: reply, Messages: s.Chat.Messages()}, nil
	})
}

func ChatHistory(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(_ *http.Request, s *storefront.Session) (any, error) {
		return s.Chat.Messages(), nil
	})
}
