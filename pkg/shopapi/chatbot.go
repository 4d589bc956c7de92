package shopapi

import (
	"context"
	"encoding/json"
	"strings"
)

const chatFallbackReply = "I'm sorry, I didn't quite get that."

// Chat sends a message to the shop assistant and returns its reply. The
// reply may come back under message, response or reply, or as a bare string.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var raw json.RawMessage
	if err := c.Post(ctx, "/chatbot/chat", map[string]string{"message": message}, &raw); err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	var body struct {
		Message  string `json:"message"`
		Response string `json:"response"`
		Reply    string `json:"reply"`
	}
	_ = json.Unmarshal(raw, &body)
	for _, candidate := range []string{body.Message, body.Response, body.Reply} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}
	return chatFallbackReply, nil
}
