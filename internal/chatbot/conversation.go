package chatbot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
)

const (
	Greeting       = "Hello! I'm your PC building assistant. How can I help you today? You can ask me to build a PC within a specific budget!"
	UnavailableMsg = "Sorry, I'm having trouble connecting to the server right now. Please try again later."

	defaultHistory = 50
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Message struct {
	ID     string    `json:"id"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

type API interface {
	Chat(ctx context.Context, message string) (string, error)
}

type ConversationParams struct {
	API    API
	Logger *logger.Logger
	// MaxHistory bounds the kept transcript; the greeting always stays.
	MaxHistory int
	Now        func() time.Time
}

// Conversation is one session's transcript with the shop assistant.
type Conversation struct {
	api        API
	logg       *logger.Logger
	maxHistory int
	now        func() time.Time

	mu       sync.Mutex
	messages []Message
}

func NewConversation(params ConversationParams) (*Conversation, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "chat api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.MaxHistory <= 1 {
		params.MaxHistory = defaultHistory
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	c := &Conversation{api: params.API, logg: params.Logger, maxHistory: params.MaxHistory, now: params.Now}
	c.reset()
	return c, nil
}

// Send records the user's message and the assistant's reply. When the
// assistant is unreachable an apology is recorded instead and the error is
// returned alongside it.
func (c *Conversation) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, pkgerrors.New(pkgerrors.CodeValidation, "message is required").
			WithDetails(map[string]string{"message": "is required"})
	}
	c.append(c.message(SenderUser, text))

	reply, err := c.api.Chat(ctx, text)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "chat assistant unavailable")
		msg := c.message(SenderBot, UnavailableMsg)
		c.append(msg)
		return msg, err
	}
	msg := c.message(SenderBot, reply)
	c.append(msg)
	return msg, nil
}

func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// OnAuthChange starts a fresh transcript on sign-out.
func (c *Conversation) OnAuthChange(_ context.Context, authenticated bool) {
	if !authenticated {
		c.reset()
	}
}

func (c *Conversation) reset() {
	c.mu.Lock()
	c.messages = []Message{c.message(SenderBot, Greeting)}
	c.mu.Unlock()
}

func (c *Conversation) message(sender Sender, text string) Message {
	return Message{ID: uuid.NewString(), Sender: sender, Text: text, SentAt: c.now().UTC()}
}

func (c *Conversation) append(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
	if over := len(c.messages) - c.maxHistory; over > 0 {
		// keep the greeting at index 0
		c.messages = append(c.messages[:1], c.messages[1+over:]...)
	}
}
