package chatbot

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const assistantTimeout = 20 * time.Second

// Service answers chat messages with a model when one is configured and
// with the role's canned replies otherwise
type Service struct {
	assistant interfaces.Assistant
	metrics   *monitoring.MetricsCollector
	logger    *logger.Logger
	now       func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a chatbot service. assistant may be nil.
func NewService(assistant interfaces.Assistant, metrics *monitoring.MetricsCollector, log *logger.Logger) *Service {
	return &Service{
		assistant: assistant,
		metrics:   metrics,
		logger:    log,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start returns the greeting, suggestions and input placeholder for role
func (s *Service) Start(role types.Role) *types.ChatIntro {
	sc := scriptFor(role)
	suggestions := make([]string, len(sc.suggestions))
	copy(suggestions, sc.suggestions)

	return &types.ChatIntro{
		Greeting:    s.message(sc.greeting, types.ReplySourceCanned),
		Suggestions: suggestions,
		Placeholder: sc.placeholder,
	}
}

// Reply answers req.Message for the signed-in principal
func (s *Service) Reply(ctx context.Context, session *types.Session, req *types.ChatRequest) (*types.ChatMessage, error) {
	if session == nil {
		return nil, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Sign in required")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Message cannot be empty", map[string]interface{}{"field": "message"})
	}

	role := session.Principal.Role

	if s.assistant != nil {
		callCtx, cancel := context.WithTimeout(ctx, assistantTimeout)
		answer, err := s.assistant.Complete(callCtx, role, req.History, message)
		cancel()

		if err == nil && strings.TrimSpace(answer) != "" {
			s.metrics.RecordChatbotReply(string(role), types.ReplySourceLLM)
			reply := s.message(strings.TrimSpace(answer), types.ReplySourceLLM)
			return &reply, nil
		}

		entry := s.logger.WithContext(ctx).WithField("role", role)
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Warn("Assistant unavailable, using canned reply")
	}

	s.metrics.RecordChatbotReply(string(role), types.ReplySourceCanned)
	reply := s.message(s.canned(role), types.ReplySourceCanned)
	return &reply, nil
}

func (s *Service) canned(role types.Role) string {
	replies := scriptFor(role).replies

	s.mu.Lock()
	i := s.rng.Intn(len(replies))
	s.mu.Unlock()

	return replies[i]
}

func (s *Service) message(content, source string) types.ChatMessage {
	return types.ChatMessage{
		ID:        uuid.New().String(),
		Role:      types.ChatRoleAssistant,
		Content:   content,
		Timestamp: s.now().UTC(),
		Source:    source,
	}
}
