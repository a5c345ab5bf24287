package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/emeahub/resource-hub-api/internal/models"
	"github.com/emeahub/resource-hub-api/pkg/config"
	appErrors "github.com/emeahub/resource-hub-api/pkg/errors"
)

type assistantConversationWriter interface {
	Create(ctx context.Context, conv *models.AssistantConversation) error
}

type assistantResourceSearcher interface {
	ListPublic(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error)
}

// AssistantService proxies prompts to an external text-generation endpoint.
// The upstream call is bounded by the configured timeout and every failure
// maps to a typed error; conversation logging is best effort.
type AssistantService struct {
	conversations assistantConversationWriter
	resources     assistantResourceSearcher
	client        *http.Client
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           config.AssistantConfig
}

// NewAssistantService constructs an AssistantService instance.
func NewAssistantService(
	conversations assistantConversationWriter,
	resources assistantResourceSearcher,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.AssistantConfig,
) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssistantService{
		conversations: conversations,
		resources:     resources,
		client:        &http.Client{Timeout: cfg.Timeout},
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
	}
}

// Chat sends a prompt upstream and returns the generated reply.
func (s *AssistantService) Chat(ctx context.Context, userID *string, req models.AssistantChatRequest) (*models.AssistantChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}
	reply, err := s.generate(ctx, s.chatPrompt(ctx, req.Prompt))
	if err != nil {
		return nil, err
	}

	if err := s.conversations.Create(ctx, &models.AssistantConversation{
		UserID: userID,
		Prompt: req.Prompt,
		Reply:  reply,
	}); err != nil {
		s.logger.Warn("failed to log assistant conversation", zap.Error(err))
	}

	return &models.AssistantChatResponse{Reply: reply}, nil
}

// chatPrompt prepends the most popular visible resources so the model can
// point users at material that actually exists. Lookup failure falls back to
// the bare message.
func (s *AssistantService) chatPrompt(ctx context.Context, message string) string {
	top, _, err := s.resources.ListPublic(ctx, models.ResourceFilter{Sort: "popular", PageSize: 5})
	if err != nil {
		s.logger.Warn("failed to load resource context for chat", zap.Error(err))
		return message
	}
	if len(top) == 0 {
		return message
	}

	titles := make([]string, 0, len(top))
	for _, res := range top {
		titles = append(titles, res.Title)
	}
	return fmt.Sprintf("Available study materials: %s.\nQuestion: %s", strings.Join(titles, "; "), message)
}

// SmartSearch asks the assistant to distill a natural language query into
// search keywords and runs them through the public listing. When the
// assistant is unavailable the raw query is used as-is.
func (s *AssistantService) SmartSearch(ctx context.Context, req models.SmartSearchRequest) ([]models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search payload")
	}

	search := req.Query
	if s.cfg.Enabled {
		prompt := fmt.Sprintf("Extract at most five search keywords, comma separated, from this query about academic study materials: %s", req.Query)
		if keywords, err := s.generate(ctx, prompt); err == nil {
			cleaned := strings.TrimSpace(strings.ReplaceAll(keywords, ",", " "))
			if cleaned != "" {
				search = cleaned
			}
		} else {
			s.logger.Warn("assistant keyword extraction failed, using raw query", zap.Error(err))
		}
	}

	resources, _, err := s.resources.ListPublic(ctx, models.ResourceFilter{Search: search, PageSize: 20})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search resources")
	}
	return resources, nil
}

func (s *AssistantService) generate(ctx context.Context, prompt string) (string, error) {
	if !s.cfg.Enabled || s.cfg.Endpoint == "" {
		return "", appErrors.New("ASSISTANT_DISABLED", http.StatusServiceUnavailable, "assistant is not enabled")
	}

	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode prompt")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build assistant request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", appErrors.Wrap(err, "ASSISTANT_UNAVAILABLE", http.StatusBadGateway, "assistant request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", appErrors.Wrap(err, "ASSISTANT_UNAVAILABLE", http.StatusBadGateway, "failed to read assistant response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", appErrors.New("ASSISTANT_UNAVAILABLE", http.StatusBadGateway,
			fmt.Sprintf("assistant returned status %d", resp.StatusCode))
	}

	var parsed struct {
		Reply string `json:"reply"`
		Text  string `json:"text"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", appErrors.Wrap(err, "ASSISTANT_UNAVAILABLE", http.StatusBadGateway, "failed to decode assistant response")
	}
	reply := parsed.Reply
	if reply == "" {
		reply = parsed.Text
	}
	if reply == "" {
		return "", appErrors.New("ASSISTANT_UNAVAILABLE", http.StatusBadGateway, "assistant returned an empty reply")
	}
	return reply, nil
}
