package title

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

const maxTitleLength = 80

const titleSystemPrompt = "You generate a short title from the first message a user starts a conversation with. Keep it under 80 characters, summarize the request, and do not use quotes or colons. Reply with the title only."

// Service 根据会话的第一条用户消息生成标题，模型不可用或调用失败时退回到截断策略，保证保存会话不依赖模型健康。
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger *zap.Logger
}

// NewService 创建标题服务。chatModel 可以为 nil，此时只使用截断回退。
func NewService(ctx context.Context, chatModel model.ChatModel, logger *zap.Logger) (*Service, error) {
	svc := &Service{logger: logger}
	if chatModel == nil {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(titleSystemPrompt),
		schema.UserMessage("{message}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, err
	}

	svc.chain = runnable
	return svc, nil
}

// ForMessage 为以 message 开头的会话生成展示标题。
func (s *Service) ForMessage(ctx context.Context, message string) string {
	fallback := truncateTitle(message)
	if s == nil || s.chain == nil {
		return fallback
	}

	out, err := s.chain.Invoke(ctx, map[string]any{"message": message})
	if err != nil {
		s.logger.Warn("title generation failed, using fallback", zap.Error(err))
		return fallback
	}

	if title := sanitizeTitle(out.Content); title != "" {
		return title
	}
	return fallback
}

// sanitizeTitle 清理模型输出：取首行、去引号、限制长度。
func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.Trim(title, "\"'` ")
	return capRunes(title, maxTitleLength)
}

// truncateTitle 是无模型可用时的回退：压缩空白后截断首条消息。
func truncateTitle(message string) string {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return "New conversation"
	}
	return capRunes(strings.Join(fields, " "), maxTitleLength)
}

func capRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	trimmed := strings.TrimRight(string(runes[:limit-3]), " ")
	return trimmed + "..."
}
