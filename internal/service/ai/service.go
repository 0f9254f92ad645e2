package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/mingxw/aerochat/backend/internal/config"
)

// maxToolSteps 限制单轮对话中模型与工具往返的次数。
const maxToolSteps = 8

// Service 封装面向预订助手的大模型会话能力。
type Service struct {
	chatModel model.ChatModel
	agent     *react.Agent
}

// NewService 创建 AI 服务，并把固定的工具目录绑定到 react 智能体上。
func NewService(ctx context.Context, cfg config.AIConfig, toolbox *Toolbox) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	tools, err := toolbox.Tools()
	if err != nil {
		return nil, fmt.Errorf("failed to build tool catalogue: %w", err)
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		Model:       chatModel,
		ToolsConfig: compose.ToolsNodeConfig{Tools: tools},
		MaxStep:     maxToolSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build react agent: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		agent:     agent,
	}, nil
}

// StreamConversation 以流式方式运行一轮对话。工具调用在智能体内部完成，返回的流只携带最终回复的增量。
func (s *Service) StreamConversation(ctx context.Context, messages []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.agent.Stream(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to stream agent output: %w", err)
	}
	return stream, nil
}

// GetChatModel 返回底层的聊天模型
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}
