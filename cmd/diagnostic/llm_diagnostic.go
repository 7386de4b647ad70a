// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-granny/internal/config"
	"github.com/iyunix/go-granny/internal/domain"
	"github.com/iyunix/go-granny/internal/services"
	"github.com/iyunix/go-granny/internal/services/ai"
	"github.com/iyunix/go-granny/internal/services/conversation"
)

func main() {
	var prompt string
	cmd := &cobra.Command{
		Use:          "diagnostic",
		Short:        "Send one prompt straight to the upstream model server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), prompt)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "How yuh do, Granny?", "message sent to the model")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(parent context.Context, prompt string) error {
	cfg := config.Load()
	logger := services.NewLogger("granny-diagnostic", cfg.Environment, cfg.LogLevel)

	aiConfig := ai.DefaultConfig()
	aiConfig.BaseURL = cfg.APIBaseURL
	aiConfig.Model = cfg.ModelName
	aiConfig.Protocol = cfg.UpstreamProtocol
	aiConfig.APIKey = cfg.OpenAIAPIKey
	aiConfig.Timeout = cfg.UpstreamTimeout

	fmt.Printf("Testing %s upstream at %s with model %s\n", aiConfig.Protocol, aiConfig.BaseURL, aiConfig.Model)

	provider, err := ai.NewProvider(aiConfig, logger)
	if err != nil {
		return fmt.Errorf("provider setup failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(parent, aiConfig.Timeout)
	defer cancel()

	if err := provider.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Println("Health check passed")

	persona := cfg.PersonaPrompt
	if persona == "" {
		persona = conversation.DefaultPersonaPrompt
	}
	req := ai.ChatRequest{
		Model: aiConfig.Model,
		Messages: []domain.HistoryEntry{
			{Content: persona, Role: domain.RoleSystem},
			{Content: prompt, Role: domain.RoleUser},
		},
	}

	var reply strings.Builder
	var last ai.Fragment
	fragments := 0
	err = provider.StreamChat(ctx, req, func(f ai.Fragment) bool {
		fragments++
		reply.WriteString(f.Content())
		fmt.Print(f.Content())
		last = f
		return !f.Done
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	fmt.Printf("Fragments: %d, characters: %d, done: %t\n", fragments, reply.Len(), last.Done)
	if last.Done {
		fmt.Printf("total_duration: %s, eval_count: %s\n", orNone(last.TotalDuration), orNone(last.EvalCount))
	}
	return nil
}

func orNone(raw []byte) string {
	if len(raw) == 0 {
		return "n/a"
	}
	return string(raw)
}
