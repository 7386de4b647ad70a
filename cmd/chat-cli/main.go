// File: cmd/chat-cli/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-granny/internal/cli"
	"github.com/iyunix/go-granny/internal/client"
	"github.com/iyunix/go-granny/internal/config"
	"github.com/iyunix/go-granny/internal/services/conversation"
)

func main() {
	cfg := config.Load()

	var server string
	var limit int
	cmd := &cobra.Command{
		Use:           "chat-cli",
		Short:         "Chat with Granny from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return run(cfg, server, limit)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:"+cfg.ServerPort, "Granny server base URL")
	cmd.Flags().IntVar(&limit, "limit", cfg.ConversationLimit, "messages sent with each turn")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, server string, limit int) error {
	storeConfig := conversation.DefaultConfig()
	storeConfig.ConversationLimit = limit
	if cfg.PersonaPrompt != "" {
		storeConfig.PersonaPrompt = cfg.PersonaPrompt
	}

	session := cli.NewSession(
		conversation.NewStore(storeConfig),
		client.New(server, cfg.UpstreamTimeout),
		os.Stdout,
	)

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	historyFile := historyPath()
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		saveHistory(line, historyFile)
		line.Close()
	}()

	fmt.Printf("Talking to Granny at %s. Type /help for commands.\n", server)

	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			fmt.Println()
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		// Ctrl+C while waiting for a reply cancels that reply only.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		cont, err := session.Handle(ctx, input)
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
		}
		if !cont {
			return nil
		}
	}
}

func historyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "granny", "cli_history")
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
