// Package main implements the mentionlab CLI commands.
// This file contains the ask and history commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askPlatforms []string

// askCmd submits one question to one or more platforms
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question on the selected platforms and extract the answers",
	Long: `Submits the question to each selected platform in turn, waits for the
answer, and prints a JSON result per platform with the extracted
response text and citation links.

Platforms must be logged in first (see "mentionlab login"). Without
--platforms the question goes to every logged-in platform.

Example:
  mentionlab ask "推荐几款国产新能源汽车" --platforms doubao,kimi`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var historyCmd = &cobra.Command{
	Use:   "history [platform-id]",
	Short: "Show recorded ask results for a platform, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	askCmd.Flags().StringSliceVar(&askPlatforms, "platforms", nil, "Platform ids to ask (default: all logged-in)")
	rootCmd.AddCommand(askCmd, historyCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	rt.notifyShutdown(cancel)

	targets := askPlatforms
	if len(targets) == 0 {
		records, err := rt.store.List(ctx)
		if err != nil {
			return fmt.Errorf("list platforms: %w", err)
		}
		for _, rec := range records {
			if rec.IsLoggedIn {
				targets = append(targets, rec.ID)
			}
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("没有已登录的平台，请先执行 mentionlab login <platform>")
	}

	logger.Info("asking", zap.String("question", question), zap.Strings("platforms", targets))

	succeeded := 0
	for i, id := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Pause between platforms so submissions do not look scripted.
		if i > 0 {
			select {
			case <-time.After(rt.cfg.AskDelay()):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		result := rt.orch.Ask(ctx, id, question)
		if result.Success {
			succeeded++
			sourcesJSON, _ := json.Marshal(result.Sources)
			if _, err := rt.store.RecordQuery(ctx, id, question, result.Response, string(sourcesJSON)); err != nil {
				logger.Warn("record query failed", zap.String("platform", id), zap.Error(err))
			}
		}

		out, err := json.MarshalIndent(struct {
			Platform string   `json:"platform"`
			Success  bool     `json:"success"`
			Response string   `json:"response,omitempty"`
			Sources  []string `json:"sources,omitempty"`
			Error    string   `json:"error,omitempty"`
		}{id, result.Success, result.Response, result.Sources, result.Error}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}

	fmt.Printf("完成：%d/%d 个平台成功\n", succeeded, len(targets))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	queries, err := rt.store.QueriesForPlatform(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		fmt.Println("暂无提问记录")
		return nil
	}
	for _, q := range queries {
		fmt.Printf("[%s] %s\n", q.CreatedAt.Format("2006-01-02 15:04:05"), q.Question)
		fmt.Printf("  %s\n", firstLine(q.Response))
		if q.Sources != "" && q.Sources != "[]" && q.Sources != "null" {
			fmt.Printf("  来源: %s\n", q.Sources)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
