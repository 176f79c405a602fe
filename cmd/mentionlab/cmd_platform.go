// Package main implements the mentionlab CLI commands.
// This file contains platform and session management commands.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var platformsInit bool

// platformsCmd lists known platforms
var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List known platforms and their login state",
	RunE:  runPlatforms,
}

// loginCmd opens a platform for interactive login
var loginCmd = &cobra.Command{
	Use:   "login [platform-id]",
	Short: "Log in to a platform interactively and save the session",
	Long: `Opens the platform's site in a browser window. Complete the login
there (scan the QR code or enter credentials), then press Enter here to
save the session. The saved session is restored for every later ask.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [platform-id]",
	Short: "Discard a platform's saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

var checkCmd = &cobra.Command{
	Use:   "check [platform-id]",
	Short: "Verify a saved session is still valid",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	platformsCmd.Flags().BoolVar(&platformsInit, "init", false, "Seed the supported platforms into the database")
	rootCmd.AddCommand(platformsCmd, loginCmd, logoutCmd, checkCmd)
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()
	if platformsInit {
		if err := rt.store.Seed(ctx); err != nil {
			return fmt.Errorf("seed platforms: %w", err)
		}
		fmt.Println("平台已初始化")
	}

	records, err := rt.store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("数据库为空，请先执行 mentionlab platforms --init")
		return nil
	}
	for _, rec := range records {
		state := "未登录"
		if rec.IsLoggedIn {
			state = "已登录"
		}
		fmt.Printf("%-10s %-8s %-6s %s\n", rec.ID, rec.Name, state, rec.URL)
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	rt.notifyShutdown(cancel)

	ls, err := rt.orch.BeginLogin(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("浏览器已打开 %s\n", ls.URL())
	fmt.Print("请在浏览器中完成登录，完成后按回车保存会话（输入 q 放弃）: ")

	lineCh := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		lineCh <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		rt.orch.AbortLogin(ls)
		return ctx.Err()
	case line := <-lineCh:
		if strings.EqualFold(line, "q") {
			rt.orch.AbortLogin(ls)
			fmt.Println("已放弃，未保存会话")
			return nil
		}
	}

	if err := rt.orch.ConfirmLogin(ctx, ls); err != nil {
		return err
	}
	fmt.Printf("%s 登录成功，会话已保存\n", args[0])
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.orch.Logout(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("%s 已登出\n", args[0])
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	rt.notifyShutdown(cancel)

	valid, err := rt.orch.CheckSession(ctx, args[0])
	if err != nil {
		return err
	}
	if valid {
		fmt.Printf("%s 会话有效\n", args[0])
	} else {
		fmt.Printf("%s 会话已失效，请重新登录\n", args[0])
	}
	return nil
}
