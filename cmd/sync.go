package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flex_inventory_admin/internal/model"
	"flex_inventory_admin/internal/service"
	"flex_inventory_admin/pkg/flex"
)

// ==================== sync ====================

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "在前台执行一次库存同步",
		Long: `从 Flex 拉取库存报表并与本地目录对账，进度输出到终端。

与 HTTP 触发和定时任务共用同一条同步流程，并写入同步记录 (trigger=cli)。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db := initDatabase(cfg, log)
			deps := initDependencies(cfg, db, log)

			n := newConsoleNotifier(cmd.OutOrStdout())
			if err := deps.TaskManager.RunInventorySync(ctx, model.SyncTriggerCLI, n); err != nil {
				return fmt.Errorf("库存同步失败: %w", err)
			}
			return nil
		},
	}
}

// ==================== verify ====================

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "校验 Flex 地址、API Key 与报表 ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			client := flex.NewClient(flex.Config{
				BaseURL:  cfg.FlexURL,
				APIKey:   cfg.FlexAPIKey,
				ReportID: cfg.ReportID,
				Timeout:  cfg.FlexTimeout,
			})
			return runVerify(cmd.Context(), client, cmd.OutOrStdout(), log)
		},
	}
}

func runVerify(ctx context.Context, client *flex.Client, out io.Writer, log *zap.Logger) error {
	valid, err := client.VerifyCredentials(ctx, client.ReportID())
	if errors.Is(err, flex.ErrInvalidAPIKey) {
		color.New(color.FgRed).Fprintln(out, "✗ Invalid API Key")
		return err
	}
	if err != nil {
		log.Error("[verify] Flex 请求失败", zap.Error(err))
		return err
	}
	if !valid {
		color.New(color.FgYellow).Fprintf(out, "✗ 报表 %s 不存在或不可见\n", client.ReportID())
		return fmt.Errorf("report %s not found", client.ReportID())
	}
	color.New(color.FgGreen).Fprintln(out, "✓ Flex 凭证有效")
	return nil
}

// ==================== 终端进度输出 ====================

// consoleNotifier 把同步进度打印到终端
// 进度只在整数百分比变化时输出一行
type consoleNotifier struct {
	out      io.Writer
	lastPct  string
	finished bool
	err      error
}

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out}
}

func (n *consoleNotifier) Log(msg string) {
	if n.finished {
		return
	}
	color.New(color.FgCyan).Fprintf(n.out, "» %s\n", msg)
}

func (n *consoleNotifier) JSON(v any) {
	if n.finished {
		return
	}
	if p, ok := v.(service.Progress); ok {
		whole, _, _ := strings.Cut(p.Progress, ".")
		if whole == n.lastPct {
			return
		}
		n.lastPct = whole
		fmt.Fprintf(n.out, "  %s %s%%\n", p.Title, p.Progress)
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(n.out, "  %v\n", v)
		return
	}
	fmt.Fprintf(n.out, "  %s\n", raw)
}

func (n *consoleNotifier) Error(err error) {
	if n.finished {
		return
	}
	n.finished = true
	n.err = err
	color.New(color.FgRed, color.Bold).Fprintf(n.out, "✗ %v\n", err)
}

func (n *consoleNotifier) Close() {
	n.finished = true
}
