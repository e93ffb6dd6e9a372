/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"log"

	"github.com/mautops/approval-agent/internal/config"
	"github.com/mautops/approval-agent/internal/container"
	"github.com/spf13/cobra"
)

// agentCmd represents the agent command
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run one SLA evaluation pass",
	Long: `Run the SLA agent once against all pending approvals and exit.
Approvals past half their SLA window get a reminder; approvals past the
full window are escalated to the next authority. Every action taken is
written to the audit log. Useful for cron-style scheduling without
keeping the API server running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 初始化容器
		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 3. 执行一次评估
		actions, err := ctr.AgentService().RunOnce(cmd.Context())
		if err != nil {
			return fmt.Errorf("agent run failed: %w", err)
		}

		for _, action := range actions {
			log.Printf("%s: %s", action.Action, action.ApprovalID)
		}
		log.Printf("Agent run completed, %d action(s) taken", len(actions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)

	// 添加配置标志
	agentCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
}
