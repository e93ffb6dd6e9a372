/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "approval-agent",
	Short: "Purchasing approval tracker with SLA agent",
	Long: `Approval Agent is a REST API server for tracking purchasing approvals.
It records approval requests, lets reviewers approve them, and runs a
rule-based agent that reminds or escalates approvals nearing or past
their SLA deadline, notifying stakeholders via chat or email.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
