package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/rfidgate/internal/cli"
)

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Long: `List the serial ports present on this machine. The configured port, if
any, is marked with an asterisk.`,
		RunE: runPorts,
	}
}

func runPorts(cmd *cobra.Command, _ []string) error {
	ports, err := listPorts()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	return cli.RenderPorts(cmd.OutOrStdout(), ports, viper.GetString("serial.port"))
}
