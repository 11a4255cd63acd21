package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the backend is awake",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ok, err := a.client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("backend %s: %w", a.client.BaseURL(), err)
		}
		status := "OK"
		if !ok {
			status = "NOT OK"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "backend %s: %s\n", a.client.BaseURL(), status)
		return nil
	},
}

var microCmd = &cobra.Command{
	Use:   "micro",
	Short: "Print the backend's micro predictions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		m, err := a.client.Micro(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mW      %s GeV\n", scalar(m.MW))
		fmt.Fprintf(out, "m_mu    %s MeV\n", scalar(m.MMu))
		fmt.Fprintf(out, "m_e     %s MeV\n", scalar(m.ME))
		return nil
	},
}

func scalar(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6g", *v)
}
