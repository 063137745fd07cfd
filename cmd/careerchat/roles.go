package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bububa/careerchat/advisor"
)

func newRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "roles",
		Short:       "Print the system prompt of every participant",
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := advisor.LoadRoles(cfg.RolesFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, role := range roles.Roles {
				fmt.Fprintln(out, nameStyle.Sprintf("%s (%s)", role.Name, role.Kind))
				if len(role.Tools) > 0 {
					fmt.Fprintln(out, toolStyle.Sprintf("tools: %v", role.Tools))
				}
				fmt.Fprintln(out, roles.PromptGenerator(role).Generate())
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
