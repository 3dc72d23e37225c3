package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Manage the persona catalogue",
}

var personasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and custom personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		list, err := svc.ListPersonas(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tDESCRIPTION")
		for _, p := range list {
			kind := "built-in"
			if p.IsCustom {
				kind = "custom"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, kind, p.Description)
		}
		return w.Flush()
	},
}

var personasRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a random persona",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		p, err := svc.RandomPersona(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Description)
		return nil
	},
}

var personasAddCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Add a custom persona",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		p, err := svc.AddPersona(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added persona %d\n", p.ID)
		return nil
	},
}

var personasDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a custom persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid persona id %q", args[0])
		}
		svc, _, err := openService(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.DeletePersona(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted persona %d\n", id)
		return nil
	},
}

func init() {
	personasCmd.AddCommand(personasListCmd, personasRandomCmd, personasAddCmd, personasDeleteCmd)
	rootCmd.AddCommand(personasCmd)
}
