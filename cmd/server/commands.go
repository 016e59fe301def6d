package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/sqlite"
	"github.com/spf13/cobra"
)

func migrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			version, err := db.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func apiKeyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}
	cmd.AddCommand(apiKeyCreateCommand(a), apiKeyListCommand(a), apiKeyRevokeCommand(a))
	return cmd
}

func (a *app) apiKeys(cmd *cobra.Command) (*apikey.Service, error) {
	db, err := a.openDB(cmd.Context())
	if err != nil {
		return nil, err
	}
	return apikey.NewService(sqlite.NewAPIKeyRepository(db), nil, a.logger), nil
}

func apiKeyCreateCommand(a *app) *cobra.Command {
	var (
		name   string
		scopes []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key and print its token once",
		Long: `Issue a new API key. The token is printed once and cannot be recovered.

Examples:
  # Bootstrap the first administrator key
  crmdesk apikey create --name=owner --scopes=admin

  # Read-only key for a reporting dashboard
  crmdesk apikey create --name=dashboard --scopes=read`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.apiKeys(cmd)
			if err != nil {
				return err
			}
			issued, err := svc.Create(cmd.Context(), apikey.CreateRequest{Name: name, Scopes: scopes})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:     %s\n", issued.ID)
			fmt.Fprintf(out, "scopes: %v\n", []string(issued.Scopes))
			fmt.Fprintf(out, "token:  %s\n", issued.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Key name")
	cmd.Flags().StringSliceVar(&scopes, "scopes", []string{string(apikey.ScopeRead)}, "Scopes to grant: read, write, admin")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func apiKeyListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.apiKeys(cmd)
			if err != nil {
				return err
			}
			keys, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPREFIX\tSCOPES\tSTATE")
			for _, k := range keys {
				state := "active"
				if k.RevokedAt != nil {
					state = "revoked"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\n", k.ID, k.Name, k.KeyPrefix, []string(k.Scopes), state)
			}
			return tw.Flush()
		},
	}
}

func apiKeyRevokeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.apiKeys(cmd)
			if err != nil {
				return err
			}
			if err := svc.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
			return nil
		},
	}
}

func idsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ids [prefix|id]",
		Short: "Show identifier counters",
		Long:  "Show every identifier counter, the counter of one prefix, or whether an id has been issued.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			seq := sqlite.NewSequence(db)
			if len(args) == 1 {
				return showCounter(cmd, seq, args[0])
			}

			counters, err := seq.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PREFIX\tCOUNTER\tLAST ID")
			for _, c := range counters {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Prefix, c.Counter, c.LastID)
			}
			return tw.Flush()
		},
	}
}

// showCounter prints the counter for a prefix such as CLI, or for the prefix
// of an id such as CLI014 along with whether that id was issued.
func showCounter(cmd *cobra.Command, seq *sqlite.Sequence, arg string) error {
	prefix, n, err := ident.Parse(arg)
	if err != nil {
		prefix, n = ident.Prefix(arg), 0
	}
	current, err := seq.Current(cmd.Context(), prefix)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if n == 0 {
		fmt.Fprintf(out, "%s %d\n", prefix, current)
		return nil
	}
	status := "issued"
	if n > current {
		status = "not issued"
	}
	fmt.Fprintf(out, "%s %s (counter %d)\n", arg, status, current)
	return nil
}
