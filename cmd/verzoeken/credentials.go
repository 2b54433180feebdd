package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/verzoeken/internal/app"
	"github.com/Ramsey-B/verzoeken/internal/repositories/apicredential"
	"github.com/Ramsey-B/verzoeken/pkg/models"
)

var credential models.APICredential

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the credentials used to call sibling APIs",
}

var credentialsAddCmd = &cobra.Command{
	Use:   "add <api-root>",
	Short: "Store credentials for an API root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, a *app.App) error {
			credential.APIRoot = args[0]
			created, err := apicredential.NewRepository(a.Database(), a.Logger()).Create(ctx, credential)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored credentials %d for %s\n", created.ID, created.APIRoot)
			return nil
		})
	},
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored API roots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, a *app.App) error {
			creds, err := apicredential.NewRepository(a.Database(), a.Logger()).List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "API ROOT\tLABEL\tCLIENT ID\tUSER ID")
			for _, c := range creds {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.APIRoot, c.Label, c.ClientID, c.UserID)
			}
			return w.Flush()
		})
	},
}

var credentialsRemoveCmd = &cobra.Command{
	Use:   "remove <api-root>",
	Short: "Remove the credentials for an API root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return apicredential.NewRepository(a.Database(), a.Logger()).Delete(ctx, args[0])
		})
	},
}

func init() {
	flags := credentialsAddCmd.Flags()
	flags.StringVar(&credential.Label, "label", "", "Human readable name of the API")
	flags.StringVar(&credential.ClientID, "client-id", "", "Client id the JWT is issued for")
	flags.StringVar(&credential.Secret, "secret", "", "Secret the JWT is signed with")
	flags.StringVar(&credential.UserID, "user-id", "", "User id carried in the JWT")
	flags.StringVar(&credential.UserRepresentation, "user-representation", "", "User representation carried in the JWT")
	_ = credentialsAddCmd.MarkFlagRequired("client-id")
	_ = credentialsAddCmd.MarkFlagRequired("secret")

	credentialsCmd.AddCommand(credentialsAddCmd, credentialsListCmd, credentialsRemoveCmd)
}
