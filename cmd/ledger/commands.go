package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Tchaas/Bingo-ledger/internal/utils"
	"github.com/Tchaas/Bingo-ledger/organizations"
	"github.com/Tchaas/Bingo-ledger/transactions"
)

func newLoginCmd() *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the ledger backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps()
			if err != nil {
				return err
			}
			user, err := deps.session.Login(cmd.Context(), email, password, remember)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
			if !remember {
				fmt.Println("Session-only login: credentials are gone when this process exits.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&remember, "remember", false, "persist credentials across runs")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps()
			if err != nil {
				return err
			}
			deps.session.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps()
			if err != nil {
				return err
			}
			user := deps.session.CurrentUser()
			if refresh || user == nil {
				user, err = deps.session.FetchCurrentUser(cmd.Context())
				if err != nil {
					return err
				}
			}
			fmt.Printf("%s <%s>", user.Name, user.Email)
			if user.HasOrganization() {
				fmt.Printf(" (organization %d)", utils.Value(user.OrganizationID))
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the user record from the backend")
	return cmd
}

func newOrgCmd() *cobra.Command {
	org := &cobra.Command{
		Use:   "org",
		Short: "Organization profile",
	}
	org.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the user's organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps()
			if err != nil {
				return err
			}
			user := deps.session.CurrentUser()
			if user == nil {
				user, err = deps.session.FetchCurrentUser(cmd.Context())
				if err != nil {
					return err
				}
			}
			if !user.HasOrganization() {
				return errors.New("current user has no organization")
			}
			orgService, err := organizations.NewService(deps.client)
			if err != nil {
				return err
			}
			record, err := orgService.Get(cmd.Context(), utils.Value(user.OrganizationID))
			if err != nil {
				return err
			}
			fmt.Printf("%s (EIN %s)\n", record.Name, record.EIN)
			if record.City != "" || record.State != "" {
				fmt.Printf("%s, %s\n", record.City, record.State)
			}
			return nil
		},
	})
	return org
}

func newTxCmd() *cobra.Command {
	tx := &cobra.Command{
		Use:   "tx",
		Short: "Ledger transactions",
	}

	var year int
	var status, sort, direction string
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Category review summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps()
			if err != nil {
				return err
			}
			txService, err := transactions.NewService(deps.client)
			if err != nil {
				return err
			}
			rows, err := txService.CategorySummary(cmd.Context(), transactions.SummaryQuery{
				Year:      year,
				Status:    transactions.Status(status),
				Sort:      sort,
				Direction: direction,
			})
			if err != nil {
				return err
			}
			for _, row := range rows {
				fmt.Printf("%-24s %6d tx %12.2f %s\n", row.CategoryID, row.TransactionCount, row.TotalAmount, row.Status)
			}
			return nil
		},
	}
	summary.Flags().IntVar(&year, "year", 0, "restrict to one calendar year")
	summary.Flags().StringVar(&status, "status", "", "filter by review status")
	summary.Flags().StringVar(&sort, "sort", "", "sort column (category, count, amount, status)")
	summary.Flags().StringVar(&direction, "direction", "", "sort direction (asc, desc)")
	tx.AddCommand(summary)
	return tx
}
