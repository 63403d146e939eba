package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finflow/internal/api"
	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
)

func loginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Authenticate against the backend. The token and user profile are stored
locally and reused by every other command until you log out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, false, func(ctx context.Context, a *app) error {
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

				var err error
				if email == "" {
					if email, err = prompter.Ask(ctx, "Email", ""); err != nil {
						return err
					}
				}
				if password == "" {
					if password, err = prompter.AskSecret(ctx, "Password"); err != nil {
						return err
					}
				}
				if strings.TrimSpace(email) == "" || password == "" {
					return common.NewValidationError("email", "email and password are required")
				}

				user, err := a.session.Login(ctx, a.auth, strings.TrimSpace(email), password)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Welcome, "+user.DisplayName()+"!"))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, false, func(ctx context.Context, a *app) error {
				if err := a.session.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged out"))
				return nil
			})
		},
	}
}

func whoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, false, func(_ context.Context, a *app) error {
				user, ok := a.session.User()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Not logged in"))
					return nil
				}

				var b strings.Builder
				fmt.Fprintf(&b, "Name:    %s\n", user.DisplayName())
				fmt.Fprintf(&b, "Email:   %s\n", user.Email)
				fmt.Fprintf(&b, "Type:    %s\n", user.Type)
				fmt.Fprintf(&b, "Expires: %s", formatExpiry(a.session.ExpiresAt()))
				if a.session.Expired() {
					b.WriteString(" (expired)")
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Session", b.String()))
				return nil
			})
		},
	}
}

func registerCmd(opts *rootOptions) *cobra.Command {
	var (
		email, password, userType string
		name, cpf, birthDate      string
		cnpj, legalName           string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long: `Create an individual (PF) or company (PJ) account. Individuals need --name
and --cpf; companies need --legal-name and --cnpj.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := api.RegisterRequest{
				Email:    strings.TrimSpace(email),
				Password: password,
				Type:     model.UserType(strings.ToUpper(userType)),
			}
			switch req.Type {
			case model.UserTypeIndividual:
				if name == "" || cpf == "" {
					return common.NewValidationError("name", "--name and --cpf are required for PF accounts")
				}
				req.Individual = &model.Individual{Name: name, CPF: cpf, BirthDate: birthDate}
			case model.UserTypeCompany:
				if legalName == "" || cnpj == "" {
					return common.NewValidationError("legal-name", "--legal-name and --cnpj are required for PJ accounts")
				}
				req.Company = &model.Company{LegalName: legalName, CNPJ: cnpj}
			default:
				return common.NewValidationError("type", "type must be PF or PJ")
			}

			return opts.withApp(cmd, false, func(ctx context.Context, a *app) error {
				if req.Password == "" {
					p, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).AskSecret(ctx, "Password")
					if err != nil {
						return err
					}
					req.Password = p
				}

				user, err := a.auth.Register(ctx, req)
				if err != nil {
					return fmt.Errorf("registration failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Account created for "+user.Email+"; run 'finflow login' to start"))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&userType, "type", string(model.UserTypeIndividual), "account type (PF or PJ)")
	cmd.Flags().StringVar(&name, "name", "", "full name (PF)")
	cmd.Flags().StringVar(&cpf, "cpf", "", "CPF (PF)")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "birth date YYYY-MM-DD (PF)")
	cmd.Flags().StringVar(&cnpj, "cnpj", "", "CNPJ (PJ)")
	cmd.Flags().StringVar(&legalName, "legal-name", "", "company legal name (PJ)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
