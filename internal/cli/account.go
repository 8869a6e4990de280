package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sadopc/orgauns/internal/auth"
	"github.com/sadopc/orgauns/internal/store"
)

type credentialOptions struct {
	Email    string
	Password string
}

func addCredentialArgs(cmd *cobra.Command, o *credentialOptions) {
	cmd.Flags().StringVar(&o.Email, "email", "", "Account email.")
	cmd.Flags().StringVar(&o.Password, "password", "",
		"Account password. Prompted for when omitted.")
}

// complete asks for whatever was not given on the command line.
func (o *credentialOptions) complete() error {
	var fields []huh.Field
	if o.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&o.Email))
	}
	if o.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&o.Password))
	}
	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("cancelled")
		}
		return err
	}
	return nil
}

func addAccount(topLevel *cobra.Command, open func() (*env, error)) {
	ro := &credentialOptions{}
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Example: `
orgauns register --email ada@example.com
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ro.complete(); err != nil {
				return err
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := e.auth.SignUp(cmd.Context(), ro.Email, ro.Password)
			if err != nil {
				return errors.New(auth.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", u.Email)
			return nil
		},
	}
	addCredentialArgs(register, ro)

	lo := &credentialOptions{}
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lo.complete(); err != nil {
				return err
			}
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := e.auth.SignIn(cmd.Context(), lo.Email, lo.Password)
			if err != nil {
				return errors.New(auth.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", u.Email)
			return nil
		},
	}
	addCredentialArgs(login, lo)

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.auth.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			u, ok := e.auth.CurrentUser()
			if !ok {
				return errors.New(auth.Message(store.ErrNotAuthenticated))
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.Email)
			return nil
		},
	}

	topLevel.AddCommand(register, login, logout, whoami)
}
