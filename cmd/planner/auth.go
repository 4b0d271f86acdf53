package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cppla/planner/app"
	"github.com/cppla/planner/models"
)

func readPassword(given string, confirmToo bool) (string, string, error) {
	if given != "" {
		return given, given, nil
	}
	pw, err := prompt("Password: ")
	if err != nil {
		return "", "", err
	}
	if !confirmToo {
		return pw, pw, nil
	}
	again, err := prompt("Confirm password: ")
	return pw, again, err
}

func signedIn(cmd *cobra.Command, e *env, u *models.User) error {
	if err := e.store.SetServerURL(e.server); err != nil {
		e.log.Sugar().Warnw("remember server failed", "error", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", u.Name())
	return nil
}

func registerCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			pw, again, err := readPassword(password, true)
			if err != nil {
				return err
			}
			u, err := app.SignUp(contextOf(cmd), e.client, e.store, email, pw, again, name)
			if err != nil {
				return err
			}
			return signedIn(cmd, e, u)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			pw, _, err := readPassword(password, false)
			if err != nil {
				return err
			}
			u, err := app.SignIn(contextOf(cmd), e.client, e.store, email, pw)
			if err != nil {
				return err
			}
			return signedIn(cmd, e, u)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			if err := s.SignOut(ctx); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		}),
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: withSession(func(ctx context.Context, e *env, s *app.Session) error {
			u := s.User()
			fmt.Printf("%s <%s>\n", u.Name(), u.Email)
			if u.Provider != "" {
				fmt.Printf("via %s\n", u.Provider)
			}
			return nil
		}),
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
