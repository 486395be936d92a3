package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/dental-voice-api/internal/auth"
	appconfig "github.com/wolfman30/dental-voice-api/internal/config"
	"github.com/wolfman30/dental-voice-api/internal/database"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

// adminCreator is the part of auth.Service the CLI needs.
type adminCreator interface {
	CreateAdmin(ctx context.Context, username, email, password string) (*auth.PublicUser, error)
}

// connectFunc opens the account store and returns a cleanup func.
type connectFunc func(ctx context.Context) (adminCreator, func(), error)

func main() {
	if err := newRootCmd(connectAuth).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "dentalctl",
		Short:        "Operator tasks for the dental voice API",
		SilenceUsage: true,
	}
	root.AddCommand(createAdminCmd(connect))
	return root
}

func createAdminCmd(connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			var err error
			if strings.TrimSpace(email) == "" {
				if email, err = prompt(in, out, "Email: "); err != nil {
					return err
				}
			}
			if strings.TrimSpace(username) == "" {
				if username, err = prompt(in, out, "Username (blank for email): "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(in, out); err != nil {
					return err
				}
			}

			svc, cleanup, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := svc.CreateAdmin(cmd.Context(), username, email, password)
			switch {
			case errors.Is(err, auth.ErrEmailRegistered), errors.Is(err, auth.ErrDuplicateUser):
				return fmt.Errorf("an admin with email %s already exists", strings.TrimSpace(email))
			case err != nil:
				return err
			}
			fmt.Fprintf(out, "created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Admin user name (defaults to the email)")
	cmd.Flags().String("email", "", "Admin email, used to log in")
	cmd.Flags().String("password", "", "Admin password (prompted when omitted)")
	return cmd
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(in *bufio.Reader, out io.Writer) (string, error) {
	password, err := prompt(in, out, "Password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	confirm, err := prompt(in, out, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func connectAuth(ctx context.Context) (adminCreator, func(), error) {
	if err := appconfig.LoadDotEnv(); err != nil {
		return nil, nil, err
	}
	cfg := appconfig.Load()
	pool, err := database.Connect(ctx, database.PoolConfig{URL: cfg.DatabaseURL, MaxConns: 2})
	if err != nil {
		return nil, nil, err
	}
	secret := cfg.AdminJWTSecret
	if secret == "" {
		// Account creation never signs tokens.
		secret = "unused"
	}
	svc := auth.NewService(
		auth.NewPostgresUserRepository(pool),
		auth.NewTokenIssuer(secret, cfg.AdminTokenTTL),
		logging.New(cfg.LogLevel),
	)
	return svc, pool.Close, nil
}
