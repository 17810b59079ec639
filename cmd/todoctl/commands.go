package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-todo-auth/internal/auth"
	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/database"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "todoctl",
		Short:        "Operator tooling for the identity and todos services",
		Long:         "Runs schema migrations and issues or inspects tokens using the same configuration as the services.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCmd(), newTokenCmd())
	return rootCmd
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations of one service",
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("service", "", "Service whose schema to migrate (identity, todos)")
	migrateCmd.Flags().Bool("status", false, "Print migration status instead of applying")
	_ = migrateCmd.MarkFlagRequired("service")

	return migrateCmd
}

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or verify tokens with the configured secret",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Print a token for a subject",
		RunE:  runTokenIssue,
	}
	issueCmd.Flags().String("subject", "", "Subject user id (UUID)")
	_ = issueCmd.MarkFlagRequired("subject")

	verifyCmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its subject and expiry",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenVerify,
	}

	tokenCmd.AddCommand(issueCmd, verifyCmd)
	return tokenCmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("service")
	status, _ := cmd.Flags().GetBool("status")

	service := config.Service(name)
	switch service {
	case config.ServiceIdentity, config.ServiceTodos:
	default:
		return fmt.Errorf("unknown service %q (want identity or todos)", name)
	}

	dbCfg, err := config.LoadDatabase(service)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	db, err := database.Open(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	logger := logging.New(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))).With("service", service)

	if status {
		return database.MigrationStatus(ctx, db, service, logger)
	}

	if err := database.Migrate(ctx, db, service, logger); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", service)
	return nil
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")

	subjectID, err := uuid.Parse(subject)
	if err != nil {
		return fmt.Errorf("subject must be a UUID: %w", err)
	}

	tokens, err := loadTokenService()
	if err != nil {
		return err
	}

	token, err := tokens.CreateToken(subjectID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runTokenVerify(cmd *cobra.Command, args []string) error {
	tokens, err := loadTokenService()
	if err != nil {
		return err
	}

	claims, err := tokens.VerifyToken(args[0])
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "subject: %s\n", claims.SubjectID)
	fmt.Fprintf(out, "expires: %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

// loadTokenService reads the shared token settings. Both services load the
// same auth section, so the identity defaults are as good as any.
func loadTokenService() (auth.TokenService, error) {
	cfg, err := config.Load(config.ServiceIdentity)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	return tokens, nil
}
