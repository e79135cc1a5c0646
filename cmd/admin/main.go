// Command admin manages MYCOgenesis user roles and profiles.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	firebase "firebase.google.com/go/v4"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"mycogenesis/internal/admin"
	"mycogenesis/internal/config"
	"mycogenesis/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage MYCOgenesis users",
	Long: `Manage Firebase users and their profiles.

Available subcommands:
  set-role         - Set a user's role claim and mirror it into the profile
  migrate-profiles - Fill missing fields of every user profile
  delete-account   - Delete a user's profile and account`,
	SilenceUsage: true,
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Set a user's role (admin, editor or user)",
	RunE:  runSetRole,
}

var migrateProfilesCmd = &cobra.Command{
	Use:   "migrate-profiles",
	Short: "Fill missing fields of every user profile",
	RunE:  runMigrateProfiles,
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete a user's profile and then the account",
	RunE:  runDeleteAccount,
}

var (
	email   string
	role    string
	dryRun  bool
	confirm bool
)

func init() {
	setRoleCmd.Flags().StringVar(&email, "email", "", "email of the user")
	setRoleCmd.Flags().StringVar(&role, "role", "", "role to set: admin, editor or user")
	_ = setRoleCmd.MarkFlagRequired("email")
	_ = setRoleCmd.MarkFlagRequired("role")

	migrateProfilesCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing them")

	deleteAccountCmd.Flags().StringVar(&email, "email", "", "email of the user")
	deleteAccountCmd.Flags().BoolVar(&confirm, "confirm", false, "really delete the account")
	_ = deleteAccountCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(setRoleCmd, migrateProfilesCmd, deleteAccountCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newService connects to Firebase with the server's configuration.
func newService(ctx context.Context) (*admin.Service, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(cfg.Log, os.Stderr)

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize firebase: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("firebase auth: %w", err)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("firestore: %w", err)
	}

	svc := admin.NewService(admin.NewFirebaseUsers(authClient), admin.NewFirestoreProfiles(fsClient), log)
	return svc, func() { _ = fsClient.Close() }, nil
}

func runSetRole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := svc.SetRole(ctx, email, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set role %q for %s (%s). The user must sign in again to pick it up.\n", role, u.Email, u.UID)
	return nil
}

func runMigrateProfiles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := svc.MigrateProfiles(ctx, dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	uids := make([]string, 0, len(report.Updated))
	for uid := range report.Updated {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	for _, uid := range uids {
		fmt.Fprintf(out, "  %s: %v\n", uid, report.Updated[uid])
	}
	verb := "Updated"
	if dryRun {
		verb = "Would update"
	}
	fmt.Fprintf(out, "%s %d of %d profiles.\n", verb, len(report.Updated), report.Scanned)
	return nil
}

func runDeleteAccount(cmd *cobra.Command, args []string) error {
	if !confirm {
		return fmt.Errorf("refusing to delete %s without --confirm", email)
	}
	ctx := cmd.Context()
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := svc.DeleteAccount(ctx, email, confirm)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s).\n", u.Email, u.UID)
	return nil
}
