package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/models"
)

var (
	accountEmail    string
	accountUsername string
	accountFullName string

	passwordCurrent string
	passwordNew     string

	accountOutput   string
	accountPassword string
	accountYes      bool
)

var AccountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your profile and account",
}

var accountUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE:  runAccountUpdate,
}

var accountPhotoCmd = &cobra.Command{
	Use:   "photo <image-file>",
	Short: "Upload a profile photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountPhoto,
}

var accountPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE:  runAccountPassword,
}

var accountExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download all of your data as JSON",
	RunE:  runAccountExport,
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete your account",
	RunE:  runAccountDelete,
}

func init() {
	accountUpdateCmd.Flags().StringVar(&accountEmail, "email", "", "New email")
	accountUpdateCmd.Flags().StringVar(&accountUsername, "username", "", "New username")
	accountUpdateCmd.Flags().StringVar(&accountFullName, "full-name", "", "New full name")

	accountPasswordCmd.Flags().StringVar(&passwordCurrent, "current", "", "Current password")
	accountPasswordCmd.Flags().StringVar(&passwordNew, "new", "", "New password")

	accountExportCmd.Flags().StringVarP(&accountOutput, "output", "o", "", "Output file (default stdout)")

	accountDeleteCmd.Flags().StringVar(&accountPassword, "password", "", "Password confirmation")
	accountDeleteCmd.Flags().BoolVar(&accountYes, "yes", false, "Confirm deletion")

	AccountCmd.AddCommand(accountUpdateCmd)
	AccountCmd.AddCommand(accountPhotoCmd)
	AccountCmd.AddCommand(accountPasswordCmd)
	AccountCmd.AddCommand(accountExportCmd)
	AccountCmd.AddCommand(accountDeleteCmd)
}

func runAccountUpdate(cmd *cobra.Command, args []string) error {
	var in models.UserUpdate
	flags := cmd.Flags()
	if flags.Changed("email") {
		in.Email = &accountEmail
	}
	if flags.Changed("username") {
		in.Username = &accountUsername
	}
	if flags.Changed("full-name") {
		in.FullName = &accountFullName
	}
	if in.Email == nil && in.Username == nil && in.FullName == nil {
		return errors.New("nothing to update: pass --email, --username or --full-name")
	}

	return withApp(cmd, screenAccount, func(a *app) error {
		user, err := a.api.UpdateMe(cmd.Context(), in)
		if err != nil {
			return err
		}
		if err := a.provider.SetUser(user); err != nil {
			a.logger.Warn("failed to cache user", "error", err)
		}
		fmt.Fprintln(a.out, successStyle.Render("Profile updated"))
		return nil
	})
}

func runAccountPhoto(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	return withApp(cmd, screenAccount, func(a *app) error {
		user, err := a.api.UploadPhoto(cmd.Context(), args[0], f)
		if err != nil {
			return err
		}
		if err := a.provider.SetUser(user); err != nil {
			a.logger.Warn("failed to cache user", "error", err)
		}
		fmt.Fprintln(a.out, successStyle.Render("Photo uploaded"))
		return nil
	})
}

func runAccountPassword(cmd *cobra.Command, args []string) error {
	return withApp(cmd, screenAccount, func(a *app) error {
		var in models.PasswordChange
		var err error
		if in.CurrentPassword, err = a.prompt("Current password", passwordCurrent); err != nil {
			return err
		}
		if in.NewPassword, err = a.prompt("New password", passwordNew); err != nil {
			return err
		}
		if err := a.api.ChangePassword(cmd.Context(), in); err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render("Password changed"))
		return nil
	})
}

func runAccountExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, screenAccount, func(a *app) error {
		data, err := a.api.ExportData(cmd.Context())
		if err != nil {
			return err
		}
		if accountOutput == "" {
			return printJSON(a.out, data)
		}

		f, err := os.OpenFile(accountOutput, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", accountOutput, err)
		}
		if err := printJSON(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render("Exported account data to "+accountOutput))
		return nil
	})
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	if !accountYes {
		return errors.New("account deletion is permanent, re-run with --yes to confirm")
	}
	return withApp(cmd, screenAccount, func(a *app) error {
		password, err := a.prompt("Password", accountPassword)
		if err != nil {
			return err
		}
		if err := a.sessions.DeleteAccount(cmd.Context(), password); err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render("Account deleted"))
		return nil
	})
}
