package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/usecase"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const commandTimeout = time.Minute

var (
	readPasswordFunc = term.ReadPassword // mockable
	isTerminalFunc   = term.IsTerminal

	errPasswordMismatch = errors.New("passwords do not match")
	errEmptyPassword    = errors.New("password must not be empty")
)

// InitUserCommands registers the "user" command group.
func InitUserCommands(rootCmd *cobra.Command) {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage platform accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active account",
		RunE:  runCreateUser,
	}
	createCmd.Flags().String("email", "", "Email address of the account")
	createCmd.Flags().String("username", "", "Username; derived from the email when empty")
	createCmd.Flags().String("first-name", "", "First name")
	createCmd.Flags().String("last-name", "", "Last name")
	createCmd.Flags().StringSlice("role", []string{string(model.RoleStudent)}, "Role(s): admin, instructor, student, guest")
	createCmd.Flags().String("password", "", "Password; prompted when empty")
	_ = createCmd.MarkFlagRequired("email")

	resetCmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password and end the account's sessions",
		RunE:  runResetPassword,
	}
	resetCmd.Flags().String("email", "", "Email address of the account")
	resetCmd.Flags().String("password", "", "New password; prompted when empty")
	_ = resetCmd.MarkFlagRequired("email")

	unlockCmd := &cobra.Command{
		Use:   "unlock",
		Short: "Clear failed login attempts and any lockout",
		RunE:  runUnlock,
	}
	unlockCmd.Flags().String("email", "", "Email address of the account")
	_ = unlockCmd.MarkFlagRequired("email")

	userCmd.AddCommand(createCmd, resetCmd, unlockCmd)
	rootCmd.AddCommand(userCmd)
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	username, _ := cmd.Flags().GetString("username")
	firstName, _ := cmd.Flags().GetString("first-name")
	lastName, _ := cmd.Flags().GetString("last-name")
	roleNames, _ := cmd.Flags().GetStringSlice("role")

	roles := make([]model.Role, 0, len(roleNames))
	for _, name := range roleNames {
		r, ok := model.ParseRole(name)
		if !ok {
			return fmt.Errorf("%w: %s", usecase.ErrInvalidRole, name)
		}
		roles = append(roles, r)
	}

	password, err := passwordFromFlagOrPrompt(cmd, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	e, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.provisioner().CreateUser(ctx, usecase.ProvisionRequest{
		Email:     email,
		Username:  username,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Roles:     roles,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s) with roles %v\n", user.Email, user.ID, user.Roles)
	return nil
}

func runResetPassword(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, err := passwordFromFlagOrPrompt(cmd, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	e, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.provisioner().ResetPassword(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Password reset for %s; existing sessions ended\n", user.Email)
	return nil
}

func runUnlock(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	e, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.provisioner().Unlock(ctx, email); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared lockout for %s\n", strings.ToLower(strings.TrimSpace(email)))
	return nil
}

// passwordFromFlagOrPrompt returns --password, or reads it from the terminal without
// echo. A piped stdin supplies the password on its first line.
func passwordFromFlagOrPrompt(cmd *cobra.Command, confirm bool) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	fd := int(syscall.Stdin)
	if !isTerminalFunc(fd) {
		return readLine(cmd.InOrStdin())
	}

	out := cmd.ErrOrStderr()
	fmt.Fprint(out, "Enter password: ")
	pwd, err := readPasswordFunc(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	if confirm {
		fmt.Fprint(out, "Confirm password: ")
		again, err := readPasswordFunc(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		if string(again) != string(pwd) {
			return "", errPasswordMismatch
		}
	}
	return string(pwd), nil
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errEmptyPassword
	}
	return line, nil
}
