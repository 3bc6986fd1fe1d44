package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/buildcost/buildcost/internal/adapter/postgres"
	"github.com/buildcost/buildcost/internal/config"
	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/user"
	"github.com/buildcost/buildcost/internal/port/database"
	"github.com/buildcost/buildcost/internal/service"
)

// runAdmin dispatches admin subcommands (create-user, list-users,
// reset-password).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "create-user":
		return runAdminCreateUser(args[1:])
	case "list-users":
		return runAdminListUsers(args[1:])
	case "reset-password":
		return runAdminResetPassword(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: buildcost admin <command> [options]

Commands:
  create-user      Create a new user
  list-users       List all users
  reset-password   Reset a user's password
  help             Show this help message

Examples:
  buildcost admin create-user --username admin --name "Site Admin" --admin
  buildcost admin list-users
  buildcost admin reset-password --username admin
`)
}

func loadAdminDeps() (*service.UserService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.NewStore(pool)
	userSvc := service.NewUserService(store, cfg.Auth.BcryptCost)

	cleanup := func() {
		pool.Close()
	}
	return userSvc, cleanup, nil
}

func runAdminCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := fs.String("username", "", "login name (required)")
	name := fs.String("name", "", "display name (required)")
	email := fs.String("email", "", "email address")
	roleCategory := fs.String("role-category", "", "role category ID for reviewer eligibility")
	password := fs.String("password", "", "password (prompted if not provided)") //nolint:gosec // CLI flag
	admin := fs.Bool("admin", false, "grant admin role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return fmt.Errorf("--username is required")
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	role := user.RoleMember
	if *admin {
		role = user.RoleAdmin
	}

	userSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	u, err := userSvc.Create(ctx, &user.CreateRequest{
		Username:        *username,
		Name:            *name,
		Email:           *email,
		Password:        pass,
		ConfirmPassword: pass,
		Role:            role,
		RoleCategoryID:  *roleCategory,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User created: %s (id=%s, role=%s)\n", u.Username, u.ID, u.Role)
	return nil
}

func runAdminListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	userSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	page, err := userSvc.List(ctx, domain.PageRequest{PageNum: 1, PageSize: 200}, database.UserFilter{})
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(page.List) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE\tROLE_CATEGORY\tACTIVE")
	for i := range page.List {
		u := &page.List[i]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
			u.ID, u.Username, u.Name, u.Role, u.RoleCategoryID, u.IsActive)
	}
	return w.Flush()
}

func runAdminResetPassword(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	username := fs.String("username", "", "login name (required)")
	password := fs.String("password", "", "new password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("New password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	userSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	u, err := userSvc.GetByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("find user %s: %w", *username, err)
	}
	if err := userSvc.ResetPassword(ctx, u.ID, pass); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Password updated for %s\n", u.Username)
	return nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
