package commands

import (
	"context"
	"fmt"

	"ReWear/internal/cli/bootstrap"
	"ReWear/internal/cli/service"
	"ReWear/internal/config"
	"ReWear/internal/model"
)

// prepareLocalCatalog создаёт локальную базу пользователя сразу после входа.
func prepareLocalCatalog(cfg *config.Config) error {
	_, _, done, err := bootstrap.OpenCatalogRepo(cfg.ClientDBPath)
	if err != nil {
		return err
	}
	return done()
}

func greet(u *model.User) {
	fmt.Fprintf(Out, "Hello, %s! Balance: %d points\n", u.Name, u.Points)
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and log in" }
func (registerCmd) Usage() string       { return "register <name> <email> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	u, err := service.NewAuthService(service.NewClient(cfg)).Register(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if err := prepareLocalCatalog(cfg); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Registered successfully")
	greet(u)
	return nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <email> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	u, err := service.NewAuthService(service.NewClient(cfg)).Login(args[0], args[1])
	if err != nil {
		return err
	}
	if err := prepareLocalCatalog(cfg); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged in successfully")
	greet(u)
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored session" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := service.NewAuthService(service.NewClient(cfg)).Logout(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show current user and balance" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c := service.NewClient(cfg)
	login, err := service.NewAuthService(c).CurrentUser()
	if err != nil {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	fmt.Fprintf(Out, "Server: %s\n", cfg.ServerURL)
	fmt.Fprintf(Out, "User:   %s\n", login)
	u, err := c.Me()
	if err != nil {
		// сервер недоступен или сессия истекла: показываем то, что знаем локально
		fmt.Fprintf(Out, "Session: %v\n", err)
		return nil
	}
	fmt.Fprintf(Out, "Role:   %s\n", u.Role)
	fmt.Fprintf(Out, "Points: %d\n", u.Points)
	return nil
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(statusCmd{})
}
