package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"ReWear/internal/config"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "login <email> <password>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// AdminCommand помечает команды, которые сервер выполнит только для администратора.
type AdminCommand interface {
	AdminOnly() bool
}

func isAdmin(c Command) bool {
	a, ok := c.(AdminCommand)
	return ok && a.AdminOnly()
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds a help text for all commands; admin commands are listed separately.
func FormatGlobalUsage() string {
	lines := []string{
		"ReWear CLI",
		"",
		"Usage:",
		"  rwcli [--base-url <host:port>] [--https] <command> [args]",
		"",
		"Commands:",
	}
	var admin []string
	for _, c := range List() {
		line := fmt.Sprintf("  %-44s %s", c.Usage(), c.Description())
		if isAdmin(c) {
			admin = append(admin, line)
			continue
		}
		lines = append(lines, line)
	}
	if len(admin) > 0 {
		lines = append(lines, "", "Admin commands:")
		lines = append(lines, admin...)
	}
	return strings.Join(lines, "\n") + "\n"
}
