// Command storyapi-admin is the operator CLI: migrations, allow-list
// administration, and cache maintenance without going through the HTTP API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/inkhouse/storyapi/config"
	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
	"github.com/inkhouse/storyapi/internal/domain/model"

	"github.com/inkhouse/storyapi/internal/bootstrap"
	"github.com/inkhouse/storyapi/internal/data"
	"github.com/inkhouse/storyapi/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"allow-add": {
			name:        "allow-add",
			description: "Add an email to the allow list (-email, -role)",
			run:         runAllowAdd,
		},
		"allow-list": {
			name:        "allow-list",
			description: "Print the allow list",
			run:         runAllowList,
		},
		"allow-remove": {
			name:        "allow-remove",
			description: "Remove an allow-list entry by email (-email)",
			run:         runAllowRemove,
		},
		"cache-clear": {
			name:        "cache-clear",
			description: "Drop every cached story list page from Redis",
			run:         runCacheClear,
		},
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: storyapi-admin <command> [flags]")
	fmt.Fprintln(os.Stderr)
	w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, c := range commands() {
		fmt.Fprintf(w, "  %s\t%s\n", c.name, c.description)
	}
	_ = w.Flush()
}

func openDB(ctx *commandContext) (*sql.DB, error) {
	return bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig:    ctx.Config.Postgres,
		RedisConfig: ctx.Config.Redis,
		Logger:      ctx.Logger,
	})
}

func accountService(ctx *commandContext, db *sql.DB) *service.AccountService {
	return service.NewAccountService(service.AccountServiceOptions{
		Repo:   data.NewAccountRepo(db),
		Logger: ctx.Logger,
	})
}

func runMigrate(ctx *commandContext, _ []string) error {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx.Ctx, defaultMigrationTimeout)
	defer cancel()
	return bootstrap.RunMigrations(migrateCtx, db, ctx.Logger)
}

func runAllowAdd(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("allow-add", flag.ContinueOnError)
	email := fs.String("email", "", "email address to allow")
	role := fs.String("role", "editor", "role to assign: editor or reader")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	acct, err := accountService(ctx, db).Create(ctx.Ctx, &model.CreateAccountRequest{
		Email: *email,
		Role:  domainauth.ParseRole(*role),
	})
	if err != nil {
		return err
	}
	fmt.Printf("added %s as %s (id %s)\n", acct.Email, acct.Role, acct.ID)
	return nil
}

func runAllowList(ctx *commandContext, _ []string) error {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	accounts, err := accountService(ctx, db).List(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("allow list is empty: the first verified sign-in becomes an editor")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tCREATED")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Email, a.Role, a.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runAllowRemove(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("allow-remove", flag.ContinueOnError)
	email := fs.String("email", "", "email address to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := data.NewAccountRepo(db)
	acct, err := repo.Lookup(ctx.Ctx, *email)
	if err != nil {
		return err
	}
	deleted, err := repo.Delete(ctx.Ctx, acct.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("account %s disappeared mid-delete", *email)
	}
	fmt.Printf("removed %s\n", acct.Email)
	return nil
}

func runCacheClear(ctx *commandContext, _ []string) error {
	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		DBConfig:    ctx.Config.Postgres,
		RedisConfig: ctx.Config.Redis,
		Logger:      ctx.Logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	cache := data.NewRedisListCache(client, ctx.Config.Cache.ListTTL, ctx.Logger)
	cache.Invalidate(ctx.Ctx)
	fmt.Println("story list cache cleared")
	return nil
}
