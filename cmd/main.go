package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/logrusorgru/aurora/v3"

	"github.com/sqlshift/sqlshift/internal/cli"

	_ "github.com/sqlshift/sqlshift/database/mysql"
	_ "github.com/sqlshift/sqlshift/database/postgres"
	_ "github.com/sqlshift/sqlshift/database/sqlite"
)

const commandTimeout = 120 * time.Second

func usage() {
	fmt.Println("usage: sqlshift <up|down|status> [flags]")
	fmt.Println("  up      apply pending migrations (--limit 0 = all, default 0)")
	fmt.Println("  down    undo applied migrations (--limit 0 = all, default 1)")
	fmt.Println("  status  show every migration with its apply time")
	fmt.Println("common flags: -db <url> -dir <folder> -table <name> -config <yaml>")
}

type commandFlags struct {
	databaseURL string
	folder      string
	table       string
	configPath  string
	limit       int
}

func parseFlags(name string, defaultLimit int, args []string) (commandFlags, error) {
	var cf commandFlags

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cf.databaseURL, "db", "", "database URL, e.g. postgres://user@localhost:5432/app")
	fs.StringVar(&cf.folder, "dir", "./migrations", "local migrations folder")
	fs.StringVar(&cf.table, "table", "", "bookkeeping table name")
	fs.StringVar(&cf.configPath, "config", "", "yaml configuration file, overrides the other flags")
	fs.IntVar(&cf.limit, "limit", defaultLimit, "limit the number of migrations (0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		return cf, err
	}

	return cf, nil
}

func createApp(cf commandFlags) (*cli.App, cli.CloserFunc, error) {
	if cf.configPath != "" {
		return cli.NewFromYaml(cf.configPath)
	}

	return cli.New(cli.Config{
		DatabaseURL:      cf.databaseURL,
		MigrationsFolder: cf.folder,
		MigrationsTable:  cf.table,
	})
}

func run(command string, args []string) (err error) {
	defaultLimit := 0
	if command == "down" {
		defaultLimit = 1
	}

	cf, err := parseFlags(command, defaultLimit, args)
	if err != nil {
		return err
	}

	if cf.configPath == "" && cf.databaseURL == "" {
		return fmt.Errorf("database not specified, pass -db or -config")
	}

	app, closer, err := createApp(cf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closer(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch command {
	case "up":
		err = app.Up(ctx, os.Stdout, cf.limit)
	case "down":
		err = app.Down(ctx, os.Stdout, cf.limit)
	case "status":
		err = app.Status(ctx, os.Stdout)
	}

	return err
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "up", "down", "status":
	default:
		fmt.Println(aurora.Red("sqlshift: "), fmt.Sprintf("unknown command [%s]", command))
		usage()
		os.Exit(1)
	}

	if err := run(command, os.Args[2:]); err != nil {
		fmt.Println(aurora.Red("sqlshift: "), err.Error())
		os.Exit(1)
	}

	fmt.Println(aurora.Green("sqlshift: "), "all done")
	os.Exit(0)
}
