// Command expense-cli exercises the persistence contract from the terminal:
// pick a backend with DATA_BACKEND (local | sqlite | remote) and list, add,
// or delete expenses against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"simplefinance/internal/attachments"
	"simplefinance/internal/backend"
	"simplefinance/internal/config"
	"simplefinance/internal/core"
	"simplefinance/internal/viewmodel"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.Create(backend.Config{
		Kind:          backend.Kind(cfg.DataBackend),
		LocalDBPath:   cfg.LocalDBPath,
		SQLiteDBPath:  cfg.SQLiteDBPath,
		RemoteBaseURL: cfg.RemoteBaseURL,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "initialize backend:", err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	files, err := attachments.NewDirStore(cfg.AttachmentsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "initialize attachments:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "list":
		runList(ctx, result, files, logger)
	case "add":
		runAdd(ctx, os.Args[2:], result, files, logger)
	case "delete":
		runDelete(ctx, os.Args[2:], result, files, logger)
	default:
		usage()
		os.Exit(2)
	}
}

func runList(ctx context.Context, result *backend.Result, files attachments.Store, logger *slog.Logger) {
	vm := viewmodel.NewListViewModel(result.Service, files, logger)
	vm.Load(ctx)
	for _, e := range vm.Expenses() {
		line := fmt.Sprintf("%s\t%s\t%s\t%.2f\t%s", e.ID, e.Date.Format("2006-01-02"), e.Type, e.Amount, e.Title)
		if e.Location != nil {
			line += fmt.Sprintf("\t(%f,%f %s)", e.Location.Latitude, e.Location.Longitude, e.Location.Name)
		}
		fmt.Println(line)
	}
}

func runAdd(ctx context.Context, args []string, result *backend.Result, files attachments.Store, logger *slog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "expense title")
	typ := fs.String("type", "other", "expense type (food|transport|entertainment|shopping|utilities|other)")
	amount := fs.Float64("amount", 0, "amount")
	date := fs.String("date", "", "date (YYYY-MM-DD, default today)")
	lat := fs.Float64("lat", 0, "location latitude")
	lon := fs.Float64("lon", 0, "location longitude")
	_ = fs.Parse(args)

	when := time.Now()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid date:", err)
			os.Exit(2)
		}
		when = parsed
	}

	vm := viewmodel.NewForm(result.Service, files, nil, logger)
	vm.Expense.Title = *title
	vm.Expense.Type = core.ParseExpenseType(*typ)
	vm.Expense.Amount = *amount
	vm.Expense.Date = when
	vm.SetLocation(ctx, *lat, *lon)

	if err := vm.Expense.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid expense:", err)
		os.Exit(2)
	}
	vm.Save(ctx)
}

func runDelete(ctx context.Context, args []string, result *backend.Result, files attachments.Store, logger *slog.Logger) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "delete requires at least one expense id")
		os.Exit(2)
	}
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid id:", arg)
			os.Exit(2)
		}
		ids = append(ids, id)
	}

	vm := viewmodel.NewListViewModel(result.Service, files, logger)
	vm.Load(ctx)
	vm.DeleteMany(ctx, ids)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: expense-cli <command> [flags]

commands:
  list                          print every expense in the active backend
  add -title T -amount N [...]  record a new expense
  delete <id> [<id> ...]        delete expenses by id

The backend is chosen with DATA_BACKEND (local | sqlite | remote).`)
}
