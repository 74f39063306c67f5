package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"marketpaline/internal/adapters/observability"
	"marketpaline/internal/app"
	"marketpaline/internal/domain"
	"marketpaline/internal/gesture"
	"marketpaline/internal/shared"
	"marketpaline/internal/storage/memory"
	mysqlrepo "marketpaline/internal/storage/mysql"
	"marketpaline/internal/tui"
)

func main() {
	cfg := shared.Load()

	// stdout belongs to the renderer
	f, err := os.OpenFile("marketpaline-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log:", err)
		os.Exit(1)
	}
	defer f.Close()
	log.Logger = observability.NewFileLogger(f)
	ctx := log.Logger.WithContext(context.Background())

	var repo domain.ListingRepository
	if cfg.StorageBackend == "mysql" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "database:", err)
			os.Exit(1)
		}
		repo = mysqlrepo.New(db)
	} else {
		mem := memory.New()
		if _, err := app.NewSeedService(nil, mem, nil).SeedFixtures(ctx, cfg.Variant); err != nil {
			fmt.Fprintln(os.Stderr, "fixtures:", err)
			os.Exit(1)
		}
		repo = mem
	}

	pull := gesture.DefaultConfig()
	pull.Threshold = cfg.PullThreshold
	pull.Resistance = cfg.PullResistance
	pull.Delay = cfg.RefreshDelay

	m, err := tui.New(ctx, tui.Options{
		Variant:      cfg.Variant,
		Repo:         repo,
		Pull:         pull,
		ReplyDelay:   cfg.ReplyDelay,
		ShareBaseURL: cfg.ShareBaseURL,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		log.Error().Err(err).Msg("tui exited with error")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
