// ABOUTME: Shared helpers for CLI commands
// ABOUTME: Opens the session store and builds the assembly layer
package commands

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/atstrading/dealrecap/internal/config"
	"github.com/atstrading/dealrecap/internal/core"
	"github.com/atstrading/dealrecap/internal/llm"
	"github.com/atstrading/dealrecap/internal/session"
	"github.com/atstrading/dealrecap/internal/store"
)

// openStore loads config, opens the charm-backed session store, and seeds it
// on first use.
func openStore() (*store.Store, *config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	client, err := session.NewClient(&session.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening session store: %w", err)
	}

	st := store.New(client)
	if err := st.Initialize(); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("initializing session: %w", err)
	}
	return st, cfg, nil
}

// newAssembler builds the assembly layer. Without an API key the model
// interfaces stay nil and extraction commands report unavailability.
func newAssembler(st *store.Store, cfg *config.Config) *core.Assembler {
	client, err := llm.New(cfg)
	if err != nil {
		return core.NewAssembler(st, nil, nil, nil)
	}
	return core.NewAssembler(st, client, client, client)
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// formatVolume renders a volume with its unit, if known
func formatVolume(volume float64, uom string) string {
	if uom == "" {
		return fmt.Sprintf("%.0f", volume)
	}
	return fmt.Sprintf("%.0f %s", volume, uom)
}
