// Command islandsim runs the castaway island survival simulation, either
// headless for a fixed number of ticks or in real time behind the HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/talgya/castaway/internal/api"
	"github.com/talgya/castaway/internal/engine"
	"github.com/talgya/castaway/internal/persistence"
	"github.com/talgya/castaway/internal/tuning"
	"github.com/talgya/castaway/internal/watch"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("ISLAND_LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("islandsim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	seed := envInt64("ISLAND_SEED", 42)
	ticks := envInt64("ISLAND_TICKS", 0)
	tuningPath := os.Getenv("ISLAND_TUNING")
	dbPath := envOrDefault("ISLAND_DB", "data/island.db")
	journalDir := os.Getenv("ISLAND_JOURNAL_DIR")
	apiPort := int(envInt64("ISLAND_API_PORT", 8080))
	speed := envFloat("ISLAND_SPEED", 1)

	// ── Tuning ────────────────────────────────────────────────────────
	cfg := tuning.Default()
	if tuningPath != "" {
		loaded, err := tuning.Load(tuningPath)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.Info("tuning loaded", "path", tuningPath)
	}

	// ── Island ────────────────────────────────────────────────────────
	host := engine.NewHost(cfg, seed)
	host.SetSimulationSpeed(speed)
	st := host.Status()
	env := host.EnvironmentState()
	slog.Info("island ready",
		"seed", seed,
		"agents", st.Stats.Population,
		"nodes", len(env.Nodes),
		"fish", len(env.Fish),
		"time", st.Time,
	)

	// ── Recorder ──────────────────────────────────────────────────────
	rec := &recorder{journalDir: journalDir}
	runID := ""
	if dbPath != "off" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err := persistence.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err = db.BeginRun(seed)
		if err != nil {
			return err
		}
		if err := db.SaveMeta("tuning", envOrDefault("ISLAND_TUNING", "default")); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
		rec.db = db
		slog.Info("database opened", "path", dbPath, "run", runID)
	}
	rec.openJournal(seed, runID)
	defer rec.closeJournal()
	if journalDir != "" {
		slog.Info("event journal enabled", "dir", journalDir)
	}

	days := make(chan uint64, 4)
	host.OnEvent(rec.event)
	host.OnReset(rec.reset)
	host.OnDay(func(tick uint64, states []engine.AgentState) {
		rec.day(tick, states)
		select {
		case days <- tick:
		default:
		}
	})

	started := time.Now()
	if ticks > 0 {
		runHeadless(host, int(ticks), days)
	} else {
		if err := runLive(host, apiPort, rec, days); err != nil {
			return err
		}
	}

	return finish(host, rec, started)
}

// runHeadless steps the island a day at a time and reports each day.
func runHeadless(host *engine.Host, ticks int, days <-chan uint64) {
	slog.Info("running headless", "ticks", humanize.Comma(int64(ticks)))
	for remaining := ticks; remaining > 0; {
		n := min(remaining, int(engine.TicksPerDay))
		host.Step(n)
		remaining -= n
		drainDays(host, days)
	}
}

// runLive serves the API and advances in real time until a signal arrives.
func runLive(host *engine.Host, port int, rec *recorder, days <-chan uint64) error {
	adminKey := os.Getenv("ISLAND_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("ISLAND_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	var server *api.Server
	if port > 0 {
		server = &api.Server{Host: host, DB: rec.db, Port: port, AdminKey: adminKey}
		server.Start()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-days:
				report(host)
			}
		}
	}()

	fmt.Println("Starting simulation... (Ctrl+C to stop)")
	host.Run(ctx, 100*time.Millisecond)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("API shutdown", "error", err)
		}
	}
	return nil
}

func drainDays(host *engine.Host, days <-chan uint64) {
	for {
		select {
		case <-days:
			report(host)
		default:
			return
		}
	}
}

// report logs the island's daily health.
func report(host *engine.Host) {
	st := host.Status()
	h := watch.Triage(st, host.EnvironmentState())
	log := slog.Info
	if h.CrisisLevel == watch.LevelCritical || h.CrisisLevel == watch.LevelWarning {
		log = slog.Warn
	}
	log("island health",
		"time", st.Time,
		"level", h.CrisisLevel,
		"population", h.Population,
		"children", h.Children,
		"food", h.FoodStock,
		"food_urgency", fmt.Sprintf("%.2f", h.FoodUrgency),
		"avg_hunger", fmt.Sprintf("%.2f", h.AvgHunger),
		"starvations", h.Starvations,
	)
}

func finish(host *engine.Host, rec *recorder, started time.Time) error {
	st := host.Status()
	digest := host.Digest()
	if err := rec.flush(); err != nil {
		return err
	}
	if rec.db != nil {
		if err := rec.db.SaveAgentStates(st.Tick, host.AgentStates()); err != nil {
			return fmt.Errorf("final snapshot: %w", err)
		}
		if err := rec.db.FinishRun(st.Tick, digest); err != nil {
			return err
		}
	}

	elapsed := time.Since(started)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(st.Tick) / elapsed.Seconds()
	}
	fmt.Printf("\n%s ticks (%s) in %s, %s ticks/s\n",
		humanize.Comma(int64(st.Tick)), st.Time, elapsed.Round(time.Millisecond),
		humanize.CommafWithDigits(rate, 0))
	fmt.Printf("%d alive, %d born, %d died, %s fish caught, %s tools crafted, %d threats slain\n",
		st.Stats.Population, st.Stats.Births, st.Stats.Deaths,
		humanize.Comma(int64(st.Stats.Catches)), humanize.Comma(int64(st.Stats.Crafted)), st.Stats.Hunts)
	for _, cause := range slices.Sorted(maps.Keys(st.Stats.Causes)) {
		fmt.Printf("  %s: %d\n", cause, st.Stats.Causes[cause])
	}
	fmt.Printf("digest %s\n", digest)
	return nil
}

// recorder forwards host callbacks to the database and journal. Events are
// batched into the database once per simulated day.
type recorder struct {
	db         *persistence.DB
	journal    *persistence.Journal
	journalDir string

	mu      sync.Mutex
	pending []engine.Event
}

func (r *recorder) event(e engine.Event) {
	if r.journal != nil {
		if err := r.journal.Write(e); err != nil {
			slog.Warn("journal write failed", "error", err)
		}
	}
	if r.db == nil {
		return
	}
	r.mu.Lock()
	r.pending = append(r.pending, e)
	r.mu.Unlock()
}

func (r *recorder) day(tick uint64, states []engine.AgentState) {
	if err := r.flush(); err != nil {
		slog.Error("daily event save failed", "error", err)
	}
	if r.db != nil {
		if err := r.db.SaveAgentStates(tick, states); err != nil {
			slog.Error("daily snapshot failed", "error", err)
		}
	}
}

// reset closes out the run being discarded and starts recording a new one
// for seed. It runs under the host lock, so no events race it.
func (r *recorder) reset(prev engine.Status, digest string, seed int64) {
	if err := r.flush(); err != nil {
		slog.Error("event save before reset failed", "error", err)
	}
	r.closeJournal()

	runID := ""
	if r.db != nil {
		if err := r.db.FinishRun(prev.Tick, digest); err != nil {
			slog.Error("finish run failed", "error", err)
		}
		id, err := r.db.BeginRun(seed)
		if err != nil {
			slog.Error("begin run failed", "seed", seed, "error", err)
		}
		runID = id
	}
	r.openJournal(seed, runID)
}

// openJournal starts a journal whose files are named after the run, so a
// reset never appends to the previous run's days.
func (r *recorder) openJournal(seed int64, runID string) {
	if r.journalDir == "" {
		return
	}
	prefix := fmt.Sprintf("events-seed%d", seed)
	if len(runID) >= 8 {
		prefix += "-" + runID[:8]
	}
	r.journal = persistence.NewJournal(r.journalDir, prefix)
}

func (r *recorder) closeJournal() {
	if r.journal == nil {
		return
	}
	if err := r.journal.Close(); err != nil {
		slog.Warn("journal close failed", "error", err)
	}
	r.journal = nil
}

func (r *recorder) flush() error {
	if r.journal != nil {
		if err := r.journal.Flush(); err != nil {
			slog.Warn("journal flush failed", "error", err)
		}
	}
	if r.db == nil {
		return nil
	}
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()
	if err := r.db.SaveEvents(batch); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("ignoring malformed integer", "key", key, "value", v)
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring malformed number", "key", key, "value", v)
	}
	return defaultVal
}
