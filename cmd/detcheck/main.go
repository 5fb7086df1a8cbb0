// Command detcheck verifies that the island is a pure function of its seed.
// It runs two local islands from the same seed, one with a different speed
// and displayed time of day, and compares state digests every simulated day.
// With ISLAND_API_URL set it also drives a running islandsim through the
// admin API and compares its digests against the local run; start that
// islandsim with ISLAND_SPEED=0 so only admin steps advance it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/talgya/castaway/internal/engine"
	"github.com/talgya/castaway/internal/tuning"
	"github.com/talgya/castaway/internal/watch"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	seed := envInt64OrDefault("ISLAND_SEED", 42)
	ticks := int(envInt64OrDefault("DETCHECK_TICKS", 6000))
	apiURL := os.Getenv("ISLAND_API_URL")
	adminKey := os.Getenv("ISLAND_ADMIN_KEY")

	cfg := tuning.Default()
	if path := os.Getenv("ISLAND_TUNING"); path != "" {
		loaded, err := tuning.Load(path)
		if err != nil {
			slog.Error("tuning", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var actor *watch.Actor
	var observer *watch.Observer
	if apiURL != "" {
		if adminKey == "" {
			slog.Error("ISLAND_ADMIN_KEY is required with ISLAND_API_URL")
			os.Exit(1)
		}
		observer = watch.NewObserver(apiURL)
		actor = watch.NewActor(apiURL, adminKey)
		slog.Info("waiting for islandsim API...", "url", apiURL)
		waitForAPI(observer)
		if _, err := actor.Reset(seed); err != nil {
			slog.Error("remote reset failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("determinism check starting", "seed", seed, "ticks", humanize.Comma(int64(ticks)))
	started := time.Now()

	reference := engine.NewHost(cfg, seed)
	shifted := engine.NewHost(cfg, seed)
	shifted.SetSimulationSpeed(7)
	shifted.SetTimeOfDay(23.5)

	checkpoints := 0
	for done := 0; done < ticks; {
		n := min(ticks-done, int(engine.TicksPerDay))
		reference.Step(n)
		shifted.Step(n)
		done += n
		checkpoints++

		want := reference.Digest()
		if got := shifted.Digest(); got != want {
			fail(done, "presentation settings changed the outcome", want, got)
		}

		if actor != nil {
			if _, err := actor.Step(n); err != nil {
				slog.Error("remote step failed", "error", err)
				os.Exit(1)
			}
			d, err := observer.Digest()
			if err != nil {
				slog.Error("remote digest failed", "error", err)
				os.Exit(1)
			}
			if d.Tick != uint64(done) || d.Digest != want {
				fail(done, "remote island diverged", want, d.Digest)
			}
		}
	}

	// A reset must reproduce the run exactly.
	final := reference.Digest()
	reference.Reset(seed)
	reference.Step(ticks)
	if got := reference.Digest(); got != final {
		fail(ticks, "reset did not reproduce the run", final, got)
	}

	st := reference.Status()
	fmt.Printf("deterministic: %s ticks (%s), %d checkpoints, %s draws, %s\n",
		humanize.Comma(int64(st.Tick)), st.Time, checkpoints,
		humanize.Comma(int64(reference.EnvironmentState().Draws)),
		time.Since(started).Round(time.Millisecond))
	fmt.Printf("digest %s\n", final)
}

func fail(tick int, reason, want, got string) {
	slog.Error("determinism check failed",
		"tick", tick,
		"reason", reason,
		"want", want,
		"got", got,
	)
	os.Exit(1)
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(observer *watch.Observer) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		if observer.Ready() {
			slog.Info("islandsim API is ready")
			return
		}
		if time.Now().After(deadline) {
			slog.Error("islandsim API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("islandsim not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
