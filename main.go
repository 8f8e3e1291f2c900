package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/KianBaghai/fantasy-predictor/internal/auth"
	"github.com/KianBaghai/fantasy-predictor/internal/clickhouse"
	"github.com/KianBaghai/fantasy-predictor/internal/config"
	"github.com/KianBaghai/fantasy-predictor/internal/draft"
	"github.com/KianBaghai/fantasy-predictor/internal/handlers"
	"github.com/KianBaghai/fantasy-predictor/internal/importer"
	"github.com/KianBaghai/fantasy-predictor/internal/logger"
	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/pubsub"
	"github.com/KianBaghai/fantasy-predictor/internal/scoring"
	"github.com/KianBaghai/fantasy-predictor/internal/store"
	"github.com/KianBaghai/fantasy-predictor/internal/valuation"
)

var (
	cfg          *config.Config
	engine       *draft.Engine
	dataStore    store.ProjectionStore
	authProvider auth.AuthProvider
	chClient     clickhouse.ProjectionSource
	ruleset      scoring.Ruleset
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	logger.Info("Starting fantasy predictor")

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "league.toml"
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err, "path", configPath)
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Info("League configured",
		"ruleset", cfg.League.Ruleset,
		"teams", cfg.League.Teams,
		"rounds", cfg.League.Rounds)

	ruleset = scoring.ParseRuleset(cfg.League.Ruleset)

	// Projection store (memory, sqlite or postgres via DB_DRIVER)
	dataStore, err = store.New()
	if err != nil {
		logger.Error("Failed to initialize projection store", "error", err)
		log.Fatalf("Failed to initialize projection store: %v", err)
	}
	defer dataStore.Close()

	// Initialize pub/sub (NATS JetStream or embedded NATS for local development)
	natsSubject := os.Getenv("NATS_SUBJECT")
	if natsSubject == "" {
		natsSubject = "predictor.draft.events"
	}

	environment := os.Getenv("ENVIRONMENT")
	var upstream pubsub.Upstream

	if environment == "" || environment == "development" {
		logger.Info("Starting embedded NATS server for local development")
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:       0, // Random available port
			Subject:    natsSubject,
			StreamName: "DRAFT_EVENTS",
			StoreDir:   "", // In-memory storage
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		defer embeddedNats.Close()
		upstream = embeddedNats
		logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
	} else {
		natsURL := os.Getenv("NATS_URL")
		if natsURL == "" {
			natsURL = "nats://localhost:4222"
		}
		realNats, err := pubsub.NewNATSPubSub(natsURL, natsSubject, "DRAFT_EVENTS")
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		defer realNats.Close()
		upstream = realNats
		logger.Info("Connected to NATS", "url", natsURL)
	}

	// Local fan-out bridged to NATS: publishes go upstream, upstream
	// events reach SSE subscribers
	ps := pubsub.NewWithUpstream(upstream)

	// Analytics warehouse (mocked in development)
	if environment == "" || environment == "development" {
		chClient = nil
		logger.Info("Skipping projection sync (ClickHouse not configured)")
	} else {
		chAddr := os.Getenv("CLICKHOUSE_ADDR")
		if chAddr == "" {
			chAddr = "localhost:9000"
		}
		chDB := os.Getenv("CLICKHOUSE_DB")
		if chDB == "" {
			chDB = "default"
		}
		chUser := os.Getenv("CLICKHOUSE_USER")
		if chUser == "" {
			chUser = "default"
		}
		chPass := os.Getenv("CLICKHOUSE_PASSWORD")

		chClient, err = clickhouse.NewClient(chAddr, chDB, chUser, chPass)
		if err != nil {
			logger.Error("Failed to initialize ClickHouse", "error", err, "address", chAddr)
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		defer chClient.Close()
		logger.Info("Connected to ClickHouse", "address", chAddr, "database", chDB)
	}

	if chClient != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()

			syncProjections()
			for range ticker.C {
				syncProjections()
			}
		}()
	}

	// Authentication (mock in development, OIDC in production)
	if environment == "" || environment == "development" {
		logger.Info("Using mock authentication for local development")
		authProvider = auth.NewMockAuth()
	} else {
		oidcAuthURL := os.Getenv("OIDC_AUTH_URL")
		oidcTokenURL := os.Getenv("OIDC_TOKEN_URL")
		oidcUserInfoURL := os.Getenv("OIDC_USERINFO_URL")
		oidcClientID := os.Getenv("OIDC_CLIENT_ID")
		oidcClientSecret := os.Getenv("OIDC_CLIENT_SECRET")
		oidcRedirectURL := os.Getenv("OIDC_REDIRECT_URL")

		if oidcAuthURL == "" || oidcTokenURL == "" || oidcClientID == "" || oidcClientSecret == "" {
			logger.Error("OIDC_AUTH_URL, OIDC_TOKEN_URL, OIDC_CLIENT_ID and OIDC_CLIENT_SECRET are required for production")
			log.Fatal("OIDC_AUTH_URL, OIDC_TOKEN_URL, OIDC_CLIENT_ID and OIDC_CLIENT_SECRET are required for production")
		}
		if oidcRedirectURL == "" {
			oidcRedirectURL = "http://localhost:8080/auth/callback"
		}

		authProvider = auth.NewOIDCAuth(&auth.OIDCConfig{
			AuthURL:      oidcAuthURL,
			TokenURL:     oidcTokenURL,
			UserInfoURL:  oidcUserInfoURL,
			LogoutURL:    os.Getenv("OIDC_LOGOUT_URL"),
			ClientID:     oidcClientID,
			ClientSecret: oidcClientSecret,
			RedirectURL:  oidcRedirectURL,
		})
		logger.Info("Using OIDC authentication", "auth_url", oidcAuthURL)
	}

	// Import projection CSVs and keep re-importing when the files change
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	if err := importProjections(dataDir); err != nil {
		logger.Warn("Initial projection import failed", "error", err, "dir", dataDir)
	}

	// Draft engine
	rules := make(map[models.Position]draft.PositionRule, len(cfg.Positions))
	for name, pc := range cfg.Positions {
		rules[models.Position(name)] = draft.PositionRule{Min: pc.Min, Max: pc.Max, Weight: pc.Weight}
	}

	engine = draft.New(draft.Settings{
		Teams:     cfg.League.Teams,
		Rounds:    cfg.League.Rounds,
		RosterCap: cfg.League.RosterCap,
		UserTeam:  cfg.League.UserSlot - 1,
		AutoPick:  cfg.League.AutoPick,
		PickDelay: cfg.PickDelay(),
		Rules:     rules,
	}, draft.NewStrategy(rules, nil), ps)

	// Re-import when the projection files change, unless a draft is live
	watcher, err := importer.Watch(dataDir, 0, func() {
		if engine.Phase() == draft.PhaseDrafting {
			logger.Info("Projection files changed mid-draft; deferring re-import")
			return
		}
		if err := importProjections(dataDir); err != nil {
			logger.Error("Projection re-import failed", "error", err)
			return
		}
		ps.Publish(pubsub.Event{Type: "projections:updated"})
	})
	if err != nil {
		logger.Warn("Projection watcher unavailable", "error", err, "dir", dataDir)
	} else {
		defer watcher.Close()
	}

	// Load templates
	templates, err := template.ParseGlob("templates/*.html")
	if err != nil {
		logger.Error("Failed to parse templates", "error", err)
		log.Fatalf("Failed to parse templates: %v", err)
	}
	logger.Info("Templates loaded", "count", len(templates.Templates()))

	// Set up HTTP routes
	mux := http.NewServeMux()

	fs := http.FileServer(http.Dir("static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	// Page routes (protected)
	mux.HandleFunc("/", homeHandler)
	mux.HandleFunc("/start", authProvider.Middleware(startHandler))
	mux.HandleFunc("/draft", authProvider.Middleware(draftHandler))
	mux.HandleFunc("/results", authProvider.Middleware(resultsHandler))

	// API routes
	api := handlers.NewAPIHandlers(engine, dataStore, valuationParams(), cfg, ps)

	mux.HandleFunc("/api/draft/state", api.GetDraftState)
	mux.HandleFunc("/api/draft/start", api.StartDraft)
	mux.HandleFunc("/api/draft/pick", api.DraftPick)
	mux.HandleFunc("/api/draft/reset", api.ResetDraft)
	mux.HandleFunc("/api/draft/autopick", api.SetAutoPick)
	mux.HandleFunc("/api/draft/speed", api.SetSpeed)

	mux.HandleFunc("/api/players", api.ListPlayers)
	mux.HandleFunc("/api/rankings", api.GetRankings)
	mux.HandleFunc("/api/results", api.GetResults)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", api.Health)
	mux.HandleFunc("/healthz", livenessHandler) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler) // Kubernetes readiness probe

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := "0.0.0.0:" + port
	logger.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

// valuationParams maps the configured position settings into valuation
// parameters.
func valuationParams() valuation.Params {
	p := valuation.DefaultParams()
	for name, pc := range cfg.Positions {
		pos := models.Position(name)
		p.ReplacementRank[pos] = pc.ReplacementRank
		p.Weight[pos] = pc.Weight
	}
	return p
}

// importProjections reads the per-position CSVs, scores them under the
// configured ruleset and replaces the stored projection set.
func importProjections(dir string) error {
	byPosition, err := importer.LoadDir(dir)
	if err != nil {
		return err
	}

	// Dedupe within each position only; two athletes can share a name
	// across positions and both must survive.
	var players []models.Player
	for pos, rows := range byPosition {
		players = append(players, valuation.Dedupe(valuation.ScoreRows(rows, pos, ruleset))...)
	}

	if err := dataStore.SavePlayers(players); err != nil {
		return err
	}

	logger.Info("Projections imported", "players", len(players), "dir", dir)
	return nil
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/start", http.StatusSeeOther)
}

func renderPage(w http.ResponseWriter, page string, data map[string]interface{}) {
	tmpl, err := template.ParseFiles("templates/base.html", "templates/"+page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func startHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)

	renderPage(w, "start.html", map[string]interface{}{
		"User":           user,
		"IsCommissioner": auth.IsCommissioner(user),
		"League":         cfg.League,
		"Snapshot":       engine.Snapshot(),
	})
}

func draftHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	snap := engine.Snapshot()

	renderPage(w, "draft.html", map[string]interface{}{
		"User":       user,
		"Snapshot":   snap,
		"IsUserTurn": snap.OnClock != nil && snap.OnClock.IsUser,
	})
}

func resultsHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)

	renderPage(w, "results.html", map[string]interface{}{
		"User":      user,
		"Snapshot":  engine.Snapshot(),
		"Standings": engine.Standings(),
	})
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler handles Kubernetes readiness probes
// Returns 200 if the application is ready to serve traffic
func readinessHandler(w http.ResponseWriter, r *http.Request) {
	if err := dataStore.Ping(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "not_ready",
			"reason":    "store_unavailable",
			"timestamp": time.Now().Unix(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}

// syncProjections pulls the latest projected points from ClickHouse into
// the projection store.
func syncProjections() {
	logger.Info("Syncing projections from ClickHouse")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := chClient.SyncProjections(ctx, func(playerID string, points float64) error {
		return dataStore.SetPlayerPoints(playerID, points)
	})
	if err != nil {
		logger.Error("Failed to sync projections", "error", err)
	} else {
		logger.Info("Projections synced")
	}
}
