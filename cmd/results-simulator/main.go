package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/shared/config"
	"github.com/radieske/wager-settlement-poc/internal/shared/logger"
	"github.com/radieske/wager-settlement-poc/internal/shared/metrics"
)

// Jogo simulado no catálogo do provedor fake
type game struct {
	ID        string
	SportKey  string
	HomeTeam  string
	AwayTeam  string
	Completed bool
	HomeScore int
	AwayScore int
}

var (
	// Catálogo fixo de partidas simuladas; a finalização é controlada via HTTP
	seedGames = []game{
		{ID: "GAME_001", SportKey: "soccer_brazil_campeonato", HomeTeam: "Flamengo", AwayTeam: "Palmeiras"},
		{ID: "GAME_002", SportKey: "soccer_brazil_campeonato", HomeTeam: "Grêmio", AwayTeam: "Internacional"},
		{ID: "GAME_003", SportKey: "basketball_nba", HomeTeam: "Lakers", AwayTeam: "Celtics"},
		{ID: "GAME_004", SportKey: "americanfootball_nfl", HomeTeam: "Chiefs", AwayTeam: "Eagles"},
	}

	scoreRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "results_sim_score_requests_total",
		Help: "Consultas de placar atendidas",
	})
	completions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "results_sim_completions_total",
		Help: "Jogos marcados como finalizados",
	})
)

// catalog guarda o estado mutável dos jogos simulados
type catalog struct {
	mu    sync.RWMutex
	games map[string]*game
	log   *zap.Logger
}

func newCatalog(log *zap.Logger) *catalog {
	c := &catalog{games: make(map[string]*game), log: log}
	for i := range seedGames {
		g := seedGames[i]
		c.games[g.ID] = &g
	}
	return c
}

// scoresHandler responde no formato da The Odds API:
// GET /v4/sports/{sport}/scores/?eventIds=...
func (c *catalog) scoresHandler(w http.ResponseWriter, r *http.Request) {
	scoreRequests.Inc()

	// path: /v4/sports/{sport}/scores/
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 {
		http.Error(w, "bad path", http.StatusBadRequest)
		return
	}
	sportKey := parts[2]
	wanted := map[string]bool{}
	for _, id := range strings.Split(r.URL.Query().Get("eventIds"), ",") {
		if id != "" {
			wanted[id] = true
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []map[string]any{}
	for _, g := range c.games {
		if g.SportKey != sportKey {
			continue
		}
		if len(wanted) > 0 && !wanted[g.ID] {
			continue
		}
		entry := map[string]any{
			"id":        g.ID,
			"sport_key": g.SportKey,
			"home_team": g.HomeTeam,
			"away_team": g.AwayTeam,
			"completed": g.Completed,
			"scores":    nil,
		}
		if g.Completed {
			entry["scores"] = []map[string]string{
				{"name": g.HomeTeam, "score": strconv.Itoa(g.HomeScore)},
				{"name": g.AwayTeam, "score": strconv.Itoa(g.AwayScore)},
			}
		}
		out = append(out, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// completeHandler marca um jogo como finalizado com o placar informado:
// POST /simulator/complete {"gameId":"GAME_001","homeScore":2,"awayScore":1}
func (c *catalog) completeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		GameID    string `json:"gameId"`
		HomeScore int    `json:"homeScore"`
		AwayScore int    `json:"awayScore"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.games[req.GameID]
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	g.Completed = true
	g.HomeScore = req.HomeScore
	g.AwayScore = req.AwayScore
	completions.Inc()
	c.log.Info("game completed",
		zap.String("gameId", g.ID),
		zap.Int("home", g.HomeScore),
		zap.Int("away", g.AwayScore),
	)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"COMPLETED"}`))
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	prometheus.MustRegister(scoreRequests, completions)

	cat := newCatalog(log)

	mux := http.NewServeMux()
	mux.HandleFunc("/v4/sports/", cat.scoresHandler)
	mux.HandleFunc("/simulator/complete", cat.completeHandler)

	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("results-simulator listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("http", zap.Error(err))
	}
}
