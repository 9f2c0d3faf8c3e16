package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/settlement-api/dto"
	"github.com/radieske/wager-settlement-poc/internal/settlement/engine"
	"github.com/radieske/wager-settlement-poc/internal/settlement/repo"
)

// Server expõe o gatilho HTTP on-demand do ciclo de liquidação.
// Não há exclusividade entre chamadores: a guarda contra dupla liquidação
// está na transação do ledger, não aqui.
type Server struct {
	log    *zap.Logger
	engine *engine.Engine
	repo   *repo.Postgres
}

func NewServer(log *zap.Logger, e *engine.Engine, r *repo.Postgres) *Server {
	return &Server{log: log, engine: e, repo: r}
}

// Router retorna o mux HTTP com as rotas da API de liquidação
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/settlement/run", s.runCycle) // POST
	mux.HandleFunc("/wagers/", s.getWager)        // GET /wagers/{id}
	return mux
}

// runCycle dispara um ciclo completo e devolve o resumo
func (s *Server) runCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sum, err := s.engine.RunCycle(r.Context())
	if err != nil {
		s.log.Error("cycle failed to start", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.RunCycleResponse{
		Eligible: sum.Eligible,
		Settled:  sum.Settled,
		Pushed:   sum.Pushed,
		Skipped:  sum.Skipped,
		Errored:  sum.Errored,
	})
}

// getWager retorna a visão resumida de uma aposta
func (s *Server) getWager(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /wagers/{id}
	id := r.URL.Path[len("/wagers/"):]
	if id == "" {
		http.Error(w, "wagerId required", http.StatusBadRequest)
		return
	}

	st, err := s.repo.GetStatus(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, dto.WagerStatusResponse{
		WagerID:  st.WagerID,
		Status:   st.Status,
		Resolved: st.Resolved,
		WinnerID: st.WinnerID,
		LoserID:  st.LoserID,
		Result:   st.Result,
	})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
