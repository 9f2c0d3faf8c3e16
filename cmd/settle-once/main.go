package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/results/oddsapi"
	"github.com/radieske/wager-settlement-poc/internal/settlement/engine"
	"github.com/radieske/wager-settlement-poc/internal/settlement/repo"
	"github.com/radieske/wager-settlement-poc/internal/shared/config"
	"github.com/radieske/wager-settlement-poc/internal/shared/db"
	"github.com/radieske/wager-settlement-poc/internal/shared/logger"
)

// Script de manutenção: executa um único ciclo de liquidação e sai.
// Seguro de rodar a qualquer momento, inclusive com o worker e a API no ar —
// a transação do ledger impede liquidação dupla.
func main() {
	cfg := config.Load()
	log, _ := logger.New("settle-once", cfg.Env)
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Sem cache nem Kafka aqui: consulta direta ao provedor, só persistência
	eng := &engine.Engine{
		Log:    log,
		Ledger: repo.NewPostgres(pg),
		Source: oddsapi.New(cfg.ResultsBaseURL, cfg.ResultsAPIKey),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sum, err := eng.RunCycle(ctx)
	if err != nil {
		log.Fatal("cycle", zap.Error(err))
	}

	log.Info("done",
		zap.Int("eligible", sum.Eligible),
		zap.Int("settled", sum.Settled),
		zap.Int("pushed", sum.Pushed),
		zap.Int("skipped", sum.Skipped),
		zap.Int("errored", sum.Errored),
	)
}
