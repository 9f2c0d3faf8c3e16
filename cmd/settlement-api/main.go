package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/results"
	"github.com/radieske/wager-settlement-poc/internal/results/oddsapi"
	shttp "github.com/radieske/wager-settlement-poc/internal/settlement-api/http"
	"github.com/radieske/wager-settlement-poc/internal/settlement/engine"
	"github.com/radieske/wager-settlement-poc/internal/settlement/notify"
	"github.com/radieske/wager-settlement-poc/internal/settlement/repo"
	sharedcache "github.com/radieske/wager-settlement-poc/internal/shared/cache"
	"github.com/radieske/wager-settlement-poc/internal/shared/config"
	"github.com/radieske/wager-settlement-poc/internal/shared/db"
	sharedkafka "github.com/radieske/wager-settlement-poc/internal/shared/kafka"
	"github.com/radieske/wager-settlement-poc/internal/shared/logger"
	"github.com/radieske/wager-settlement-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic wager_settled)
	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerSettled)
	defer writer.Close()

	// Métricas dos ciclos disparados via API
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settle_api_wagers_settled_total", Help: "apostas liquidadas via API"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "settle_api_wagers_skipped_total", Help: "apostas puladas via API"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settle_api_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(settled, skipped, errorsBy)

	// deps
	ledger := repo.NewPostgres(pg)
	client := oddsapi.New(cfg.ResultsBaseURL, cfg.ResultsAPIKey)
	source := results.NewCachedSource(rdb, client, cfg.ScoreCacheTTL, log)

	eng := &engine.Engine{
		Log:       log,
		Ledger:    ledger,
		Source:    source,
		Publ:      notify.NewKafkaPublisher(writer),
		OnSettled: func() { settled.Inc() },
		OnSkipped: func() { skipped.Inc() },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// HTTP público
	api := shttp.NewServer(log, eng, ledger)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("settlement-api listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
