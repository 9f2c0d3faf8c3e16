package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/results"
	"github.com/radieske/wager-settlement-poc/internal/results/oddsapi"
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
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres (ledger) e Redis (cache de placares)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka producer: evento wager_settled pós-commit
	settledWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerSettled)
	defer settledWriter.Close()

	// Métricas Prometheus por estágio do ciclo
	cycles := prometheus.NewCounter(prometheus.CounterOpts{Name: "settle_cycles_total", Help: "ciclos de liquidação executados"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settle_wagers_settled_total", Help: "apostas liquidadas"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "settle_wagers_skipped_total", Help: "apostas puladas (jogo não finalizado, corrida perdida)"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{Name: "settle_wagers_expired_total", Help: "apostas expiradas pelo sweep"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settle_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(cycles, settled, skipped, expired, errorsBy)

	// Provedor de resultados com cache Redis na frente
	client := oddsapi.New(cfg.ResultsBaseURL, cfg.ResultsAPIKey)
	source := results.NewCachedSource(redisClient, client, cfg.ScoreCacheTTL, log)

	ledger := repo.NewPostgres(pg)

	eng := &engine.Engine{
		Log:       log,
		Ledger:    ledger,
		Source:    source,
		Publ:      notify.NewKafkaPublisher(settledWriter),
		OnSettled: func() { settled.Inc() },
		OnSkipped: func() { skipped.Inc() },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor de métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("settlement-worker started",
		zap.Duration("interval", cfg.SettleInterval),
		zap.String("results", cfg.ResultsBaseURL),
	)

	// Roda um ciclo imediatamente ao subir, depois a cada tick.
	// O worker é só mais um gatilho: pode sobrepor com a API e com scripts,
	// a transação do ledger garante liquidação única.
	runOnce(ctx, log, eng, ledger, cycles, expired)

	ticker := time.NewTicker(cfg.SettleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runOnce(ctx, log, eng, ledger, cycles, expired)
		case <-ctx.Done():
			log.Info("settlement-worker stopping")
			return
		}
	}
}

// runOnce executa o sweep de expiração e um ciclo de liquidação
func runOnce(
	ctx context.Context,
	log *zap.Logger,
	eng *engine.Engine,
	ledger *repo.Postgres,
	cycles prometheus.Counter,
	expiredCounter prometheus.Counter,
) {
	cycles.Inc()

	// Apostas PENDING cujo jogo já começou não podem mais ser aceitas
	n, err := ledger.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Warn("expiry sweep failed", zap.Error(err))
	} else if n > 0 {
		expiredCounter.Add(float64(n))
		log.Info("expired overdue wagers", zap.Int64("count", n))
	}

	if _, err := eng.RunCycle(ctx); err != nil {
		log.Error("settlement cycle failed", zap.Error(err))
	}
}
