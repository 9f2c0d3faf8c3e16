package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedSource é um look-aside cache em Redis na frente de um Source.
// Só placares finais (Completed) entram no cache: gatilhos sobrepostos
// (worker, API, scripts) param de re-consultar o provedor pelo mesmo jogo.
// Falha no Redis nunca bloqueia o ciclo: loga e passa direto ao provedor.
type CachedSource struct {
	Rdb  *redis.Client
	Next Source
	TTL  time.Duration
	Log  *zap.Logger
}

func NewCachedSource(rdb *redis.Client, next Source, ttl time.Duration, log *zap.Logger) *CachedSource {
	return &CachedSource{Rdb: rdb, Next: next, TTL: ttl, Log: log}
}

// Chave "score:{sportKey}:{gameID}" => JSON de Score
func cacheKey(sportKey, gameID string) string {
	return fmt.Sprintf("score:%s:%s", sportKey, gameID)
}

func (c *CachedSource) FinalScore(ctx context.Context, sportKey, gameID string) (Score, error) {
	key := cacheKey(sportKey, gameID)

	if raw, err := c.Rdb.Get(ctx, key).Result(); err == nil {
		var s Score
		if jerr := json.Unmarshal([]byte(raw), &s); jerr == nil {
			return s, nil
		}
		c.Log.Warn("score cache corrupt, refetching", zap.String("key", key))
	} else if err != redis.Nil {
		c.Log.Warn("score cache read failed", zap.Error(err))
	}

	s, err := c.Next.FinalScore(ctx, sportKey, gameID)
	if err != nil {
		return Score{}, err
	}

	if s.Completed {
		b, _ := json.Marshal(s)
		if err := c.Rdb.Set(ctx, key, b, c.TTL).Err(); err != nil {
			c.Log.Warn("score cache write failed", zap.Error(err))
		}
	}

	return s, nil
}
