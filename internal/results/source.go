package results

import "context"

// Score é o placar autoritativo de um jogo.
// Completed == false cobre "jogo não encontrado" e "ainda não terminou" —
// estados normais, nunca erro; erros são reservados a falhas de
// transporte/autenticação contra o provedor.
type Score struct {
	Completed bool
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

// Source é a fronteira com o provedor externo de resultados
type Source interface {
	FinalScore(ctx context.Context, sportKey, gameID string) (Score, error)
}
