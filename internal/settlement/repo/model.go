package repo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/radieske/wager-settlement-poc/internal/settlement/grader"
)

// Status do ciclo de vida da aposta.
// Invariante: Resolved == true ⟺ Status == RESOLVED.
const (
	StatusPending  = "PENDING"
	StatusActive   = "ACTIVE"
	StatusDeclined = "DECLINED"
	StatusExpired  = "EXPIRED"
	StatusResolved = "RESOLVED"
)

// Wager é a aposta head-to-head persistida no Postgres.
// Os campos SenderValue/ReceiverValue ficam codificados como "linha|odds"
// (ou só "odds" em moneyline) no banco; a desserialização para termos
// tipados acontece aqui no edge do repositório, via Terms().
type Wager struct {
	ID         string
	SenderID   string
	ReceiverID string

	BetType       string
	SenderTeam    string
	ReceiverTeam  string
	SenderValue   string
	ReceiverValue string
	AmountCents   int64

	// Snapshot do jogo capturado na criação da aposta; a aposta precisa ser
	// graduável mesmo que o registro do jogo mude depois
	GameID    string
	SportKey  string
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time

	Status   string
	Resolved bool

	WinnerID   *string
	LoserID    *string
	Result     string
	ResolvedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameKey agrupa apostas do mesmo jogo: prefere o gameId do snapshot e cai
// para o composto home@away quando ausente
func (w *Wager) GameKey() string {
	if w.GameID != "" {
		return w.GameID
	}
	return w.HomeTeam + "@" + w.AwayTeam
}

// Terms desserializa os campos codificados da aposta em termos tipados para o grader
func (w *Wager) Terms() (grader.Terms, error) {
	sender, err := parseSideValue(w.SenderTeam, w.SenderValue)
	if err != nil {
		return grader.Terms{}, fmt.Errorf("sender side: %w", err)
	}
	receiver, err := parseSideValue(w.ReceiverTeam, w.ReceiverValue)
	if err != nil {
		return grader.Terms{}, fmt.Errorf("receiver side: %w", err)
	}

	return grader.Terms{
		Type:       grader.BetType(w.BetType),
		Sender:     sender,
		Receiver:   receiver,
		StakeCents: w.AmountCents,
	}, nil
}

// parseSideValue converte o campo codificado de um lado:
//
//	"odds"        → moneyline, ex: "-150"
//	"linha|odds"  → spread/total, ex: "-3.5|-110"
func parseSideValue(team, raw string) (grader.SideTerms, error) {
	terms := grader.SideTerms{Team: team}

	parts := strings.Split(raw, "|")
	switch len(parts) {
	case 1:
		odds, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return grader.SideTerms{}, fmt.Errorf("%w: odds %q", grader.ErrMalformedTerms, raw)
		}
		terms.Odds = odds
	case 2:
		line, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return grader.SideTerms{}, fmt.Errorf("%w: line %q", grader.ErrMalformedTerms, raw)
		}
		odds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return grader.SideTerms{}, fmt.Errorf("%w: odds %q", grader.ErrMalformedTerms, raw)
		}
		terms.Line = line
		terms.HasLine = true
		terms.Odds = odds
	default:
		return grader.SideTerms{}, fmt.Errorf("%w: value %q", grader.ErrMalformedTerms, raw)
	}

	if terms.Odds == 0 {
		return grader.SideTerms{}, fmt.Errorf("%w: zero odds in %q", grader.ErrMalformedTerms, raw)
	}

	return terms, nil
}

// Settlement é a unidade atômica de liquidação aplicada pelo repositório:
// status da aposta + saldos + contadores de vitória/derrota, em uma transação.
type Settlement struct {
	WagerID string
	Push    bool

	// Vazios quando Push
	WinnerID string
	LoserID  string

	// Crédito do vencedor (stake + lucro); ignorado em push, onde cada lado
	// recebe de volta exatamente o stake
	WinnerCreditCents int64

	Result string
}

// WagerStatus é a visão resumida exposta pela API
type WagerStatus struct {
	WagerID  string
	Status   string
	Resolved bool
	WinnerID *string
	LoserID  *string
	Result   string
}
