package grader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/radieske/wager-settlement-poc/internal/settlement/oddsmath"
)

var (
	// ErrUnsupportedBetType indica um bet_type desconhecido; a graduação nunca assume um default
	ErrUnsupportedBetType = errors.New("unsupported bet type")
	// ErrMalformedTerms indica termos inconsistentes (linha/odds ausentes, time que não pertence ao jogo)
	ErrMalformedTerms = errors.New("malformed wager terms")
)

// BetType é o mercado da aposta
type BetType string

const (
	Moneyline BetType = "moneyline"
	Spread    BetType = "spread"
	OverUnder BetType = "overUnder"
)

// Side identifica um dos dois lados da aposta
type Side string

const (
	SideSender   Side = "sender"
	SideReceiver Side = "receiver"
)

// SideTerms são os termos tipados de um lado da aposta.
// Team é o nome do time escolhido, ou "Over"/"Under" em apostas de total.
// Cada lado carrega suas próprias odds (e linha, quando aplicável) — odds
// assimétricas entre os lados são intencionais e respeitadas na graduação.
type SideTerms struct {
	Team    string
	Odds    int
	Line    float64
	HasLine bool
}

// Terms são os termos completos da aposta, já desserializados no edge do repositório.
// O grader nunca vê os campos codificados em string do banco.
type Terms struct {
	Type       BetType
	Sender     SideTerms
	Receiver   SideTerms
	StakeCents int64
}

// FinalScore é o placar final do jogo, vindo do snapshot + provedor de resultados
type FinalScore struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

// Result é o desfecho da graduação
type Result string

const (
	ResultWin  Result = "WIN"
	ResultPush Result = "PUSH"
)

// Outcome é o resultado determinístico da graduação de uma aposta.
// Winner e ProfitCents só são válidos quando Result == WIN.
type Outcome struct {
	Result      Result
	Winner      Side
	ProfitCents int64
	Description string
}

// Grade decide o vencedor (ou push) de uma aposta dado o placar final.
// Função pura: sem I/O, determinística. Qualquer igualdade numérica exata
// após ajuste é sempre PUSH, nunca erro nem desempate arbitrário.
func Grade(t Terms, score FinalScore) (Outcome, error) {
	switch t.Type {
	case Moneyline:
		return gradeMoneyline(t, score)
	case Spread:
		return gradeSpread(t, score)
	case OverUnder:
		return gradeOverUnder(t, score)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnsupportedBetType, t.Type)
	}
}

// gradeMoneyline: vence o lado que escolheu o time com mais pontos; empate é push
func gradeMoneyline(t Terms, score FinalScore) (Outcome, error) {
	if score.HomeScore == score.AwayScore {
		return Outcome{
			Result:      ResultPush,
			Description: fmt.Sprintf("moneyline: %s %d-%d %s, tie game, push", score.HomeTeam, score.HomeScore, score.AwayScore, score.AwayTeam),
		}, nil
	}

	winnerTeam := score.HomeTeam
	if score.AwayScore > score.HomeScore {
		winnerTeam = score.AwayTeam
	}

	var winner Side
	switch {
	case strings.EqualFold(t.Sender.Team, winnerTeam):
		winner = SideSender
	case strings.EqualFold(t.Receiver.Team, winnerTeam):
		winner = SideReceiver
	default:
		return Outcome{}, fmt.Errorf("%w: no side picked winning team %q", ErrMalformedTerms, winnerTeam)
	}

	desc := fmt.Sprintf("moneyline: %s beat %s %d-%d", winnerTeam, otherTeam(score, winnerTeam), winScore(score, winnerTeam), loseScore(score, winnerTeam))
	return winOutcome(t, winner, desc)
}

// gradeSpread: o placar do time do sender, ajustado pela linha, é comparado
// ao placar real do time do receiver; igualdade exata é push.
// Com linhas complementares (-3.5/+3.5) isso equivale a avaliar os dois lados;
// quando as linhas divergem, a do sender é a autoritativa (mesma premissa
// documentada do over/under).
func gradeSpread(t Terms, score FinalScore) (Outcome, error) {
	line, ok := spreadLine(t)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: spread wager missing line", ErrMalformedTerms)
	}

	senderScore, err := teamScore(score, t.Sender.Team)
	if err != nil {
		return Outcome{}, err
	}
	receiverScore, err := teamScore(score, t.Receiver.Team)
	if err != nil {
		return Outcome{}, err
	}

	senderAdj := float64(senderScore) + line

	if senderAdj == float64(receiverScore) {
		return Outcome{
			Result:      ResultPush,
			Description: fmt.Sprintf("spread: %s %+.1f adjusted to %.1f, dead heat with %s %d, push", t.Sender.Team, line, senderAdj, t.Receiver.Team, receiverScore),
		}, nil
	}

	if senderAdj > float64(receiverScore) {
		desc := fmt.Sprintf("spread: %s %+.1f covers, adjusted %.1f vs %s %d", t.Sender.Team, line, senderAdj, t.Receiver.Team, receiverScore)
		return winOutcome(t, SideSender, desc)
	}

	desc := fmt.Sprintf("spread: %s %+.1f fails to cover, adjusted %.1f vs %s %d", t.Sender.Team, line, senderAdj, t.Receiver.Team, receiverScore)
	return winOutcome(t, SideReceiver, desc)
}

// spreadLine resolve a linha do spread: a do sender é a autoritativa; na
// ausência dela, espelha a do receiver (linhas complementares por construção)
func spreadLine(t Terms) (float64, bool) {
	if t.Sender.HasLine {
		return t.Sender.Line, true
	}
	if t.Receiver.HasLine {
		return -t.Receiver.Line, true
	}
	return 0, false
}

// gradeOverUnder: total do jogo comparado à linha; a linha do sender é a
// autoritativa quando os dois lados divergem (premissa documentada do sistema)
func gradeOverUnder(t Terms, score FinalScore) (Outcome, error) {
	line, ok := sharedLine(t)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: over/under wager missing line", ErrMalformedTerms)
	}

	overSide, underSide, err := totalSides(t)
	if err != nil {
		return Outcome{}, err
	}

	total := float64(score.HomeScore + score.AwayScore)

	if total == line {
		return Outcome{
			Result:      ResultPush,
			Description: fmt.Sprintf("total: landed exactly on the line %.1f, push", line),
		}, nil
	}

	winner := overSide
	label := "over"
	if total < line {
		winner = underSide
		label = "under"
	}

	desc := fmt.Sprintf("total: %d points went %s the line %.1f", score.HomeScore+score.AwayScore, label, line)
	return winOutcome(t, winner, desc)
}

// winOutcome monta o Outcome de vitória calculando o lucro com as odds do próprio vencedor
func winOutcome(t Terms, winner Side, desc string) (Outcome, error) {
	terms := t.Sender
	if winner == SideReceiver {
		terms = t.Receiver
	}

	profit, err := oddsmath.Profit(terms.Odds, t.StakeCents)
	if err != nil {
		return Outcome{}, fmt.Errorf("winner profit: %w", err)
	}

	return Outcome{
		Result:      ResultWin,
		Winner:      winner,
		ProfitCents: profit,
		Description: desc,
	}, nil
}

// sharedLine resolve a linha compartilhada de um total: sender autoritativo,
// receiver como fallback se o sender não tiver linha
func sharedLine(t Terms) (float64, bool) {
	if t.Sender.HasLine {
		return t.Sender.Line, true
	}
	if t.Receiver.HasLine {
		return t.Receiver.Line, true
	}
	return 0, false
}

// totalSides identifica qual lado escolheu Over e qual escolheu Under
func totalSides(t Terms) (over Side, under Side, err error) {
	switch {
	case strings.EqualFold(t.Sender.Team, "Over") && strings.EqualFold(t.Receiver.Team, "Under"):
		return SideSender, SideReceiver, nil
	case strings.EqualFold(t.Sender.Team, "Under") && strings.EqualFold(t.Receiver.Team, "Over"):
		return SideReceiver, SideSender, nil
	default:
		return "", "", fmt.Errorf("%w: over/under sides are %q and %q", ErrMalformedTerms, t.Sender.Team, t.Receiver.Team)
	}
}

// teamScore retorna o placar do time escolhido, validando que ele pertence ao jogo
func teamScore(score FinalScore, team string) (int, error) {
	switch {
	case strings.EqualFold(team, score.HomeTeam):
		return score.HomeScore, nil
	case strings.EqualFold(team, score.AwayTeam):
		return score.AwayScore, nil
	default:
		return 0, fmt.Errorf("%w: team %q not in game %s vs %s", ErrMalformedTerms, team, score.HomeTeam, score.AwayTeam)
	}
}

func otherTeam(score FinalScore, team string) string {
	if strings.EqualFold(team, score.HomeTeam) {
		return score.AwayTeam
	}
	return score.HomeTeam
}

func winScore(score FinalScore, team string) int {
	if strings.EqualFold(team, score.HomeTeam) {
		return score.HomeScore
	}
	return score.AwayScore
}

func loseScore(score FinalScore, team string) int {
	if strings.EqualFold(team, score.HomeTeam) {
		return score.AwayScore
	}
	return score.HomeScore
}
