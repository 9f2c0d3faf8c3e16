package grader_test

import (
	"errors"
	"testing"

	"github.com/radieske/wager-settlement-poc/internal/settlement/grader"
)

var score73 = grader.FinalScore{
	HomeTeam:  "Flamengo",
	AwayTeam:  "Palmeiras",
	HomeScore: 7,
	AwayScore: 3,
}

func moneylineTerms(senderOdds, receiverOdds int, stake int64) grader.Terms {
	return grader.Terms{
		Type:       grader.Moneyline,
		Sender:     grader.SideTerms{Team: "Flamengo", Odds: senderOdds},
		Receiver:   grader.SideTerms{Team: "Palmeiras", Odds: receiverOdds},
		StakeCents: stake,
	}
}

func TestGradeMoneylineHomeWins(t *testing.T) {
	// sender pegou o mandante a -150 com stake de $100 → lucro $66.67
	out, err := grader.Grade(moneylineTerms(-150, 130, 10000), score73)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Result != grader.ResultWin {
		t.Fatalf("result = %s, want WIN", out.Result)
	}
	if out.Winner != grader.SideSender {
		t.Errorf("winner = %s, want sender", out.Winner)
	}
	if out.ProfitCents != 6667 {
		t.Errorf("profit = %d, want 6667", out.ProfitCents)
	}
}

func TestGradeMoneylineAwayWins(t *testing.T) {
	score := grader.FinalScore{HomeTeam: "Flamengo", AwayTeam: "Palmeiras", HomeScore: 1, AwayScore: 2}

	out, err := grader.Grade(moneylineTerms(-150, 130, 10000), score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Winner != grader.SideReceiver {
		t.Fatalf("winner = %s, want receiver", out.Winner)
	}
	// odds assimétricas: o lucro usa as odds do próprio vencedor (+130), não as do oponente
	if out.ProfitCents != 13000 {
		t.Errorf("profit = %d, want 13000 (receiver's own +130 odds)", out.ProfitCents)
	}
}

func TestGradeMoneylineTieIsPush(t *testing.T) {
	score := grader.FinalScore{HomeTeam: "Flamengo", AwayTeam: "Palmeiras", HomeScore: 4, AwayScore: 4}

	out, err := grader.Grade(moneylineTerms(-110, -110, 5000), score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Result != grader.ResultPush {
		t.Fatalf("result = %s, want PUSH", out.Result)
	}
	if out.ProfitCents != 0 {
		t.Errorf("push profit = %d, want 0", out.ProfitCents)
	}
}

func TestGradeSpread(t *testing.T) {
	// sender: mandante -3.5; mandante vence por 10-8 → ajustado 6.5 vs 11.5 → receiver cobre
	terms := grader.Terms{
		Type:       grader.Spread,
		Sender:     grader.SideTerms{Team: "Lakers", Odds: -110, Line: -3.5, HasLine: true},
		Receiver:   grader.SideTerms{Team: "Celtics", Odds: -110, Line: 3.5, HasLine: true},
		StakeCents: 11000,
	}
	score := grader.FinalScore{HomeTeam: "Lakers", AwayTeam: "Celtics", HomeScore: 10, AwayScore: 8}

	out, err := grader.Grade(terms, score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Result != grader.ResultWin || out.Winner != grader.SideReceiver {
		t.Fatalf("got %s/%s, want WIN/receiver", out.Result, out.Winner)
	}
	if out.ProfitCents != 10000 {
		t.Errorf("profit = %d, want 10000", out.ProfitCents)
	}
}

func TestGradeSpreadCoverWins(t *testing.T) {
	// mandante -3.5 vencendo por 10-6 cobre a linha
	terms := grader.Terms{
		Type:       grader.Spread,
		Sender:     grader.SideTerms{Team: "Lakers", Odds: -110, Line: -3.5, HasLine: true},
		Receiver:   grader.SideTerms{Team: "Celtics", Odds: -110, Line: 3.5, HasLine: true},
		StakeCents: 11000,
	}
	score := grader.FinalScore{HomeTeam: "Lakers", AwayTeam: "Celtics", HomeScore: 10, AwayScore: 6}

	out, err := grader.Grade(terms, score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Winner != grader.SideSender {
		t.Errorf("winner = %s, want sender", out.Winner)
	}
}

func TestGradeSpreadDeadHeatIsPush(t *testing.T) {
	// linha inteira -3/+3 e vitória por exatamente 3 → ajustados iguais → push
	terms := grader.Terms{
		Type:       grader.Spread,
		Sender:     grader.SideTerms{Team: "Chiefs", Odds: -110, Line: -3, HasLine: true},
		Receiver:   grader.SideTerms{Team: "Eagles", Odds: -110, Line: 3, HasLine: true},
		StakeCents: 5000,
	}
	score := grader.FinalScore{HomeTeam: "Chiefs", AwayTeam: "Eagles", HomeScore: 24, AwayScore: 21}

	out, err := grader.Grade(terms, score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Result != grader.ResultPush {
		t.Fatalf("result = %s, want PUSH", out.Result)
	}
}

func TestGradeSpreadMissingLine(t *testing.T) {
	terms := grader.Terms{
		Type:       grader.Spread,
		Sender:     grader.SideTerms{Team: "Chiefs", Odds: -110},
		Receiver:   grader.SideTerms{Team: "Eagles", Odds: -110},
		StakeCents: 5000,
	}
	_, err := grader.Grade(terms, grader.FinalScore{HomeTeam: "Chiefs", AwayTeam: "Eagles", HomeScore: 20, AwayScore: 10})
	if !errors.Is(err, grader.ErrMalformedTerms) {
		t.Fatalf("err = %v, want ErrMalformedTerms", err)
	}
}

func TestGradeSpreadReceiverLineFallback(t *testing.T) {
	// sender sem linha: espelha a do receiver (+3.5 → sender -3.5)
	terms := grader.Terms{
		Type:       grader.Spread,
		Sender:     grader.SideTerms{Team: "Chiefs", Odds: -110},
		Receiver:   grader.SideTerms{Team: "Eagles", Odds: -110, Line: 3.5, HasLine: true},
		StakeCents: 5000,
	}
	score := grader.FinalScore{HomeTeam: "Chiefs", AwayTeam: "Eagles", HomeScore: 24, AwayScore: 17}

	out, err := grader.Grade(terms, score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Winner != grader.SideSender {
		t.Fatalf("winner = %s, want sender (24-3.5 > 17)", out.Winner)
	}
}

func overUnderTerms(senderLine float64) grader.Terms {
	return grader.Terms{
		Type:       grader.OverUnder,
		Sender:     grader.SideTerms{Team: "Over", Odds: 120, Line: senderLine, HasLine: true},
		Receiver:   grader.SideTerms{Team: "Under", Odds: -140, Line: senderLine, HasLine: true},
		StakeCents: 5000,
	}
}

func TestGradeOverUnderOverWins(t *testing.T) {
	// linha 8.5, total 9, sender pegou Over a +120 com $50 → lucro $60
	score := grader.FinalScore{HomeTeam: "Yankees", AwayTeam: "Red Sox", HomeScore: 5, AwayScore: 4}

	out, err := grader.Grade(overUnderTerms(8.5), score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Result != grader.ResultWin || out.Winner != grader.SideSender {
		t.Fatalf("got %s/%s, want WIN/sender", out.Result, out.Winner)
	}
	if out.ProfitCents != 6000 {
		t.Errorf("profit = %d, want 6000", out.ProfitCents)
	}
}

func TestGradeOverUnderUnderWins(t *testing.T) {
	score := grader.FinalScore{HomeTeam: "Yankees", AwayTeam: "Red Sox", HomeScore: 3, AwayScore: 2}

	out, err := grader.Grade(overUnderTerms(8.5), score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Winner != grader.SideReceiver {
		t.Fatalf("winner = %s, want receiver (Under)", out.Winner)
	}
}

func TestGradeOverUnderExactLineIsPush(t *testing.T) {
	// total bate exatamente na linha inteira
	score := grader.FinalScore{HomeTeam: "Yankees", AwayTeam: "Red Sox", HomeScore: 5, AwayScore: 4}

	out, err := grader.Grade(overUnderTerms(9), score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Result != grader.ResultPush {
		t.Fatalf("result = %s, want PUSH", out.Result)
	}
}

func TestGradeOverUnderSenderLineAuthoritative(t *testing.T) {
	// lados com linhas divergentes: a do sender prevalece
	terms := overUnderTerms(8.5)
	terms.Receiver.Line = 10.5

	// total 9: acima da linha do sender (8.5), abaixo da do receiver (10.5)
	score := grader.FinalScore{HomeTeam: "Yankees", AwayTeam: "Red Sox", HomeScore: 5, AwayScore: 4}

	out, err := grader.Grade(terms, score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Winner != grader.SideSender {
		t.Fatalf("winner = %s, want sender (Over beats sender's 8.5 line)", out.Winner)
	}
}

func TestGradeUnsupportedBetType(t *testing.T) {
	terms := grader.Terms{
		Type:       "parlay",
		Sender:     grader.SideTerms{Team: "Flamengo", Odds: -110},
		Receiver:   grader.SideTerms{Team: "Palmeiras", Odds: -110},
		StakeCents: 1000,
	}
	_, err := grader.Grade(terms, score73)
	if !errors.Is(err, grader.ErrUnsupportedBetType) {
		t.Fatalf("err = %v, want ErrUnsupportedBetType", err)
	}
}

func TestGradeMoneylineNoSidePickedWinner(t *testing.T) {
	terms := grader.Terms{
		Type:       grader.Moneyline,
		Sender:     grader.SideTerms{Team: "Santos", Odds: -110},
		Receiver:   grader.SideTerms{Team: "Palmeiras", Odds: -110},
		StakeCents: 1000,
	}
	_, err := grader.Grade(terms, score73) // Flamengo venceu, ninguém escolheu
	if !errors.Is(err, grader.ErrMalformedTerms) {
		t.Fatalf("err = %v, want ErrMalformedTerms", err)
	}
}

func TestGradeZeroOddsSurfacesError(t *testing.T) {
	out, err := grader.Grade(moneylineTerms(0, 130, 10000), score73)
	if err == nil {
		t.Fatalf("expected error, got outcome %+v", out)
	}
}
