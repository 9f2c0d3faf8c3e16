package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/results"
	"github.com/radieske/wager-settlement-poc/internal/settlement/grader"
	"github.com/radieske/wager-settlement-poc/internal/settlement/repo"
	"github.com/radieske/wager-settlement-poc/pkg/contracts/events"
)

// Ledger define as operações de persistência que o engine usa.
// A implementação Postgres garante a atomicidade de Settle; os testes
// usam um fake em memória com o mesmo contrato.
type Ledger interface {
	ListSettleable(ctx context.Context) ([]repo.Wager, error)
	Settle(ctx context.Context, s repo.Settlement) error
	InsertNotification(ctx context.Context, userID, wagerID, message string) error
}

// Publisher publica o evento de liquidação pós-commit (opcional)
type Publisher interface {
	PublishWagerSettled(ctx context.Context, e events.WagerSettled) error
}

// Engine orquestra um ciclo de liquidação: seleciona apostas elegíveis,
// agrupa por jogo, resolve placares, gradua e aplica atomicamente.
// Pode ser invocado a qualquer momento, por quantos chamadores forem,
// concorrentemente: a guarda de dupla liquidação está na transação do Ledger,
// não em disciplina de agendamento.
//
// Callbacks On* alimentam métricas sem acoplar o engine ao Prometheus.
type Engine struct {
	Log    *zap.Logger
	Ledger Ledger
	Source results.Source
	Publ   Publisher // opcional

	OnSettled func()
	OnSkipped func()
	OnError   func(stage string) // métricas por estágio: fetch | terms | grade | settle
}

// Summary é o resumo de um ciclo; o ciclo nunca falha por erro parcial
type Summary struct {
	Eligible int `json:"eligible"`
	Settled  int `json:"settled"`
	Pushed   int `json:"pushed"`
	Skipped  int `json:"skipped"`
	Errored  int `json:"errored"`
}

// RunCycle executa um ciclo completo de liquidação.
// Retorna erro apenas se a seleção inicial de apostas falhar; falhas de
// grupo (provedor) e de aposta individual (termos, graduação, corrida de
// liquidação) são contadas no Summary e não abortam as demais.
func (e *Engine) RunCycle(ctx context.Context) (Summary, error) {
	var sum Summary

	wagers, err := e.Ledger.ListSettleable(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list settleable wagers: %w", err)
	}
	sum.Eligible = len(wagers)
	if len(wagers) == 0 {
		return sum, nil
	}

	// Agrupa por jogo para limitar as chamadas ao provedor ao número de
	// jogos distintos, não ao número de apostas
	groups := make(map[string][]repo.Wager)
	for _, w := range wagers {
		groups[w.GameKey()] = append(groups[w.GameKey()], w)
	}

	e.Log.Info("settlement cycle started",
		zap.Int("wagers", len(wagers)),
		zap.Int("games", len(groups)),
	)

	for key, group := range groups {
		score, err := e.Source.FinalScore(ctx, group[0].SportKey, group[0].GameID)
		if err != nil {
			// Falha de um jogo não bloqueia os demais grupos do ciclo
			e.Log.Warn("score fetch failed, skipping game this cycle",
				zap.String("game", key), zap.Error(err))
			e.fail("fetch")
			sum.Skipped += len(group)
			e.skip(len(group))
			continue
		}
		if !score.Completed {
			sum.Skipped += len(group)
			e.skip(len(group))
			continue
		}

		for i := range group {
			e.settleOne(ctx, &group[i], score, &sum)
		}
	}

	e.Log.Info("settlement cycle finished",
		zap.Int("eligible", sum.Eligible),
		zap.Int("settled", sum.Settled),
		zap.Int("pushed", sum.Pushed),
		zap.Int("skipped", sum.Skipped),
		zap.Int("errored", sum.Errored),
	)

	return sum, nil
}

// settleOne gradua e liquida uma única aposta; qualquer falha fica contida aqui
func (e *Engine) settleOne(ctx context.Context, w *repo.Wager, score results.Score, sum *Summary) {
	terms, err := w.Terms()
	if err != nil {
		e.Log.Error("wager has malformed terms, skipping",
			zap.String("wagerId", w.ID), zap.Error(err))
		e.fail("terms")
		sum.Errored++
		return
	}

	outcome, err := grader.Grade(terms, grader.FinalScore{
		HomeTeam:  score.HomeTeam,
		AwayTeam:  score.AwayTeam,
		HomeScore: score.HomeScore,
		AwayScore: score.AwayScore,
	})
	if err != nil {
		e.Log.Error("grading failed, skipping wager",
			zap.String("wagerId", w.ID), zap.Error(err))
		e.fail("grade")
		sum.Errored++
		return
	}

	s := repo.Settlement{
		WagerID: w.ID,
		Result:  outcome.Description,
	}
	if outcome.Result == grader.ResultPush {
		s.Push = true
		s.WinnerCreditCents = w.AmountCents
	} else {
		s.WinnerID, s.LoserID = w.SenderID, w.ReceiverID
		if outcome.Winner == grader.SideReceiver {
			s.WinnerID, s.LoserID = w.ReceiverID, w.SenderID
		}
		s.WinnerCreditCents = w.AmountCents + outcome.ProfitCents
	}

	if err := e.Ledger.Settle(ctx, s); err != nil {
		if errors.Is(err, repo.ErrAlreadyResolved) {
			// Outro gatilho liquidou primeiro: no-op limpo
			e.Log.Debug("wager already resolved by concurrent cycle",
				zap.String("wagerId", w.ID))
			sum.Skipped++
			e.skip(1)
			return
		}
		e.Log.Error("settlement transaction failed",
			zap.String("wagerId", w.ID), zap.Error(err))
		e.fail("settle")
		sum.Errored++
		return
	}

	sum.Settled++
	if s.Push {
		sum.Pushed++
	}
	if e.OnSettled != nil {
		e.OnSettled()
	}

	e.Log.Info("wager settled",
		zap.String("wagerId", w.ID),
		zap.Bool("push", s.Push),
		zap.String("result", outcome.Description),
	)

	// Pós-commit, tudo best-effort: notificações e evento Kafka.
	// Falha aqui é logada e jamais desfaz a liquidação.
	e.notifyParties(ctx, w, s)
	if e.Publ != nil {
		ev := events.WagerSettled{
			WagerID:           w.ID,
			GameID:            w.GameID,
			SenderID:          w.SenderID,
			ReceiverID:        w.ReceiverID,
			WinnerID:          s.WinnerID,
			LoserID:           s.LoserID,
			Push:              s.Push,
			AmountCents:       w.AmountCents,
			WinnerCreditCents: s.WinnerCreditCents,
			Result:            s.Result,
		}
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := e.Publ.PublishWagerSettled(pctx, ev); err != nil {
			e.Log.Warn("wager_settled publish failed", zap.String("wagerId", w.ID), zap.Error(err))
		}
	}
}

// notifyParties cria as notificações de desfecho para os dois lados
func (e *Engine) notifyParties(ctx context.Context, w *repo.Wager, s repo.Settlement) {
	var msgs map[string]string
	if s.Push {
		msg := fmt.Sprintf("Your wager pushed (%s). Your %s stake was returned.", s.Result, dollars(w.AmountCents))
		msgs = map[string]string{w.SenderID: msg, w.ReceiverID: msg}
	} else {
		msgs = map[string]string{
			s.WinnerID: fmt.Sprintf("You won %s! %s", dollars(s.WinnerCreditCents), s.Result),
			s.LoserID:  fmt.Sprintf("You lost your %s wager. %s", dollars(w.AmountCents), s.Result),
		}
	}

	for userID, msg := range msgs {
		if err := e.Ledger.InsertNotification(ctx, userID, w.ID, msg); err != nil {
			e.Log.Warn("notification insert failed",
				zap.String("wagerId", w.ID), zap.String("userId", userID), zap.Error(err))
		}
	}
}

func (e *Engine) fail(stage string) {
	if e.OnError != nil {
		e.OnError(stage)
	}
}

func (e *Engine) skip(n int) {
	if e.OnSkipped != nil {
		for i := 0; i < n; i++ {
			e.OnSkipped()
		}
	}
}

// dollars formata centavos como valor monetário para mensagens de notificação
func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
