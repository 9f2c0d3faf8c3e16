package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres implementa o ledger de liquidação em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de liquidação
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	// ErrAlreadyResolved indica que outra liquidação concorrente chegou primeiro;
	// o chamador deve tratar como no-op limpo, nunca como falha
	ErrAlreadyResolved = errors.New("wager already resolved")
	ErrNotFound        = errors.New("not found")
)

const wagerColumns = `
	id, sender_id, receiver_id, bet_type,
	sender_team, receiver_team, sender_value, receiver_value,
	amount_cents, game_id, sport_key, home_team, away_team, start_time,
	status, resolved`

// ListSettleable retorna todas as apostas elegíveis para graduação:
// aceitas pelas duas partes e ainda não resolvidas
func (p *Postgres) ListSettleable(ctx context.Context) ([]Wager, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+wagerColumns+`
		FROM wagers
		WHERE status = $1 AND resolved = FALSE
		ORDER BY start_time`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Wager
	for rows.Next() {
		var w Wager
		if err := rows.Scan(
			&w.ID, &w.SenderID, &w.ReceiverID, &w.BetType,
			&w.SenderTeam, &w.ReceiverTeam, &w.SenderValue, &w.ReceiverValue,
			&w.AmountCents, &w.GameID, &w.SportKey, &w.HomeTeam, &w.AwayTeam, &w.StartTime,
			&w.Status, &w.Resolved,
		); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Settle aplica a liquidação de uma aposta como uma única transação:
// flip de status + saldos + contadores de vitória/derrota.
// O SELECT ... FOR UPDATE com re-checagem de resolved dentro da transação é a
// guarda de concorrência: gatilhos sobrepostos (worker, API, scripts) podem
// disputar a mesma aposta e no máximo um vence; os demais recebem
// ErrAlreadyResolved e seguem sem efeito.
func (p *Postgres) Settle(ctx context.Context, s Settlement) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var senderID, receiverID string
	var amount int64
	var resolved bool
	err = tx.QueryRowContext(ctx, `
		SELECT sender_id, receiver_id, amount_cents, resolved
		FROM wagers WHERE id=$1 FOR UPDATE`, s.WagerID).
		Scan(&senderID, &receiverID, &amount, &resolved)
	if err == sql.ErrNoRows {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	if resolved {
		return ErrAlreadyResolved
	}

	var winnerID, loserID any
	if !s.Push {
		winnerID, loserID = s.WinnerID, s.LoserID
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE wagers
		SET status=$1, resolved=TRUE, winner_id=$2, loser_id=$3, result=$4,
		    resolved_at=NOW(), updated_at=NOW()
		WHERE id=$5`,
		StatusResolved, winnerID, loserID, s.Result, s.WagerID); err != nil {
		return err
	}

	if s.Push {
		// Push: devolve exatamente o stake aos dois lados, sem tocar em wins/losses
		if _, err = tx.ExecContext(ctx, `
			UPDATE users SET balance_cents = balance_cents + $1, updated_at=NOW()
			WHERE id = ANY($2)`,
			amount, pq.Array([]string{senderID, receiverID})); err != nil {
			return err
		}
		return tx.Commit()
	}

	// Vitória: credita stake+lucro ao vencedor e incrementa os contadores.
	// O stake do perdedor já foi debitado na aceitação; saldo dele não muda aqui.
	if _, err = tx.ExecContext(ctx, `
		UPDATE users SET balance_cents = balance_cents + $1, wins = wins + 1, updated_at=NOW()
		WHERE id=$2`, s.WinnerCreditCents, s.WinnerID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE users SET losses = losses + 1, updated_at=NOW()
		WHERE id=$1`, s.LoserID); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertNotification registra a notificação de desfecho para uma das partes.
// Fire-and-forget: roda fora da transação de liquidação e falha não escala.
func (p *Postgres) InsertNotification(ctx context.Context, userID, wagerID, message string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, wager_id, message, created_at)
		VALUES ($1,$2,$3,$4,NOW())`,
		uuid.NewString(), userID, wagerID, message)
	return err
}

// ExpireOverdue marca como EXPIRED apostas ainda PENDING cujo jogo já começou.
// Transição terminal única, como a de RESOLVED.
func (p *Postgres) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE wagers SET status=$1, updated_at=NOW()
		WHERE status=$2 AND start_time <= $3`,
		StatusExpired, StatusPending, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetStatus retorna a visão resumida de uma aposta pelo id
func (p *Postgres) GetStatus(ctx context.Context, wagerID string) (WagerStatus, error) {
	var st WagerStatus
	var result sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT id, status, resolved, winner_id, loser_id, result
		FROM wagers WHERE id=$1`, wagerID).
		Scan(&st.WagerID, &st.Status, &st.Resolved, &st.WinnerID, &st.LoserID, &result)
	if err == sql.ErrNoRows {
		return WagerStatus{}, ErrNotFound
	} else if err != nil {
		return WagerStatus{}, err
	}
	st.Result = result.String
	return st, nil
}
