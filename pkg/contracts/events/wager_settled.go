package events

// Evento publicado no tópico "wager_settled" após o commit da liquidação.
// Consumidores típicos: feed de notificações, analytics.
type WagerSettled struct {
	WagerID           string `json:"wager_id"`
	GameID            string `json:"game_id"`
	SenderID          string `json:"sender_id"`
	ReceiverID        string `json:"receiver_id"`
	WinnerID          string `json:"winner_id,omitempty"` // vazio em push
	LoserID           string `json:"loser_id,omitempty"`  // vazio em push
	Push              bool   `json:"push"`
	AmountCents       int64  `json:"amount_cents"`
	WinnerCreditCents int64  `json:"winner_credit_cents"` // stake + lucro; em push, o stake devolvido a cada lado
	Result            string `json:"result"`
	TsUnixMs          int64  `json:"ts_unix_ms"`
}
