package oddsmath

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidOdds indica odds americanas inválidas (zero não existe no mercado)
var ErrInvalidOdds = errors.New("invalid american odds: must be non-zero")

var hundred = decimal.NewFromInt(100)

// Profit calcula o lucro (em centavos) de uma aposta vencedora com odds americanas.
// Odds positivas: lucro por $100 apostados (+150 sobre $100 → $150).
// Odds negativas: quanto apostar para lucrar $100 (-150 sobre $150 → $100).
// Arredonda para o centavo mais próximo.
func Profit(americanOdds int, stakeCents int64) (int64, error) {
	if americanOdds == 0 {
		return 0, ErrInvalidOdds
	}

	stake := decimal.NewFromInt(stakeCents)

	var profit decimal.Decimal
	if americanOdds > 0 {
		profit = stake.Mul(decimal.NewFromInt(int64(americanOdds))).Div(hundred)
	} else {
		profit = stake.Mul(hundred).Div(decimal.NewFromInt(int64(-americanOdds)))
	}

	return profit.Round(0).IntPart(), nil
}

// Payout retorna o crédito total do vencedor: stake + lucro
func Payout(americanOdds int, stakeCents int64) (int64, error) {
	profit, err := Profit(americanOdds, stakeCents)
	if err != nil {
		return 0, err
	}
	return stakeCents + profit, nil
}
