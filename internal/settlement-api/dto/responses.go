package dto

// RunCycleResponse é o resumo do ciclo disparado via API
type RunCycleResponse struct {
	Eligible int `json:"eligible"`
	Settled  int `json:"settled"`
	Pushed   int `json:"pushed"`
	Skipped  int `json:"skipped"`
	Errored  int `json:"errored"`
}

type WagerStatusResponse struct {
	WagerID  string  `json:"wagerId"`
	Status   string  `json:"status"` // PENDING | ACTIVE | DECLINED | EXPIRED | RESOLVED
	Resolved bool    `json:"resolved"`
	WinnerID *string `json:"winnerId,omitempty"`
	LoserID  *string `json:"loserId,omitempty"`
	Result   string  `json:"result,omitempty"`
}
