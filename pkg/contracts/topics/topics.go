package topics

const (
	// Settlement
	WagerSettled = "wager_settled"

	// DLQ
	WagerSettledDLQ = "wager_settled_dlq"
)
