package domain

// IdempotentResponse is a cached HTTP response replayed for a repeated
// Idempotency-Key.
type IdempotentResponse struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

// BuildIdempotencyKey scopes a client key to the calling account and the
// endpoint it was sent to, so one key reused on another route is a new
// request.
func BuildIdempotencyKey(account Account, method, route, key string) string {
	return "idem:" + account.Hex() + ":" + method + " " + route + ":" + key
}
