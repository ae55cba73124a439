package domain

// AuthTokens is the outcome of a successful login or refresh exchange.
// RefreshToken is empty when the server did not issue (or rotate) one.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
}
