package models

// Challenge is a single-use arithmetic question shown once repeated login
// failures put an identifier into the challenge band. The answer is never
// serialized to clients.
type Challenge struct {
	Question string `json:"question"`
	Answer   int    `json:"-"`
}
