package domain

import "time"

// TokenRecord aggregates sightings of one unrecognized notation token.
type TokenRecord struct {
	// Token is the verbatim notation token, e.g. `\foo`.
	Token string `json:"token"`

	// Count is how many conversions reported it.
	Count int `json:"count"`

	// Sample is one input the token was seen in.
	Sample string `json:"sample"`

	// Context is the classification label of the sample.
	Context string `json:"context"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
