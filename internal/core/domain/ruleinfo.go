package domain

// RuleInfo describes one rewrite rule for listings.
type RuleInfo struct {
	Layer    string `json:"layer"`
	Priority int    `json:"priority"`
	Name     string `json:"name"`
	Match    string `json:"match"`
	Trigger  string `json:"trigger,omitempty"`
}
