// Package classify guesses the mathematical field of a piece of notation
// from weighted keyword signals.
package classify

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/notation/delim"
)

// DefaultSaturation is the score at which the best domain counts as fully
// evidenced.
const DefaultSaturation = 3.0

// Signal is one piece of evidence for a domain. Exactly one of Token and
// Pattern is set.
type Signal struct {
	Token   string
	Pattern *regexp.Regexp
	Weight  float64
}

// count returns the number of occurrences of the signal in text.
func (s Signal) count(text string) int {
	if s.Pattern != nil {
		return len(s.Pattern.FindAllStringIndex(text, -1))
	}
	if s.Token == "" {
		return 0
	}
	wordEnd := s.Token[0] == '\\' && delim.IsLetter(s.Token[len(s.Token)-1])
	n := 0
	for pos := 0; pos < len(text); {
		i := strings.Index(text[pos:], s.Token)
		if i < 0 {
			break
		}
		end := pos + i + len(s.Token)
		if wordEnd && end < len(text) && delim.IsLetter(text[end]) {
			pos += i + 1
			continue
		}
		n++
		pos = end
	}
	return n
}

// Domain is a named set of signals.
type Domain struct {
	Name    string
	Signals []Signal
}

// Classifier scores text against registered domains. It holds no per-call
// state and is safe for concurrent use.
type Classifier struct {
	domains       []Domain
	minConfidence float64
	saturation    float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSaturation overrides DefaultSaturation.
func WithSaturation(s float64) Option {
	return func(c *Classifier) {
		if s > 0 {
			c.saturation = s
		}
	}
}

// New creates a classifier. Domains are consulted in the given order and the
// first one wins ties.
func New(minConfidence float64, domains []Domain, opts ...Option) *Classifier {
	c := &Classifier{
		domains:       domains,
		minConfidence: minConfidence,
		saturation:    DefaultSaturation,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default creates a classifier over the built-in domains.
func Default(minConfidence float64) *Classifier {
	return New(minConfidence, DefaultDomains())
}

// Domains returns the registered domain names in order.
func (c *Classifier) Domains() []string {
	out := make([]string, 0, len(c.domains))
	for _, d := range c.domains {
		out = append(out, d.Name)
	}
	return out
}

// Scores returns the raw score per domain, in registration order.
func (c *Classifier) Scores(text string) []float64 {
	out := make([]float64, len(c.domains))
	for i, d := range c.domains {
		for _, s := range d.Signals {
			out[i] += s.Weight * float64(s.count(text))
		}
	}
	return out
}

// Classify returns the most likely domain, or domain.DomainGeneral when the
// confidence is below the configured minimum.
func (c *Classifier) Classify(text string) domain.Classification {
	scores := c.Scores(text)
	best := -1
	var total float64
	for i, s := range scores {
		total += s
		if s > 0 && (best == -1 || s > scores[best]) {
			best = i
		}
	}
	if best == -1 || total <= 0 {
		return domain.Classification{Label: domain.DomainGeneral}
	}

	top := scores[best]
	confidence := (top / total) * min(1, top/c.saturation)
	if confidence < c.minConfidence {
		return domain.Classification{Label: domain.DomainGeneral, Confidence: confidence}
	}
	return domain.Classification{Label: c.domains[best].Name, Confidence: confidence}
}
