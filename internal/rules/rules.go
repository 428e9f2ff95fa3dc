package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/mo"
)

// Transparency values as they appear in the TRANSP property.
const (
	Transparent = "TRANSPARENT"
	Opaque      = "OPAQUE"
)

// Rule maps a summary pattern to the desired classification. Patterns use
// unanchored, case-insensitive search semantics; a pattern may anchor itself
// with ^ and $.
type Rule struct {
	Pattern  string `yaml:"pattern"`
	Color    string `yaml:"color"`
	MakeFree bool   `yaml:"free"`
}

// Patch is the desired state a matching rule assigns to an event.
type Patch struct {
	Transparency string
	Color        string
}

type compiledRule struct {
	re    *regexp.Regexp
	patch Patch
}

// Engine evaluates an ordered rule list against event summaries.
// Rules are compiled once at construction and never mutated afterwards;
// evaluation is first-match-wins.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles the given rules in order. An invalid pattern fails the
// whole construction; a run must not start with a partially usable rule set.
func NewEngine(list []Rule) (*Engine, error) {
	e := &Engine{rules: make([]compiledRule, 0, len(list))}
	for _, r := range list {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule pattern %q: %w", r.Pattern, err)
		}
		transp := Opaque
		if r.MakeFree {
			transp = Transparent
		}
		e.rules = append(e.rules, compiledRule{
			re:    re,
			patch: Patch{Transparency: transp, Color: r.Color},
		})
	}
	return e, nil
}

// Len returns the number of compiled rules.
func (e *Engine) Len() int { return len(e.rules) }

// Classify matches summary against the rule list and returns the desired
// state of the first matching rule, or None when no rule matches. When
// normalize is true the summary is canonicalized with NormalizeSummary
// before matching; the canonical form is used for matching only and never
// written back.
func (e *Engine) Classify(summary string, normalize bool) mo.Option[Patch] {
	key := summary
	if normalize {
		key = NormalizeSummary(summary)
	}
	for _, r := range e.rules {
		if r.re.MatchString(key) {
			return mo.Some(r.patch)
		}
	}
	return mo.None[Patch]()
}

// Some producers append raw property fragments to the human-readable
// summary (e.g. "Standup TRANSP:OPAQUE" or a trailing "BUSY"). The regexes
// strip those so rules match the actual title.
var (
	trailingPropRe   = regexp.MustCompile(`(?i)(TRANSP|X-MICROSOFT-CDO-BUSYSTATUS|STATUS|SEQUENCE|LOCATION|CATEGORIES|CLASS|PRIORITY)[:;=].*$`)
	trailingStatusRe = regexp.MustCompile(`(?i)\s*(TRANSPARENT|OPAQUE|BUSY|FREE)\s*$`)
)

// NormalizeSummary strips trailing control-field fragments and standalone
// status words from a summary, producing the canonical matching key.
func NormalizeSummary(s string) string {
	t := trailingPropRe.ReplaceAllString(s, "")
	t = trailingStatusRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
