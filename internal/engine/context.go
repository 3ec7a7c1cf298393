package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// --- Turn context and helpers -----------------------------------------
type turnContext struct {
	attacker *Combatant
	defender *Combatant
	rules    Rules
	rnd      RandomSource
	summary  []string
}

func newTurnContext(attacker, defender *Combatant, rules Rules, rnd RandomSource) *turnContext {
	return &turnContext{attacker: attacker, defender: defender, rules: rules, rnd: rnd, summary: make([]string, 0, 4)}
}

func (tc *turnContext) add(msg string) { tc.summary = append(tc.summary, msg) }

// joinSummary returns the accumulated summary as a single line.
func (tc *turnContext) joinSummary() string {
	return strings.Join(tc.summary, " ")
}

// displayName returns a title-cased pet name, falling back to the side.
func displayName(c *Combatant) string {
	if c == nil {
		return ""
	}
	if strings.TrimSpace(c.Name) == "" {
		return "Side " + string(c.Side)
	}
	return cases.Title(language.English).String(c.Name)
}

func effectLabel(e StatusEffect) string {
	return cases.Title(language.English).String(strings.ReplaceAll(e.Name, "_", " "))
}
