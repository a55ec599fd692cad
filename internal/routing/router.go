// Package routing evaluates ordered routing rules against alerts and
// returns the delivery channels each alert should reach. It carries no
// delivery logic.
package routing

import (
	"sort"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// Router holds an ordered list of routing rules. Routing is additive:
// the channel sets of all matching rules are unioned, a rule never
// excludes a channel chosen by another.
//
// The rule list is not internally synchronized; mutating it while
// Route runs concurrently must be guarded by the caller (the
// aggregator holds its lock across both).
type Router struct {
	rules []models.RoutingRule
}

// New creates a router preloaded with the default severity mappings.
func New() *Router {
	r := &Router{}
	for _, rule := range DefaultRules() {
		r.AddRule(rule)
	}
	return r
}

// NewEmpty creates a router with no rules.
func NewEmpty() *Router {
	return &Router{}
}

// DefaultRules returns the standard severity to channel mappings.
func DefaultRules() []models.RoutingRule {
	return []models.RoutingRule{
		{
			Name:       "critical-all",
			Severities: []models.Severity{models.SeverityCritical},
			Channels:   []models.ChannelType{models.ChannelConsole, models.ChannelFile, models.ChannelWebhook, models.ChannelEmail},
		},
		{
			Name:       "error-standard",
			Severities: []models.Severity{models.SeverityError},
			Channels:   []models.ChannelType{models.ChannelConsole, models.ChannelFile, models.ChannelWebhook},
		},
		{
			Name:       "warning-basic",
			Severities: []models.Severity{models.SeverityWarning},
			Channels:   []models.ChannelType{models.ChannelConsole, models.ChannelFile},
		},
		{
			Name:       "info-console",
			Severities: []models.Severity{models.SeverityInfo},
			Channels:   []models.ChannelType{models.ChannelConsole},
		},
		{
			Name:       "debug-file",
			Severities: []models.Severity{models.SeverityDebug},
			Channels:   []models.ChannelType{models.ChannelFile},
		},
	}
}

// AddRule appends a rule to the evaluation order.
func (r *Router) AddRule(rule models.RoutingRule) {
	r.rules = append(r.rules, rule)
}

// ClearRules removes all rules.
func (r *Router) ClearRules() {
	r.rules = nil
}

// ReplaceRules swaps the entire rule list.
func (r *Router) ReplaceRules(rules []models.RoutingRule) {
	r.rules = append([]models.RoutingRule(nil), rules...)
}

// Rules returns a copy of the rule list.
func (r *Router) Rules() []models.RoutingRule {
	return append([]models.RoutingRule(nil), r.rules...)
}

// Route evaluates every rule against the alert and returns the sorted
// union of the matching rules' channels.
func (r *Router) Route(alert *models.Alert) []models.ChannelType {
	set := make(map[models.ChannelType]struct{})
	for i := range r.rules {
		if r.rules[i].Matches(alert) {
			for _, ch := range r.rules[i].Channels {
				set[ch] = struct{}{}
			}
		}
	}

	channels := make([]models.ChannelType, 0, len(set))
	for ch := range set {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return channels
}
