package models

// RoutingRule is a declarative matcher from alert attributes to a set
// of delivery channels. An empty Sources or Tags list means the filter
// is not applied.
type RoutingRule struct {
	Name       string        `json:"name" yaml:"name"`
	Severities []Severity    `json:"severities" yaml:"severities"`
	Channels   []ChannelType `json:"channels" yaml:"channels"`
	Sources    []string      `json:"sources,omitempty" yaml:"sources,omitempty"`
	Tags       []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Matches reports whether an alert matches this rule: severity must be
// in the rule's severity set, and the optional source and tag filters
// must pass when present.
func (r *RoutingRule) Matches(alert *Alert) bool {
	if !containsSeverity(r.Severities, alert.Severity) {
		return false
	}

	if len(r.Sources) > 0 && !containsString(r.Sources, alert.Source) {
		return false
	}

	if len(r.Tags) > 0 {
		matched := false
		for _, tag := range r.Tags {
			if containsString(alert.Tags, tag) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func containsSeverity(list []Severity, s Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
