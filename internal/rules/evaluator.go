package rules

// HasKey reports whether the match names key.
func (m Match) HasKey(key string) bool {
	for _, k := range m.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Matches reports whether value satisfies the match. Regex operators search
// anywhere in value; equality operators compare the whole value.
func (m Match) Matches(value string) bool {
	var hit bool
	if m.re != nil {
		hit = m.re.MatchString(value)
	} else {
		hit = m.Text == value
	}
	if m.Op == OpNotRegex || m.Op == OpNotEqual {
		return !hit
	}
	return hit
}

// Applies reports whether the rule selects value stored under key. A
// condition holds when any value of any of its keys matches.
func (r InExRule) Applies(key, value string, lookup Lookup) bool {
	if !r.Match.HasKey(key) || !r.Match.Matches(value) {
		return false
	}
	if r.Cond == nil {
		return true
	}
	for _, ck := range r.Cond.Keys {
		for _, cv := range lookup(ck) {
			if r.Cond.Matches(cv) {
				return true
			}
		}
	}
	return false
}

// Include keeps the values selected by some rule for key. When no rule names
// key the values are returned unchanged.
func Include(rules []InExRule, key string, values []string, lookup Lookup) []string {
	if !namesKey(rules, key) {
		return values
	}
	var out []string
	for _, v := range values {
		if anyApplies(rules, key, v, lookup) {
			out = append(out, v)
		}
	}
	return out
}

// Exclude drops the values selected by some rule for key.
func Exclude(rules []InExRule, key string, values []string, lookup Lookup) []string {
	var out []string
	for _, v := range values {
		if !anyApplies(rules, key, v, lookup) {
			out = append(out, v)
		}
	}
	return out
}

func namesKey(rules []InExRule, key string) bool {
	for _, r := range rules {
		if r.Match.HasKey(key) {
			return true
		}
	}
	return false
}

func anyApplies(rules []InExRule, key, value string, lookup Lookup) bool {
	for _, r := range rules {
		if r.Applies(key, value, lookup) {
			return true
		}
	}
	return false
}

// Apply runs every replacement that covers key over value, in order. A
// replacement with a condition on another key only fires when some value of
// that key matches the condition.
func Apply(repls []Replacement, key, value string, lookup Lookup) string {
	for _, r := range repls {
		if r.Keys != nil && !contains(r.Keys, key) {
			continue
		}
		if !r.Pattern.MatchString(value) {
			continue
		}
		if r.CondKey != "" && r.CondKey != key && !anyMatch(r.CondPattern.MatchString, lookup(r.CondKey)) {
			continue
		}
		value = r.Pattern.ReplaceAll(value, r.Replacement)
	}
	return value
}

// Select returns the first cover setting whose template value matches.
func Select(settings []CoverSetting, lookup Lookup) (CoverSetting, bool) {
	for _, s := range settings {
		if anyMatch(s.Pattern.MatchString, lookup(s.Template)) {
			return s, true
		}
	}
	return CoverSetting{}, false
}

func anyMatch(match func(string) bool, values []string) bool {
	for _, v := range values {
		if match(v) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
