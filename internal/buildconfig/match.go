package buildconfig

// MatchRule reports whether filePath is selected by rule. A path matching the
// exclude pattern is never selected, even when it also matches the test pattern.
func MatchRule(rule TransformRule, filePath string) bool {
	if rule.Exclude != nil && rule.Exclude.Match(filePath) {
		return false
	}
	return rule.Test.Match(filePath)
}

// OrderedRulesFor returns every rule selecting filePath, in declaration order.
func OrderedRulesFor(filePath string, rules []TransformRule) []TransformRule {
	matched := []TransformRule{}
	for _, rule := range rules {
		if MatchRule(rule, filePath) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// HandlerChain concatenates the handlers of every rule selecting filePath.
// Rules contribute in declaration order, so overlapping rules chain.
func HandlerChain(filePath string, rules []TransformRule) []Handler {
	var chain []Handler
	for _, rule := range OrderedRulesFor(filePath, rules) {
		chain = append(chain, rule.Handlers...)
	}
	return chain
}
