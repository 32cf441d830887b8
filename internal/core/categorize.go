package core

import (
	"regexp"
	"strings"
)

// Rule maps a case-insensitive regular expression over the transaction
// description to a category. Rules are ordered; the first match wins.
type Rule struct {
	Pattern  string
	Category string
}

// defaultRules is the built-in keyword table. Order matters: "gas station"
// hits the Utilities pattern before the later fuel pattern, matching the
// historical behavior of the rule set.
var defaultRules = []Rule{
	{"salary|payroll|deposit", "Income"},
	{"uber|lyft|taxi|transit|train|bus", "Transportation"},
	{"restaurant|dining|food|breakfast|lunch|dinner|meal", "Food"},
	{"grocery|supermarket|market", "Groceries"},
	{"rent|mortgage|housing", "Housing"},
	{"doctor|medical|pharmacy|health|dental", "Healthcare"},
	{"gym|fitness|workout", "Fitness"},
	{"amazon|shopping|store|retail", "Shopping"},
	{"netflix|spotify|hulu|disney|subscription", "Subscriptions"},
	{"insurance", "Insurance"},
	{"utility|electric|gas|water|internet|phone|bill", "Utilities"},
	{"education|tuition|school|college|university", "Education"},
	{"entertainment|movie|game|theater", "Entertainment"},
	{"transfer|zelle|venmo|paypal", "Transfers"},
	{"gas|gasoline|fuel", "Transportation"},
	{"travel|hotel|flight|airbnb", "Travel"},
}

type compiledRule struct {
	re       *regexp.Regexp
	category string
}

// Categorize assigns categories to transactions that are currently
// uncategorized (case-insensitive) or blank by scanning descriptions against
// the rule table. Extra rules override built-ins sharing the same pattern and
// are appended after them otherwise. Transactions that match no rule keep
// Uncategorized. The input ledger is not modified.
func Categorize(l Ledger, extra []Rule) (Ledger, error) {
	rules, err := compileRules(mergeRules(defaultRules, extra))
	if err != nil {
		return nil, err
	}

	out := l.Clone()
	for i, t := range out {
		if !needsCategory(t.Category) {
			continue
		}
		out[i].Category = matchCategory(rules, t.Description)
	}
	return out, nil
}

func needsCategory(category string) bool {
	c := strings.TrimSpace(category)
	return c == "" || strings.EqualFold(c, CategoryUncategorized)
}

func mergeRules(base, extra []Rule) []Rule {
	if len(extra) == 0 {
		return base
	}
	overrides := make(map[string]string, len(extra))
	for _, r := range extra {
		overrides[r.Pattern] = r.Category
	}

	merged := make([]Rule, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base))
	for _, r := range base {
		if cat, ok := overrides[r.Pattern]; ok {
			r.Category = cat
		}
		merged = append(merged, r)
		seen[r.Pattern] = struct{}{}
	}
	for _, r := range extra {
		if _, ok := seen[r.Pattern]; ok {
			continue
		}
		merged = append(merged, r)
		seen[r.Pattern] = struct{}{}
	}
	return merged
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{re: re, category: r.Category})
	}
	return compiled, nil
}

func matchCategory(rules []compiledRule, description string) string {
	desc := strings.ToLower(description)
	for _, r := range rules {
		if r.re.MatchString(desc) {
			return r.category
		}
	}
	return CategoryUncategorized
}
