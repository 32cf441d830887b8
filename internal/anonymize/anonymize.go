// Package anonymize produces the de-identified, feature-encoded projection of
// a ledger that is handed to the computation gateway. Descriptions are
// replaced with deterministic pseudonyms before any feature extraction.
package anonymize

import (
	"crypto/md5"
	"encoding/hex"

	"finsecure/internal/core"
)

// categoryTags maps canonical categories to the short prefix used in
// pseudonymized descriptions. Unmapped categories fall back to "Transaction".
var categoryTags = map[string]string{
	"Income":         "Income",
	"Transportation": "Transport",
	"Food":           "Food",
	"Groceries":      "Grocery",
	"Housing":        "Housing",
	"Healthcare":     "Health",
	"Fitness":        "Fitness",
	"Shopping":       "Shopping",
	"Subscriptions":  "Subscription",
	"Insurance":      "Insurance",
	"Utilities":      "Utility",
	"Education":      "Education",
	"Entertainment":  "Entertainment",
	"Transfers":      "Transfer",
	"Travel":         "Travel",
}

const defaultTag = "Transaction"

// Anonymize replaces every description with a pseudonymous token of the form
// "<tag>-<hash>". The 8-hex-digit hash depends only on the original
// description, so identical descriptions share a digest; the tag is taken
// from each row's own category, so the same description filed under two
// categories yields two tokens differing only in prefix. The input ledger is
// not modified.
func Anonymize(l core.Ledger) core.Ledger {
	out := l.Clone()
	for i, t := range out {
		out[i].Description = Pseudonym(t.Description, t.Category)
	}
	return out
}

// Pseudonym builds the anonymized token for one description/category pair.
func Pseudonym(description, category string) string {
	tag, ok := categoryTags[category]
	if !ok {
		tag = defaultTag
	}
	sum := md5.Sum([]byte(description))
	return tag + "-" + hex.EncodeToString(sum[:])[:8]
}
