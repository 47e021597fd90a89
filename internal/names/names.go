// Package names implements the disambiguated display names used for
// collections, objects and fields.
//
// A Name is a base text plus a numeric suffix. The suffix is hidden when it is 1,
// so "Item" and "Item2" are two distinct names sharing the same text.
package names

import "strconv"

// Name is a display name with a disambiguating numeric suffix.
type Name struct {
	Text string
	ID   int
}

// New returns a name with the given text and the default suffix.
func New(text string) Name {
	return Name{Text: text, ID: 1}
}

// Parse splits a rendered name back into text and suffix.
//
// A trailing number of 2 or more becomes the suffix when there is text before it:
// "Item3" -> {Item, 3}. Anything else keeps the whole string as text:
// "Item", "Item1", "42" -> {s, 1}.
func Parse(s string) Name {
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == 0 || start == end {
		return New(s)
	}

	// Leading zeros would not survive a round trip through String.
	if s[start] == '0' {
		return New(s)
	}

	id, err := strconv.Atoi(s[start:])
	if err != nil || id < 2 {
		return New(s)
	}
	return Name{Text: s[:start], ID: id}
}

// String renders the name, appending the suffix when it is not 1.
func (n Name) String() string {
	if n.ID <= 1 {
		return n.Text
	}
	return n.Text + strconv.Itoa(n.ID)
}

// IsZero reports whether the name is empty.
func (n Name) IsZero() bool {
	return n.Text == "" && n.ID <= 1
}

// Normalize returns the name with a valid suffix (at least 1).
func (n Name) Normalize() Name {
	if n.ID < 1 {
		n.ID = 1
	}
	return n
}

// Disambiguate resolves a collision between candidate and the suffixes already
// used by other entries sharing its text.
//
// If candidate's suffix is not in used it is returned unchanged, which makes the
// rule idempotent. Otherwise the suffix becomes the smallest integer >= 2 that is
// not in used.
func Disambiguate(candidate Name, used []int) Name {
	candidate = candidate.Normalize()
	if !contains(used, candidate.ID) {
		return candidate
	}

	candidate.ID = 2
	for contains(used, candidate.ID) {
		candidate.ID++
	}
	return candidate
}

// Scope collects the suffixes used by names that share candidate's text.
func Scope(candidate Name, others []Name) []int {
	var used []int
	for _, other := range others {
		if other.Text == candidate.Text {
			used = append(used, other.Normalize().ID)
		}
	}
	return used
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
