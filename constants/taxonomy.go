package constants

import "strings"

// Binary taxonomy labels. Store these exact strings in DB.
const (
	LifeScienceCN    = "生命科学"
	LifeScienceEN    = "Life Science"
	NonLifeScienceCN = "非生命科学"
	NonLifeScienceEN = "Non-Life Science"

	// Unclassified is the sentinel for an answer the model refused to commit to.
	UnclassifiedCN = "未分类"
	UnclassifiedEN = "Unclassified"
)

// negativeMarkers must be checked before positiveMarkers: the positive label is a
// substring of the negative one in both languages ("非生命科学" contains "生命科学",
// "Non-Life Science" contains "Life Science").
var negativeMarkers = []string{
	NonLifeScienceCN,
	"non-life science",
	"non life science",
	"nonlife science",
	"not life science",
}

var positiveMarkers = []string{
	LifeScienceCN,
	"life science",
	"生物",
	"医学",
	"biology",
	"biomedical",
	"medical",
	"medicine",
}

// IsNegativeLifeScience reports whether s carries a negative-class marker.
func IsNegativeLifeScience(s string) bool {
	low := strings.ToLower(s)
	for _, m := range negativeMarkers {
		if strings.Contains(low, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// IsPositiveLifeScience reports whether s carries a positive-class marker.
// Callers must test IsNegativeLifeScience first.
func IsPositiveLifeScience(s string) bool {
	low := strings.ToLower(s)
	for _, m := range positiveMarkers {
		if strings.Contains(low, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// OfflineRules maps lowercase keywords to a domain label for the no-network
// classification mode. Positive keywords only; anything unmatched falls back to
// the caller's default class.
var OfflineRules = []struct {
	Keyword string
	Domain  string
}{
	{"生物", LifeScienceCN},
	{"基因", LifeScienceCN},
	{"医学", LifeScienceCN},
	{"细胞", LifeScienceCN},
	{"biology", LifeScienceCN},
	{"gene", LifeScienceCN},
	{"protein", LifeScienceCN},
	{"clinical", LifeScienceCN},
	{"medicine", LifeScienceCN},
}
