package report

import (
	"path/filepath"
	"strings"
)

type subjectHint struct {
	substr  string
	subject string
}

// knownSubjects is checked in order; the first substring hit wins.
var knownSubjects = []subjectHint{
	{"google", "Google"},
	{"apple", "Apple"},
	{"amazon", "Amazon"},
	{"microsoft", "Microsoft"},
	{"bp", "BP"},
}

// InferSubject guesses the reporting company from a filename. It only looks
// at the base name and reports false when nothing matches.
func InferSubject(filename string) (string, bool) {
	base := strings.ToLower(filepath.Base(filename))
	for _, h := range knownSubjects {
		if strings.Contains(base, h.substr) {
			return h.subject, true
		}
	}
	return "", false
}

// ResolveSubject prefers an explicit subject over inference.
func ResolveSubject(explicit, filename string) (string, bool) {
	if s := strings.TrimSpace(explicit); s != "" {
		return s, true
	}
	return InferSubject(filename)
}
