package plan

import "strings"

// Subject is the closed set of academic domains a study plan can be
// templated from. It is derived from assignment text at generation time
// and never persisted.
type Subject string

const (
	SubjectMathematics     Subject = "mathematics"
	SubjectComputerScience Subject = "computer_science"
	SubjectEnglish         Subject = "english"
	SubjectPhysics         Subject = "physics"
	SubjectGeneric         Subject = "generic"
)

// subjectKeywords is checked in order; the first subject with any keyword
// found as a substring wins. Order matters: text matching several subjects
// resolves to the earliest entry, a deliberate simplicity tradeoff.
var subjectKeywords = []struct {
	subject  Subject
	keywords []string
}{
	{SubjectMathematics, []string{
		"math", "calculus", "algebra", "geometry", "statistics", "theorem",
		"proof", "equation", "problem set", "linear algebra",
	}},
	{SubjectComputerScience, []string{
		"programming", "code", "algorithm", "software", "app", "web",
		"database", "java", "python", "javascript", "css", "html",
	}},
	{SubjectEnglish, []string{
		"essay", "paper", "literature", "analysis", "writing", "composition",
		"novel", "poem", "author", "shakespeare",
	}},
	{SubjectPhysics, []string{
		"physics", "mechanics", "thermodynamics", "quantum", "force",
		"energy", "motion", "electricity", "magnetism",
	}},
}

// DetectSubject maps free-text assignment title+description to a Subject
// via case-insensitive keyword matching. Pure and total: unknown text
// falls back to SubjectGeneric.
func DetectSubject(title, description string) Subject {
	text := strings.ToLower(title + " " + description)
	for _, entry := range subjectKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.subject
			}
		}
	}
	return SubjectGeneric
}
