package plan

import "strings"

// Complexity is the three-level assignment difficulty used as the second
// key into the template lookup.
type Complexity string

const (
	ComplexityEasy   Complexity = "Easy"
	ComplexityMedium Complexity = "Medium"
	ComplexityHard   Complexity = "Hard"
)

var Complexities = []Complexity{ComplexityEasy, ComplexityMedium, ComplexityHard}

// IsValid reports whether c is one of the three known levels.
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexityEasy, ComplexityMedium, ComplexityHard:
		return true
	}
	return false
}

// taskTemplates holds the ordered task descriptions per (subject, complexity).
// The last task of the harder templates is a review/integration step by
// convention of the template content.
var taskTemplates = map[Subject]map[Complexity][]string{
	SubjectMathematics: {
		ComplexityEasy: {
			"Review relevant theorems and formulas",
			"Work through example problems from textbook",
			"Complete assigned problem set",
			"Check answers and review mistakes",
		},
		ComplexityMedium: {
			"Review chapter notes and key concepts",
			"Identify problem types and required techniques",
			"Solve first half of problems (show all work)",
			"Solve second half of problems",
			"Verify solutions and check for errors",
			"Write up solutions neatly",
			"Final review and submission",
		},
		ComplexityHard: {
			"Review all relevant chapters and theorems",
			"Create formula sheet and reference guide",
			"Categorize problems by type and difficulty",
			"Attempt straightforward problems first",
			"Work on moderate difficulty problems",
			"Tackle challenging/proof-based problems",
			"Review solutions for logical consistency",
			"Verify calculations and check edge cases",
			"Write formal proofs with proper notation",
			"Final review, formatting, and submission",
		},
	},
	SubjectComputerScience: {
		ComplexityEasy: {
			"Read assignment requirements and setup environment",
			"Write pseudocode or plan algorithm",
			"Implement basic functionality",
			"Test, debug, and submit",
		},
		ComplexityMedium: {
			"Analyze requirements and edge cases",
			"Design algorithm and data structures",
			"Set up project structure and dependencies",
			"Implement core functionality",
			"Write test cases and debug",
			"Add error handling and validation",
			"Write documentation and comments",
			"Final testing and submission",
		},
		ComplexityHard: {
			"Analyze requirements and system design",
			"Research algorithms and best practices",
			"Design architecture and choose data structures",
			"Set up development environment and version control",
			"Implement core modules/classes",
			"Implement additional features and integration",
			"Write comprehensive unit tests",
			"Perform integration testing and debugging",
			"Optimize performance and refactor code",
			"Write documentation and README",
			"Code review, final testing, and deployment",
		},
	},
	SubjectEnglish: {
		ComplexityEasy: {
			"Read prompt and brainstorm ideas",
			"Create basic outline",
			"Write first draft",
			"Proofread, edit, and submit",
		},
		ComplexityMedium: {
			"Analyze prompt and identify key requirements",
			"Conduct research and gather sources",
			"Create detailed thesis and outline",
			"Write introduction and thesis statement",
			"Write body paragraphs with evidence",
			"Write conclusion",
			"Revise for clarity and argument strength",
			"Proofread for grammar and citations",
			"Final review and submission",
		},
		ComplexityHard: {
			"Deep analysis of prompt and requirements",
			"Conduct extensive research and literature review",
			"Organize sources and create annotated bibliography",
			"Develop thesis and comprehensive outline",
			"Write introduction with strong thesis statement",
			"Write first set of body paragraphs with evidence",
			"Write second set of body paragraphs",
			"Write conclusion with synthesis",
			"Revise for argument coherence and flow",
			"Peer review or get feedback",
			"Major revision incorporating feedback",
			"Final proofreading and citation check",
			"Format according to style guide and submit",
		},
	},
	SubjectPhysics: {
		ComplexityEasy: {
			"Review relevant physics concepts and formulas",
			"Work through example problems",
			"Solve assigned problems showing work",
			"Check units and verify answers",
		},
		ComplexityMedium: {
			"Review chapter material and key equations",
			"Identify which principles apply to each problem",
			"Draw diagrams and define variables",
			"Solve problems using systematic approach",
			"Check dimensional analysis and units",
			"Verify answers make physical sense",
			"Write up solutions with explanations",
			"Final review and submission",
		},
		ComplexityHard: {
			"Comprehensive review of relevant physics topics",
			"Create equation sheet and concept map",
			"Analyze each problem and identify approach",
			"Draw detailed free-body diagrams and schematics",
			"Set up equations from first principles",
			"Solve mathematical equations step-by-step",
			"Verify solutions through alternate methods",
			"Check limiting cases and special scenarios",
			"Analyze results for physical reasonableness",
			"Write formal solutions with derivations",
			"Create graphs or visualizations if needed",
			"Final review of all work and submission",
		},
	},
	SubjectGeneric: {
		ComplexityEasy: {
			"Review course notes and materials",
			"Create outline or structure",
			"Complete first draft",
			"Final review and submission",
		},
		ComplexityMedium: {
			"Gather research materials and resources",
			"Read and take notes on key topics",
			"Create detailed outline",
			"Write first draft",
			"Review and edit content",
			"Finalize and proofread",
			"Submit assignment",
		},
		ComplexityHard: {
			"Conduct initial research and literature review",
			"Organize and categorize sources",
			"Create detailed project plan",
			"Work on first section/component",
			"Work on second section/component",
			"Work on third section/component",
			"Integration and testing",
			"Comprehensive review and editing",
			"Get feedback and revise",
			"Final polish and submission",
		},
	},
}

// durationEstimates holds the candidate task durations (minutes) per
// (subject, complexity). One value is picked uniformly at random per task.
var durationEstimates = map[Subject]map[Complexity][]int{
	SubjectMathematics: {
		ComplexityEasy:   {30, 45, 60},
		ComplexityMedium: {60, 90, 120},
		ComplexityHard:   {90, 120, 180},
	},
	SubjectComputerScience: {
		ComplexityEasy:   {45, 60, 90},
		ComplexityMedium: {90, 120, 150},
		ComplexityHard:   {120, 180, 240},
	},
	SubjectEnglish: {
		ComplexityEasy:   {30, 45, 60},
		ComplexityMedium: {60, 90, 120},
		ComplexityHard:   {120, 150, 180},
	},
	SubjectPhysics: {
		ComplexityEasy:   {30, 45, 60},
		ComplexityMedium: {60, 90, 120},
		ComplexityHard:   {90, 120, 180},
	},
	SubjectGeneric: {
		ComplexityEasy:   {30, 45, 60},
		ComplexityMedium: {60, 90, 120},
		ComplexityHard:   {120, 150, 180},
	},
}

// normalizeSubject maps arbitrary subject text onto a template key.
func normalizeSubject(subject Subject) Subject {
	s := Subject(strings.ReplaceAll(strings.ToLower(string(subject)), " ", "_"))
	if _, ok := taskTemplates[s]; ok {
		return s
	}
	return SubjectGeneric
}

// Tasks returns the ordered task descriptions for (subject, complexity).
// Unknown subjects fall back to the generic tier; complexity is never
// defaulted and must be one of the three levels.
func Tasks(subject Subject, complexity Complexity) []string {
	tasks := taskTemplates[normalizeSubject(subject)][complexity]
	out := make([]string, len(tasks))
	copy(out, tasks) // callers must not mutate the template data
	return out
}

// Durations returns the candidate duration set (minutes) for
// (subject, complexity), falling back to the generic tier like Tasks.
func Durations(subject Subject, complexity Complexity) []int {
	durations := durationEstimates[normalizeSubject(subject)][complexity]
	out := make([]int, len(durations))
	copy(out, durations)
	return out
}
