package service

import "strings"

// subjectKeywords is an ordered table: detection picks the subject with the
// most keyword hits, and the earlier entry wins ties. Ordering is kept
// deterministic but is a placeholder heuristic, not a contract.
type subjectKeywords struct {
	Subject  string
	Keywords []string
}

var subjectTable = []subjectKeywords{
	{"biology", []string{
		"cell", "photosynthesis", "enzyme", "dna", "rna", "protein", "mitosis",
		"meiosis", "respiration", "nervous", "hormone", "kidney", "heart",
		"bacteria", "virus", "evolution", "genetics", "chromosome", "tissue",
	}},
	{"chemistry", []string{
		"atom", "molecule", "bond", "reaction", "acid", "base", "mole",
		"electron configuration", "periodic", "organic", "hydrocarbon",
		"equilibrium", "oxidation", "reduction", "electrochemistry", "polymer",
	}},
	{"physics", []string{
		"force", "velocity", "acceleration", "momentum", "energy", "work",
		"power", "wave", "optics", "electric", "magnetic", "circuit", "current",
		"thermodynamics", "projectile", "gravitation", "friction",
	}},
	{"english", []string{
		"grammar", "tense", "sentence", "vocabulary", "synonym", "antonym",
		"preposition", "comprehension", "punctuation", "clause",
	}},
	{"logic", []string{
		"syllogism", "analogy", "series completion", "critical thinking",
		"logical reasoning", "deduction", "premise", "conclusion",
	}},
}

// DetectSubject runs a keyword-frequency heuristic over the fixed table and
// returns the best-matching subject, or "" when nothing matches.
func DetectSubject(query string) string {
	q := strings.ToLower(query)

	best := ""
	bestHits := 0
	for _, entry := range subjectTable {
		hits := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(q, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = entry.Subject
			bestHits = hits
		}
	}
	return best
}
