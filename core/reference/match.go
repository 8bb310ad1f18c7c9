package reference

import (
	"regexp"
	"strconv"
	"strings"
)

// Free-text matching of spreadsheet values against reference lists.
// Matching is first-match-wins in slice order; adversarial inputs such as
// "Section 1" vs "Section 10" are not disambiguated further.

var (
	digitsRegex = regexp.MustCompile(`\d+`)
	dmyRegex    = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

	gradePrefixes   = []string{"grade ", "g "}
	sectionPrefixes = []string{"section ", "sec ", "s "}
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stripPrefix(s string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(strings.TrimPrefix(s, p))
		}
	}
	return s
}

// MatchGrade resolves free text like "5", "Grade 5" or "G 5" against the grade list.
// A digit run in the text is tried against Grade.Level first, then against names
// containing that number; text without a numeric match falls back to exact then
// substring comparison with a leading "grade "/"g " token stripped.
func MatchGrade(text string, grades []Grade) (Grade, bool) {
	norm := normalize(text)
	if norm == "" {
		return Grade{}, false
	}

	if digits := digitsRegex.FindString(norm); digits != "" {
		if level, err := strconv.Atoi(digits); err == nil {
			for _, g := range grades {
				if g.Level == level {
					return g, true
				}
			}
		}
		for _, g := range grades {
			if strings.Contains(normalize(g.Name), digits) {
				return g, true
			}
		}
	}

	stripped := stripPrefix(norm, gradePrefixes)
	for _, g := range grades {
		if normalize(g.Name) == stripped {
			return g, true
		}
	}
	for _, g := range grades {
		name := normalize(g.Name)
		if strings.Contains(name, stripped) || strings.Contains(stripped, name) {
			return g, true
		}
	}
	return Grade{}, false
}

// MatchSection resolves section text: a leading "section "/"sec "/"s " token is
// stripped, then exact, suffix-containment and substring-containment are tried.
func MatchSection(text string, sections []Section) (Section, bool) {
	norm := stripPrefix(normalize(text), sectionPrefixes)
	if norm == "" {
		return Section{}, false
	}

	for _, s := range sections {
		if normalize(s.Name) == norm {
			return s, true
		}
	}
	for _, s := range sections {
		if strings.HasSuffix(normalize(s.Name), norm) {
			return s, true
		}
	}
	for _, s := range sections {
		name := normalize(s.Name)
		if strings.Contains(name, norm) || strings.Contains(norm, name) {
			return s, true
		}
	}
	return Section{}, false
}

// MatchAcademicYear compares year labels with "-" and "/" separators treated as equivalent.
func MatchAcademicYear(text string, years []AcademicYear) (AcademicYear, bool) {
	norm := strings.ReplaceAll(normalize(text), "/", "-")
	if norm == "" {
		return AcademicYear{}, false
	}
	for _, y := range years {
		if strings.ReplaceAll(normalize(y.Name), "/", "-") == norm {
			return y, true
		}
	}
	return AcademicYear{}, false
}

// NormalizeDate rewrites DD/MM/YYYY to YYYY-MM-DD; any other format passes through unchanged.
func NormalizeDate(text string) string {
	text = strings.TrimSpace(text)
	if m := dmyRegex.FindStringSubmatch(text); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return text
}
