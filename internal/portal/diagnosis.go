package portal

import (
	"regexp"
	"strings"

	"claimpilot/internal/driver"
)

// codeShape recognizes option text that starts with something shaped
// like a diagnosis code: a letter, two digits, and an optional decimal
// extension.
var codeShape = regexp.MustCompile(`^[A-Za-z][0-9]{2}(\.[0-9A-Za-z]{1,4})?`)

func optionListDescriptor() driver.Descriptor {
	return driver.Descriptor{Selector: selDiagnosisItem}
}

// CodeStem returns the portion of a code preceding any decimal point;
// it is what the searchable option list is queried with.
func CodeStem(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.Index(code, "."); i >= 0 {
		return code[:i]
	}
	return code
}

// PickDiagnosisOption chooses the best option by descending priority:
//  1. exact case-insensitive match of the full code as a prefix of the
//     option text
//  2. prefix match against the pre-decimal portion
//  3. first option whose text is shaped like a valid code
//  4. first option
//
// This ordering is a data-correctness contract; do not reorder it.
// Returns -1 when options is empty or holds only blank entries.
func PickDiagnosisOption(options []string, code string) int {
	full := strings.ToLower(strings.TrimSpace(code))
	stem := strings.ToLower(CodeStem(code))

	usable := -1
	for i, o := range options {
		if strings.TrimSpace(o) != "" {
			usable = i
			break
		}
	}
	if usable < 0 {
		return -1
	}

	for i, o := range options {
		if full != "" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(o)), full) {
			return i
		}
	}
	for i, o := range options {
		if stem != "" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(o)), stem) {
			return i
		}
	}
	for i, o := range options {
		if codeShape.MatchString(strings.TrimSpace(o)) {
			return i
		}
	}
	return usable
}
