package records

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sumRangePattern matches a contiguous column-B SUM like "=SUM(B5:B9)",
// tolerating whitespace and case.
var sumRangePattern = regexp.MustCompile(`(?i)=\s*SUM\(B(\d+):B(\d+)\)`)

// bumpSumRange extends a SUM formula's end bound by one row.
//
// Precondition: formula is the raw cell content of the total row's hours
// cell, read with formula rendering. Postcondition: if the cell is a formula
// matching SUM(B<start>:B<end>), the result is "=SUM(B<start>:B<end+1>)" and
// ok is true; in every other case the formula is returned unchanged and ok
// is false, meaning no write should happen.
func bumpSumRange(formula string) (string, bool) {
	if !strings.HasPrefix(formula, "=") {
		return formula, false
	}

	match := sumRangePattern.FindStringSubmatch(formula)
	if match == nil {
		return formula, false
	}

	start, err := strconv.Atoi(match[1])
	if err != nil {
		return formula, false
	}
	end, err := strconv.Atoi(match[2])
	if err != nil {
		return formula, false
	}

	return fmt.Sprintf("=SUM(B%d:B%d)", start, end+1), true
}
