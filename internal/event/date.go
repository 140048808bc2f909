package event

import (
	"fmt"
	"regexp"
	"strconv"
)

// slashDate matches the only date format agency sources use: M[M]/D[D]/YYYY.
var slashDate = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})/(\d{4})\s*$`)

// NormalizeDate reassembles a source date as YYYY-MM-DD with zero-padded
// month and day. Anything not shaped like M[M]/D[D]/YYYY yields "", which
// drops the row downstream. No calendar validation is performed: "13/40/2026"
// reformats to "2026-13-40" just as the sources' own feeds would round-trip it.
func NormalizeDate(raw string) string {
	m := slashDate.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
}
