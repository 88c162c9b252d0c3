package submission

import "regexp"

var (
	monthPeriod   = regexp.MustCompile(`^20[0-9]{2}-(0[1-9]|1[0-2])$`)
	quarterPeriod = regexp.MustCompile(`^Q[1-4]-[0-9]{4}$`)
)

// ValidPeriod accepts YYYY-MM (years 2000-2099) or Qn-YYYY.
func ValidPeriod(p string) bool {
	return monthPeriod.MatchString(p) || quarterPeriod.MatchString(p)
}
