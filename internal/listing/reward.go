package listing

import (
	"strconv"
	"strings"
)

// ParseReward returns the largest dollar amount found in a reward label such
// as "$500 - $1,500". Tokens that are not plain digits after stripping "$" and
// "," are ignored. It returns 0 when nothing parses.
func ParseReward(text string) int {
	highest := 0
	for _, token := range strings.Split(text, "-") {
		token = strings.TrimSpace(token)
		token = strings.NewReplacer("$", "", ",", "").Replace(token)
		if !isDigits(token) {
			continue
		}
		amount, err := strconv.Atoi(token)
		if err != nil {
			// overflow
			continue
		}
		if amount > highest {
			highest = amount
		}
	}
	return highest
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
