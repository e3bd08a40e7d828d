package utils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// NextSequentialCode returns the code that follows last, keeping prefix and
// padding the number to three digits: "" -> "C001", "C009" -> "C010".
func NextSequentialCode(prefix, last string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, last)
	n, _ := strconv.Atoi(digits)
	return fmt.Sprintf("%s%03d", prefix, n+1)
}
