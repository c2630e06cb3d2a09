package random

import (
	"math/rand"
	"strconv"
	"time"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetRandomInt returns a random integer with the given digit count.
func GetRandomInt(digits int) int {
	low := 1
	for i := 1; i < digits; i++ {
		low *= 10
	}
	return low + rand.Intn(low*9)
}

// GetNowAndLenRandomString returns the millisecond timestamp followed by
// length random letters. Used for entity uuid suffixes.
func GetNowAndLenRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10)[7:] + string(b)
}
