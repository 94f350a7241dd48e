// Package random provides utilities for generating random strings and codes.
package random

import (
	"crypto/rand"
	"math/big"
)

// CodeAlphabet is the default alphabet for verification codes: uppercase
// letters and digits, matching what users are asked to type back.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the default verification code length.
const CodeLength = 6

var (
	numSeq   [10]rune
	lowerSeq [26]rune
	upperSeq [26]rune
	allSeq   [62]rune
)

func init() {
	for i := 0; i < 10; i++ {
		numSeq[i] = rune('0' + i)
	}
	for i := 0; i < 26; i++ {
		lowerSeq[i] = rune('a' + i)
		upperSeq[i] = rune('A' + i)
	}

	copy(allSeq[:], numSeq[:])
	copy(allSeq[len(numSeq):], lowerSeq[:])
	copy(allSeq[len(numSeq)+len(lowerSeq):], upperSeq[:])
}

// Code generates a string of length n drawn independently and uniformly from
// alphabet, with repetition allowed. No uniqueness guarantee against other
// outstanding codes.
func Code(n int, alphabet string) string {
	chars := []rune(alphabet)
	runes := make([]rune, n)
	for i := 0; i < n; i++ {
		runes[i] = chars[Num(len(chars))]
	}
	return string(runes)
}

// VerificationCode generates a code with the default length and alphabet.
func VerificationCode() string {
	return Code(CodeLength, CodeAlphabet)
}

// Seq generates a random alphanumeric string of length n (numbers, lowercase
// and uppercase letters). Used for secrets rather than human-typed codes.
func Seq(n int) string {
	runes := make([]rune, n)
	for i := 0; i < n; i++ {
		runes[i] = allSeq[Num(len(allSeq))]
	}
	return string(runes)
}

// Num generates a random integer between 0 and n-1.
func Num(n int) int {
	bn := big.NewInt(int64(n))
	r, err := rand.Int(rand.Reader, bn)
	if err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return int(r.Int64())
}
