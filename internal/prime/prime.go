// Package prime implements the per-number computation rangefan workers
// perform on a chunk: primality testing by trial division.
package prime

import (
	"fmt"
	"strconv"
)

// IsPrime reports whether n is prime. Numbers below 2 are not prime.
func IsPrime(n int64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := int64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// Primes filters the given numbers down to the primes among them,
// returned as decimal strings in input order.
//
// Negative inputs are a processing fault: the chunk was produced from an
// inclusive non-negative range, so a negative number means the request
// is corrupt and the whole chunk is rejected.
func Primes(numbers []int64) ([]string, error) {
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if n < 0 {
			return nil, fmt.Errorf("negative number %d in chunk", n)
		}
		if IsPrime(n) {
			out = append(out, strconv.FormatInt(n, 10))
		}
	}
	return out, nil
}
