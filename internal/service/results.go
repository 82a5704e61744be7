package service

import (
	"math"
	"sort"
	"strconv"

	"planning_poker/internal/models"
)

// Consensus returns the value backed by a strict majority of the
// votes, ignoring unsure and break votes. The second return is false
// when no value reaches a strict majority, including when nothing
// remains after the sentinels are excluded.
//
// Ties between equal-count groups are broken towards the smallest
// value in lexicographic order, so the result never depends on map
// iteration order.
func Consensus(votes []string) (string, bool) {
	counts := make(map[string]int)
	considered := 0
	for _, v := range votes {
		if v == models.VoteUnsure || v == models.VoteBreak {
			continue
		}
		counts[v]++
		considered++
	}
	if considered == 0 {
		return "", false
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	best := ""
	bestCount := 0
	for _, v := range values {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}

	if bestCount*2 > considered {
		return best, true
	}
	return "", false
}

// Average returns the mean of the numeric votes rounded to two
// decimals, ignoring break votes and any value that does not parse as
// a number. It returns nil when nothing parsed.
func Average(votes []string) *float64 {
	sum := 0.0
	n := 0
	for _, v := range votes {
		if v == models.VoteBreak {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return nil
	}

	avg := math.Round(sum/float64(n)*100) / 100
	return &avg
}

// CountBreakVotes counts how many players asked for a break
func CountBreakVotes(votes []string) int {
	n := 0
	for _, v := range votes {
		if v == models.VoteBreak {
			n++
		}
	}
	return n
}
