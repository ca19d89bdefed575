package model

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// SizeStock is one entry of a product's ledger.
type SizeStock struct {
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity"`
}

// SizeKey extracts the numeric part of a size label ("9.5" -> 9.5, "EU42" -> 42).
// Labels without numeric content sort last.
func SizeKey(size string) float64 {
	var b strings.Builder
	for _, r := range size {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return math.Inf(1)
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return math.Inf(1)
	}
	return n
}

// LessSize orders by numeric key, then lexicographically.
func LessSize(a, b string) bool {
	ka, kb := SizeKey(a), SizeKey(b)
	if ka != kb {
		return ka < kb
	}
	return a < b
}

func SortSizes(sizes []SizeStock) {
	sort.SliceStable(sizes, func(i, j int) bool {
		return LessSize(sizes[i].Size, sizes[j].Size)
	})
}

func SortSizeLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return LessSize(labels[i], labels[j])
	})
}

// NormalizeSizes canonicalizes a size list that replaces a ledger wholesale:
// labels are trimmed, duplicates collapse with the last entry winning,
// non-positive quantities are dropped and the result is sorted.
// NormalizeSizes(NormalizeSizes(x)) == NormalizeSizes(x).
func NormalizeSizes(sizes []SizeStock) []SizeStock {
	latest := make(map[string]int, len(sizes))
	order := make([]string, 0, len(sizes))
	for _, s := range sizes {
		label := strings.TrimSpace(s.Size)
		if label == "" {
			continue
		}
		if _, seen := latest[label]; !seen {
			order = append(order, label)
		}
		latest[label] = s.Quantity
	}

	out := make([]SizeStock, 0, len(order))
	for _, label := range order {
		if q := latest[label]; q > 0 {
			out = append(out, SizeStock{Size: label, Quantity: q})
		}
	}
	SortSizes(out)
	return out
}

// NormalizeSizeLabels trims, deduplicates and sorts a legacy label list.
func NormalizeSizeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	SortSizeLabels(out)
	return out
}

func TotalStock(sizes []SizeStock) int {
	total := 0
	for _, s := range sizes {
		total += s.Quantity
	}
	return total
}
