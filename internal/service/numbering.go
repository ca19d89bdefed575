package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-shoeroom/internal/repository"
)

const (
	invoicePrefix = "FAC"
	// firstInvoiceBase is the value the first invoice number is issued after.
	firstInvoiceBase int64 = 1000
)

func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%s-%d", invoicePrefix, n)
}

// ParseInvoiceNumber reads the numeric suffix after the last hyphen.
func ParseInvoiceNumber(s string) (int64, bool) {
	i := strings.LastIndex(s, "-")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// latestInvoiceSeed seeds the invoice counter from the most recent invoice,
// so numbering continues where an existing data set left off.
func latestInvoiceSeed(invoices repository.InvoiceRepository) repository.SeedFunc {
	return func(ctx context.Context) (int64, error) {
		latest, err := invoices.FindLatest(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return firstInvoiceBase, nil
		}
		if err != nil {
			return 0, err
		}
		if n, ok := ParseInvoiceNumber(latest.InvoiceNumber); ok {
			return n, nil
		}
		if latest.Sequence > 0 {
			return latest.Sequence, nil
		}
		return firstInvoiceBase, nil
	}
}
