package service

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	maxInvoiceLength     = 20
	maxDescriptionLength = 255

	// three base-36 digits
	invoiceSuffixSpace = 36 * 36 * 36
)

// InvoiceGenerator resolves the invoice number sent to the gateway.
//
// Generated numbers are prefix + YYMMDDhhmm (UTC) + three random base-36
// characters. Two requests in the same minute collide with probability
// 1/46656; nothing detects it.
type InvoiceGenerator struct {
	prefix string
	now    func() time.Time
	intN   func(n int) int
}

func NewInvoiceGenerator(prefix string) *InvoiceGenerator {
	return &InvoiceGenerator{
		prefix: prefix,
		now:    time.Now,
		intN:   rand.IntN,
	}
}

// Resolve keeps a caller-supplied invoice number (cut to 20 characters) and
// generates one when the caller sent nothing but whitespace.
func (g *InvoiceGenerator) Resolve(supplied string) string {
	if strings.TrimSpace(supplied) != "" {
		return truncate(supplied, maxInvoiceLength)
	}
	return g.Generate()
}

func (g *InvoiceGenerator) Generate() string {
	stamp := g.now().UTC().Format("0601021504")

	suffix := strconv.FormatInt(int64(g.intN(invoiceSuffixSpace)), 36)
	if len(suffix) < 3 {
		suffix = strings.Repeat("0", 3-len(suffix)) + suffix
	}

	return truncate(g.prefix+stamp+suffix, maxInvoiceLength)
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
