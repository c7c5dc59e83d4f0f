// Package currency converts amounts into the canonical currency and decides
// which currency codes are accepted. A live rate service is preferred; when
// it fails, a bundled rate table and ISO code list take over so that an
// upstream outage costs accuracy rather than availability.
package currency

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pennywise/internal/logger"
)

// ErrUnsupportedCurrency is returned for codes that are malformed, not in the
// supported list, or not convertible by any available source.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// DefaultCodesTTL is how long a live supported-currency list is trusted.
const DefaultCodesTTL = 24 * time.Hour

// RateSource performs live conversions and lists supported currencies.
type RateSource interface {
	Convert(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, error)
	SupportedCodes(ctx context.Context, base string) ([]string, error)
}

// CodeCache shares a fetched supported-currency list between processes.
type CodeCache interface {
	GetCodes(ctx context.Context, base string) ([]string, bool, error)
	SetCodes(ctx context.Context, base string, codes []string, ttl time.Duration) error
}

// Option configures a Converter.
type Option func(*Converter)

// WithCodeCache shares live currency lists through cache.
func WithCodeCache(cache CodeCache) Option {
	return func(c *Converter) { c.cache = cache }
}

// WithCodesTTL overrides DefaultCodesTTL.
func WithCodesTTL(ttl time.Duration) Option {
	return func(c *Converter) {
		if ttl > 0 {
			c.codesTTL = ttl
		}
	}
}

// Converter normalizes amounts to a single canonical currency.
type Converter struct {
	canonical string
	source    RateSource // nil means fallback table only
	cache     CodeCache
	codesTTL  time.Duration
	now       func() time.Time

	mu            sync.RWMutex
	codes         map[string]bool
	codesLoadedAt time.Time
}

// NewConverter creates a Converter for the given canonical currency.
func NewConverter(canonical string, source RateSource, opts ...Option) *Converter {
	c := &Converter{
		canonical: strings.ToUpper(canonical),
		source:    source,
		codesTTL:  DefaultCodesTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Canonical returns the canonical currency code (e.g. "USD").
func (c *Converter) Canonical() string {
	return c.canonical
}

// NeedsConversion reports whether code differs from the canonical currency.
func (c *Converter) NeedsConversion(code string) bool {
	return strings.ToUpper(code) != c.canonical
}

// Normalize converts amount from code into the canonical currency, rounded to
// 2 decimal places. Canonical amounts are returned unchanged. Live lookup
// failures are logged and answered from the fallback table; only a code the
// table cannot convert is an error.
func (c *Converter) Normalize(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	from := strings.ToUpper(strings.TrimSpace(code))
	if !c.NeedsConversion(from) {
		return amount, nil
	}

	if c.source != nil {
		converted, err := c.source.Convert(ctx, from, c.canonical, amount)
		if err == nil {
			return converted.Round(2), nil
		}
		logger.Get().Warnw("live rate lookup failed, using fallback table",
			"from", from,
			"to", c.canonical,
			"amount", amount.String(),
			"error", err,
		)
	}

	return c.fallbackConvert(amount, from)
}

func (c *Converter) fallbackConvert(amount decimal.Decimal, from string) (decimal.Decimal, error) {
	fromRate, ok := fallbackUSDRates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate available for %s", ErrUnsupportedCurrency, from)
	}
	toRate, ok := fallbackUSDRates[c.canonical]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate available for canonical currency %s", ErrUnsupportedCurrency, c.canonical)
	}
	return amount.Mul(fromRate).DivRound(toRate, 8).Round(2), nil
}

// ValidateCode checks that code is a 3-letter code the system accepts.
func (c *Converter) ValidateCode(ctx context.Context, code string) error {
	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w: %q is not a 3-letter uppercase code", ErrUnsupportedCurrency, code)
	}
	if code == c.canonical {
		return nil
	}
	if !c.supportedSet(ctx)[code] {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return nil
}

// SupportedCodes returns the currently accepted codes, sorted.
func (c *Converter) SupportedCodes(ctx context.Context) []string {
	set := c.supportedSet(ctx)
	codes := make([]string, 0, len(set)+1)
	for code := range set {
		codes = append(codes, code)
	}
	if !set[c.canonical] {
		codes = append(codes, c.canonical)
	}
	sort.Strings(codes)
	return codes
}

// supportedSet returns the memoized live list, then the shared cache, then a
// fresh live fetch, and finally the static list. Only live lists are memoized.
func (c *Converter) supportedSet(ctx context.Context) map[string]bool {
	c.mu.RLock()
	if c.codes != nil && c.now().Sub(c.codesLoadedAt) < c.codesTTL {
		codes := c.codes
		c.mu.RUnlock()
		return codes
	}
	c.mu.RUnlock()

	log := logger.Get()

	if c.cache != nil {
		list, ok, err := c.cache.GetCodes(ctx, c.canonical)
		if err != nil {
			log.Warnw("currency list cache read failed", "error", err)
		} else if ok && len(list) > 0 {
			return c.remember(list)
		}
	}

	if c.source != nil {
		list, err := c.source.SupportedCodes(ctx, c.canonical)
		if err == nil && len(list) > 0 {
			if c.cache != nil {
				if err := c.cache.SetCodes(ctx, c.canonical, list, c.codesTTL); err != nil {
					log.Warnw("currency list cache write failed", "error", err)
				}
			}
			return c.remember(list)
		}
		log.Warnw("live currency list unavailable, using static list", "error", err)
	}

	return staticCodes
}

func (c *Converter) remember(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, code := range list {
		set[strings.ToUpper(code)] = true
	}
	c.mu.Lock()
	c.codes = set
	c.codesLoadedAt = c.now()
	c.mu.Unlock()
	return set
}
