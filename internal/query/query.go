package query

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"ip-filter/internal/ipv4_pool"
)

type Kind int

const (
	KindAll Kind = iota
	KindPrefix
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindPrefix:
		return "prefix"
	case KindAny:
		return "any"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var ErrInvalidQuery = errors.New("invalid query")

// Defaults are the demonstration queries run when none are configured.
var Defaults = []string{"all", "prefix:1", "prefix:46.70", "any:46"}

type (
	Query struct {
		Raw    string
		Kind   Kind
		Values []ipv4_pool.Octet
	}
	Result struct {
		Query Query
		Addrs []ipv4_pool.Address
	}
)

// Parse accepts "all", "prefix:<v>[.<v>...]" (1 to 4 octets) and "any:<v>".
func Parse(s string) (Query, error) {
	raw := strings.TrimSpace(s)
	name, arg, hasArg := strings.Cut(raw, ":")
	q := Query{Raw: raw}

	switch strings.ToLower(name) {
	case "all":
		if hasArg {
			return Query{}, fmt.Errorf("%w %q: all takes no argument", ErrInvalidQuery, s)
		}
		q.Kind = KindAll
	case "prefix":
		q.Kind = KindPrefix
		parts := strings.Split(arg, string(ipv4_pool.Delimiter))
		if !hasArg || len(parts) > ipv4_pool.AddressLen {
			return Query{}, fmt.Errorf("%w %q: %w", ErrInvalidQuery, s, ipv4_pool.ErrPrefixLength)
		}
		for _, p := range parts {
			v, err := ipv4_pool.ParseOctet(p)
			if err != nil {
				return Query{}, fmt.Errorf("%w %q: %w", ErrInvalidQuery, s, err)
			}
			q.Values = append(q.Values, v)
		}
	case "any":
		q.Kind = KindAny
		if !hasArg {
			return Query{}, fmt.Errorf("%w %q: any needs a value", ErrInvalidQuery, s)
		}
		v, err := ipv4_pool.ParseOctet(arg)
		if err != nil {
			return Query{}, fmt.Errorf("%w %q: %w", ErrInvalidQuery, s, err)
		}
		q.Values = []ipv4_pool.Octet{v}
	default:
		return Query{}, fmt.Errorf("%w %q: unknown kind %q", ErrInvalidQuery, s, name)
	}

	return q, nil
}

func ParseAll(in []string) ([]Query, error) {
	out := make([]Query, 0, len(in))
	for _, s := range in {
		q, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Exec runs q against a store that is no longer being filled.
func (q Query) Exec(store *ipv4_pool.Store) ([]ipv4_pool.Address, error) {
	switch q.Kind {
	case KindAll:
		return slices.Collect(store.All()), nil
	case KindPrefix:
		return store.FilterPrefix(q.Values)
	case KindAny:
		if len(q.Values) != 1 {
			return nil, fmt.Errorf("%w %q: any needs exactly one value", ErrInvalidQuery, q.Raw)
		}
		return store.FilterAny(q.Values[0]), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, q.Kind)
	}
}

// Run executes queries concurrently, at most workers at a time, and returns
// the results in the order of queries.
func Run(ctx context.Context, store *ipv4_pool.Store, queries []Query, workers int) ([]Result, error) {
	results := make([]Result, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			addrs, err := q.Exec(store)
			if err != nil {
				return fmt.Errorf("query %q: %w", q.Raw, err)
			}
			results[i] = Result{Query: q, Addrs: addrs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
