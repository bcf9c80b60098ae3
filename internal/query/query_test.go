package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ip-filter/internal/ipv4_pool"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		kind Kind
		vals []ipv4_pool.Octet
	}{
		{"all", KindAll, nil},
		{" ALL ", KindAll, nil},
		{"prefix:1", KindPrefix, []ipv4_pool.Octet{1}},
		{"prefix:46.70", KindPrefix, []ipv4_pool.Octet{46, 70}},
		{"prefix:1.2.3.4", KindPrefix, []ipv4_pool.Octet{1, 2, 3, 4}},
		{"any:46", KindAny, []ipv4_pool.Octet{46}},
		{"any:0", KindAny, []ipv4_pool.Octet{0}},
	}
	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			q, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, q.Kind)
			assert.Equal(t, tt.vals, q.Values)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		also error
	}{
		{"", nil},
		{"all:1", nil},
		{"prefix", ipv4_pool.ErrPrefixLength},
		{"prefix:", ipv4_pool.ErrMalformedRecord},
		{"prefix:1.2.3.4.5", ipv4_pool.ErrPrefixLength},
		{"prefix:300", ipv4_pool.ErrOutOfRangeOctet},
		{"prefix:1..2", ipv4_pool.ErrMalformedRecord},
		{"any", nil},
		{"any:x", ipv4_pool.ErrMalformedRecord},
		{"any:1.2", ipv4_pool.ErrMalformedRecord},
		{"some:1", nil},
	}
	for _, tt := range cases {
		t.Run(fmt.Sprintf("bad_%q", tt.in), func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.in)
			require.ErrorIs(t, err, ErrInvalidQuery)
			if tt.also != nil {
				assert.ErrorIs(t, err, tt.also)
			}
		})
	}
}

func TestParseAll_Defaults(t *testing.T) {
	t.Parallel()
	qs, err := ParseAll(Defaults)
	require.NoError(t, err)
	require.Len(t, qs, 4)
	assert.Equal(t, []Kind{KindAll, KindPrefix, KindPrefix, KindAny}, []Kind{qs[0].Kind, qs[1].Kind, qs[2].Kind, qs[3].Kind})

	_, err = ParseAll([]string{"all", "nope"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "all", KindAll.String())
	assert.Equal(t, "prefix", KindPrefix.String())
	assert.Equal(t, "any", KindAny.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func sampleStore(t *testing.T) *ipv4_pool.Store {
	t.Helper()
	s := ipv4_pool.NewStore()
	for _, in := range []string{
		"46.70.29.76", "1.87.203.225", "185.46.86.131", "46.70.225.39", "39.46.86.85",
		"1.1.234.8", "185.46.86.131", "46.55.46.98", "222.173.235.246", "5.189.203.46",
	} {
		a, err := ipv4_pool.Parse(in)
		require.NoError(t, err)
		s.Add(a)
	}
	return s
}

func strs(addrs []ipv4_pool.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}

func TestRun_Defaults(t *testing.T) {
	t.Parallel()
	qs, err := ParseAll(Defaults)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 3} {
		res, err := Run(context.Background(), sampleStore(t), qs, workers)
		require.NoError(t, err)
		require.Len(t, res, 4)

		assert.Equal(t, []string{
			"222.173.235.246", "185.46.86.131", "185.46.86.131", "46.70.225.39", "46.70.29.76",
			"46.55.46.98", "39.46.86.85", "5.189.203.46", "1.87.203.225", "1.1.234.8",
		}, strs(res[0].Addrs))
		assert.Equal(t, []string{"1.87.203.225", "1.1.234.8"}, strs(res[1].Addrs))
		assert.Equal(t, []string{"46.70.225.39", "46.70.29.76"}, strs(res[2].Addrs))
		assert.Equal(t, []string{
			"185.46.86.131", "185.46.86.131", "46.70.225.39", "46.70.29.76",
			"46.55.46.98", "39.46.86.85", "5.189.203.46",
		}, strs(res[3].Addrs))
		for i, r := range res {
			assert.Equal(t, qs[i].Raw, r.Query.Raw)
		}
	}
}

func TestRun_EmptyResult(t *testing.T) {
	t.Parallel()
	qs, err := ParseAll([]string{"prefix:9", "any:254"})
	require.NoError(t, err)

	res, err := Run(context.Background(), sampleStore(t), qs, 2)
	require.NoError(t, err)
	assert.Empty(t, res[0].Addrs)
	assert.Empty(t, res[1].Addrs)
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, sampleStore(t), []Query{{Raw: "all", Kind: KindAll}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExec_BadQuery(t *testing.T) {
	t.Parallel()
	_, err := Query{Raw: "prefix:", Kind: KindPrefix}.Exec(sampleStore(t))
	assert.ErrorIs(t, err, ipv4_pool.ErrPrefixLength)

	_, err = Query{Raw: "any:", Kind: KindAny}.Exec(sampleStore(t))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
