package report

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/categories"
	"github.com/tallyhq/tally/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(amount string, c model.Category, year int, month time.Month, day int) model.Expense {
	return model.Expense{
		ID:       c.String() + amount,
		Amount:   dec(amount),
		Category: c,
		Date:     time.Date(year, month, day, 10, 0, 0, 0, time.UTC),
	}
}

func scenario() []model.Expense {
	return []model.Expense{
		expense("100", "Food", 2025, time.February, 1),
		expense("50", "Transportation", 2025, time.February, 15),
		expense("200", "Food", 2025, time.March, 1),
	}
}

// randomExpenses builds a deterministic pseudo-random snapshot.
func randomExpenses(seed uint64, n int) []model.Expense {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cats := categories.Default()
	out := make([]model.Expense, n)
	for i := range out {
		out[i] = model.Expense{
			ID:       string(rune('a' + i%26)),
			Amount:   decimal.New(r.Int64N(100000)+1, -2),
			Category: model.Category(cats[r.IntN(len(cats))]),
			Date:     time.Date(2000+r.IntN(30), time.Month(1+r.IntN(12)), 1+r.IntN(28), r.IntN(24), 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestScenario(t *testing.T) {
	exps := scenario()

	assert.True(t, Total(exps).Equal(dec("350")), "total")
	assert.True(t, TotalByCategory(exps, "Food").Equal(dec("300")), "food")

	byMonth := TotalByMonth(exps)
	require.Len(t, byMonth, 2)
	assert.True(t, byMonth["2025-02"].Equal(dec("150")))
	assert.True(t, byMonth["2025-03"].Equal(dec("200")))

	byMonthCat := TotalByMonthAndCategory(exps)
	require.Len(t, byMonthCat, 2)
	require.Len(t, byMonthCat["2025-02"], 2)
	require.Len(t, byMonthCat["2025-03"], 1)
	assert.True(t, byMonthCat["2025-02"]["Food"].Equal(dec("100")))
	assert.True(t, byMonthCat["2025-02"]["Transportation"].Equal(dec("50")))
	assert.True(t, byMonthCat["2025-03"]["Food"].Equal(dec("200")))
}

func TestEmpty(t *testing.T) {
	assert.True(t, Total(nil).IsZero())
	assert.True(t, TotalByCategory(nil, "Food").IsZero())
	assert.Empty(t, TotalByMonth(nil))
	assert.Empty(t, TotalByMonthAndCategory(nil))
}

func TestTotalByCategory_NoMatch(t *testing.T) {
	exps := scenario()
	assert.True(t, TotalByCategory(exps, "Entertainment").IsZero())
	assert.True(t, TotalByCategory(exps, "Nonexistent").IsZero())
}

func TestTotal_OrderInvariant(t *testing.T) {
	for seed := range uint64(20) {
		exps := randomExpenses(seed, 40)
		want := decimal.Zero
		for _, e := range exps {
			want = want.Add(e.Amount)
		}
		assert.True(t, Total(exps).Equal(want), "seed %d", seed)

		shuffled := slices.Clone(exps)
		r := rand.New(rand.NewPCG(seed, 1))
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.True(t, Total(shuffled).Equal(want), "seed %d shuffled", seed)

		byMonth, shuffledByMonth := TotalByMonth(exps), TotalByMonth(shuffled)
		require.Len(t, shuffledByMonth, len(byMonth))
		for k, v := range byMonth {
			assert.True(t, v.Equal(shuffledByMonth[k]), "seed %d month %s", seed, k)
		}
	}
}

func TestPartitions(t *testing.T) {
	for seed := range uint64(20) {
		exps := randomExpenses(seed, 60)
		total := Total(exps)

		byCat := decimal.Zero
		for _, c := range categories.Default() {
			byCat = byCat.Add(TotalByCategory(exps, model.Category(c)))
		}
		assert.True(t, byCat.Equal(total), "seed %d: categories %s != total %s", seed, byCat, total)

		byMonth := decimal.Zero
		for _, v := range TotalByMonth(exps) {
			byMonth = byMonth.Add(v)
		}
		assert.True(t, byMonth.Equal(total), "seed %d: months %s != total %s", seed, byMonth, total)

		double := decimal.Zero
		for _, inner := range TotalByMonthAndCategory(exps) {
			for _, v := range inner {
				double = double.Add(v)
			}
		}
		assert.True(t, double.Equal(total), "seed %d: month x category %s != total %s", seed, double, total)
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), "2025-02"},
		{time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), "2025-12"},
		{time.Date(999, 1, 1, 0, 0, 0, 0, time.UTC), "0999-01"},
		{time.Date(2025, 3, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600)), "2025-03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthKey(tt.t))
	}
}

func TestMonthKey_LexicographicIsChronological(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 2000 {
		a := time.Date(2000+r.IntN(100), time.Month(1+r.IntN(12)), 1+r.IntN(28), 0, 0, 0, 0, time.UTC)
		b := time.Date(2000+r.IntN(100), time.Month(1+r.IntN(12)), 1+r.IntN(28), 0, 0, 0, 0, time.UTC)

		ka, kb := MonthKey(a), MonthKey(b)
		ma := a.Year()*12 + int(a.Month())
		mb := b.Year()*12 + int(b.Month())
		switch {
		case ma < mb:
			assert.Less(t, ka, kb)
		case ma > mb:
			assert.Greater(t, ka, kb)
		default:
			assert.Equal(t, ka, kb)
		}
	}
}

func TestSortedKeys(t *testing.T) {
	byMonth := map[string]decimal.Decimal{"2025-10": {}, "2024-12": {}, "2025-02": {}}
	assert.Equal(t, []string{"2024-12", "2025-02", "2025-10"}, SortedMonths(byMonth))

	byCat := map[model.Category]decimal.Decimal{"Transportation": {}, "Food": {}, "Housing & Utilities": {}}
	assert.Equal(t, []model.Category{"Food", "Housing & Utilities", "Transportation"}, SortedCategories(byCat))
}

func TestAggregates_DoNotMutateInput(t *testing.T) {
	exps := scenario()
	before := slices.Clone(exps)

	Total(exps)
	TotalByCategory(exps, "Food")
	TotalByMonth(exps)
	TotalByMonthAndCategory(exps)
	Build(exps, categories.MustNew(categories.Default()).All())

	require.Len(t, exps, len(before))
	for i := range before {
		assert.True(t, before[i].Equal(exps[i]))
	}
}
