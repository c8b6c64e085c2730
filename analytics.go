package flagship

import (
	"time"

	"github.com/etnz/flagship/date"
)

// Bucket is the profit made over one calendar period.
type Bucket struct {
	Label  string     `json:"name"`
	Range  date.Range `json:"-"`
	Profit Money      `json:"profit"`
	Sales  int        `json:"sales"`
}

// MonthlyProfit returns twelve buckets, January to December of the year of
// now, with the profit of the completed sales made each month.
func MonthlyProfit(st State, now time.Time) []Bucket {
	return profit(st, now, date.Yearly, date.Monthly)
}

// DailyProfit returns one bucket per day of the month of now.
func DailyProfit(st State, now time.Time) []Bucket {
	return profit(st, now, date.Monthly, date.Daily)
}

// profit splits the period span containing now into buckets of size each.
func profit(st State, now time.Time, span, each date.Period) []Bucket {
	ranges := date.NewRange(date.Of(now), span).Split(each)
	buckets := make([]Bucket, len(ranges))
	for i, r := range ranges {
		buckets[i] = Bucket{Label: each.Label(r.From), Range: r}
	}
	fill(st, now.Location(), buckets)
	return buckets
}

// fill adds each completed sale's profit to the bucket containing its day,
// taken in loc.
func fill(st State, loc *time.Location, buckets []Bucket) {
	prices := purchasePrices(st.Devices)
	for _, s := range st.Sales {
		if s.Status != Completed {
			continue
		}
		day := date.Of(s.Date.In(loc))
		for i := range buckets {
			if buckets[i].Range.Contains(day) {
				buckets[i].Profit = buckets[i].Profit.Add(saleProfit(s, prices))
				buckets[i].Sales++
				break
			}
		}
	}
}
