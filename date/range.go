package date

import "iter"

// Range is a span of days, both ends included.
type Range struct{ From, To Date }

// NewRange returns the period p containing d.
func NewRange(d Date, p Period) Range {
	from := p.first(d)
	return Range{From: from, To: p.next(from).Add(-1)}
}

// Contains reports whether day falls within r.
func (r Range) Contains(day Date) bool { return !day.Before(r.From) && !day.After(r.To) }

// Days iterates over every day of r in order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Split cuts r into consecutive periods p. The first and last ones are
// clipped to r.
func (r Range) Split(p Period) []Range {
	var out []Range
	for from := r.From; !from.After(r.To); {
		to := p.next(p.first(from)).Add(-1)
		if to.After(r.To) {
			to = r.To
		}
		out = append(out, Range{From: from, To: to})
		from = to.Add(1)
	}
	return out
}
