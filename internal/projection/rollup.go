package projection

import (
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/shopspring/decimal"
)

const (
	granularityTotal = "total"
	granularityDay   = "day"
	granularityMonth = "month"
)

func rollupForGranularity(records []*v1.Record, granularity string, start, end time.Time) []RollupValue {
	switch granularity {
	case granularityDay:
		return rollupBuckets(records, start, end, truncateToDay, func(t time.Time) time.Time {
			return t.AddDate(0, 0, 1)
		})
	case granularityMonth:
		return rollupBuckets(records, start, end, truncateToMonth, func(t time.Time) time.Time {
			return t.AddDate(0, 1, 0)
		})
	default:
		return rollupTotal(records, start, end)
	}
}

// rollupTotal sums all records into a single value for the entire range.
func rollupTotal(records []*v1.Record, start, end time.Time) []RollupValue {
	v := RollupValue{
		WindowStart: start,
		WindowEnd:   end,
		Quantity:    decimal.Zero,
		SalesAmount: decimal.Zero,
	}
	for _, rec := range records {
		v.add(rec)
	}
	return []RollupValue{v}
}

// rollupBuckets groups records into calendar buckets covering [start, end).
// Buckets without records are emitted with zero values.
func rollupBuckets(
	records []*v1.Record,
	start, end time.Time,
	truncate func(time.Time) time.Time,
	next func(time.Time) time.Time,
) []RollupValue {
	buckets := make(map[time.Time]*RollupValue)
	for _, rec := range records {
		key := truncate(rec.Timestamp)
		b, ok := buckets[key]
		if !ok {
			b = &RollupValue{Quantity: decimal.Zero, SalesAmount: decimal.Zero}
			buckets[key] = b
		}
		b.add(rec)
	}

	var results []RollupValue
	for current := truncate(start); current.Before(end); current = next(current) {
		v := RollupValue{Quantity: decimal.Zero, SalesAmount: decimal.Zero}
		if b, ok := buckets[current]; ok {
			v = *b
		}
		v.WindowStart = current
		v.WindowEnd = next(current)
		results = append(results, v)
	}
	return results
}

func (v *RollupValue) add(rec *v1.Record) {
	v.Quantity = v.Quantity.Add(rec.Quantity)
	v.SalesAmount = v.SalesAmount.Add(rec.SalesAmount)
	v.RecordCount++
}

// truncateToDay truncates a timestamp to the start of the day (00:00:00 UTC).
func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// truncateToMonth truncates a timestamp to the first day of its month.
func truncateToMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}
