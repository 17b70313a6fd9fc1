//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package grouping

import (
	"strconv"
	"time"

	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
)

const secondsPerDay = 24 * 60 * 60

func unitSeconds(unit aggregation.DateUnit) int64 {
	switch unit {
	case aggregation.DateUnitSecond:
		return 1
	case aggregation.DateUnitMinute:
		return 60
	case aggregation.DateUnitHour:
		return 60 * 60
	default:
		return secondsPerDay
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// wallSeconds is the wall clock of a date in loc, counted in seconds since
// the epoch as if loc was UTC.
func wallSeconds(millis int64, loc *time.Location) int64 {
	_, offset := time.UnixMilli(millis).In(loc).Zone()
	return floorDiv(millis, 1000) + int64(offset)
}

// Date buckets dates by the wall clock second, minute, hour or day of the
// configured zone. Week, month, quarter and year are bucketed by day and
// named after the period the day belongs to, groups of one period are
// merged once the result was extracted.
type Date struct {
	column segment.NumericColumn
	unit   aggregation.DateUnit
	step   int64
	loc    *time.Location
	first  int64
	size   int
}

// NewDate scans the column once to find the range of periods.
func NewDate(column segment.NumericColumn, docCount int, unit aggregation.DateUnit,
	loc *time.Location, maxBuckets int,
) (*Date, error) {
	c := &Date{column: column, unit: unit, step: unitSeconds(unit), loc: loc}

	var lowest, highest int64
	found := false
	for doc := 0; doc < docCount; doc++ {
		for slot := 0; slot < column.ValueCount(doc); slot++ {
			raw, ok := column.Value(doc, slot)
			if !ok {
				continue
			}
			key := c.key(raw)
			if !found || key < lowest {
				lowest = key
			}
			if !found || key > highest {
				highest = key
			}
			found = true
		}
	}
	if !found {
		return c, nil
	}
	if highest-lowest >= int64(maxBuckets) {
		return nil, enterrors.NewConfigurationError(
			"date range exceeds %d buckets of %s", maxBuckets, unit)
	}
	c.first, c.size = lowest, int(highest-lowest)+1
	return c, nil
}

func (c *Date) key(millis int64) int64 {
	return floorDiv(wallSeconds(millis, c.loc), c.step)
}

func (c *Date) Size() int {
	return c.size
}

func (c *Date) Collect(doc int, emit func(bucket int)) {
	for slot := 0; slot < c.column.ValueCount(doc); slot++ {
		if raw, ok := c.column.Value(doc, slot); ok {
			emit(int(c.key(raw) - c.first))
		}
	}
}

// start returns the wall clock start of the period bucket belongs to.
func (c *Date) start(bucket int) time.Time {
	t := time.Unix((c.first+int64(bucket))*c.step, 0).UTC()
	switch c.unit {
	case aggregation.DateUnitWeek:
		return t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
	case aggregation.DateUnitMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case aggregation.DateUnitQuarter:
		return time.Date(t.Year(), (t.Month()-1)/3*3+1, 1, 0, 0, 0, 0, time.UTC)
	case aggregation.DateUnitYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

func (c *Date) Name(bucket int) string {
	start := c.start(bucket)
	switch c.unit {
	case aggregation.DateUnitSecond:
		return start.Format("2006-01-02 15:04:05")
	case aggregation.DateUnitMinute:
		return start.Format("2006-01-02 15:04")
	case aggregation.DateUnitHour:
		return start.Format("2006-01-02 15:00")
	case aggregation.DateUnitMonth:
		return start.Format("2006-01")
	case aggregation.DateUnitQuarter:
		return start.Format("2006") + "-Q" + strconv.Itoa(int(start.Month()-1)/3+1)
	case aggregation.DateUnitYear:
		return start.Format("2006")
	default:
		return start.Format(time.DateOnly)
	}
}

func (c *Date) ID(bucket int) aggregation.GroupID {
	return aggregation.IntID(c.start(bucket).Unix())
}

func (c *Date) ReturnEmptyGroups() bool {
	return false
}

// DatePart buckets the first date of a document by a calendar component.
type DatePart struct {
	column segment.NumericColumn
	part   aggregation.DatePart
	loc    *time.Location
}

func NewDatePart(column segment.NumericColumn, part aggregation.DatePart, loc *time.Location) *DatePart {
	return &DatePart{column: column, part: part, loc: loc}
}

func (c *DatePart) Size() int {
	switch c.part {
	case aggregation.DatePartMinuteOfHour:
		return 60
	case aggregation.DatePartHourOfDay:
		return 24
	case aggregation.DatePartDayOfMonth:
		return 32
	case aggregation.DatePartMonthOfYear:
		return 12
	default:
		return 10000
	}
}

func (c *DatePart) Collect(doc int, emit func(bucket int)) {
	raw, ok := c.column.Value(doc, 0)
	if !ok {
		return
	}
	t := time.UnixMilli(raw).In(c.loc)
	switch c.part {
	case aggregation.DatePartMinuteOfHour:
		emit(t.Minute())
	case aggregation.DatePartHourOfDay:
		emit(t.Hour())
	case aggregation.DatePartDayOfMonth:
		emit(t.Day())
	case aggregation.DatePartMonthOfYear:
		emit(int(t.Month()) - 1)
	default:
		if year := t.Year(); year >= 0 && year < 10000 {
			emit(year)
		}
	}
}

func (c *DatePart) Name(bucket int) string {
	if c.part == aggregation.DatePartMonthOfYear {
		return time.Month(bucket + 1).String()
	}
	return strconv.Itoa(bucket)
}

func (c *DatePart) ID(bucket int) aggregation.GroupID {
	return aggregation.IntID(bucket)
}

func (c *DatePart) ReturnEmptyGroups() bool {
	return false
}
