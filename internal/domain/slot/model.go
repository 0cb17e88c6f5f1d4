package slot

import (
	"time"

	"palestra/internal/domain/booking"
)

// Operating window and sampling constants. The gym floor is bookable between
// 06:00 and 23:00 in fixed 30-minute slots; availability is computed over a
// rolling look-ahead horizon.
const (
	OpeningHour        = 6
	ClosingHour        = 23
	Duration           = 30 * time.Minute
	DefaultHorizonDays = 14
)

// SlotsPerDay is the number of 30-minute slots in the operating window.
const SlotsPerDay = (ClosingHour - OpeningHour) * 2

// Status classifies a slot's (or day's) occupancy against capacity.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPartial   Status = "partial"
	StatusFull      Status = "full"
)

// OccupancyReading is the occupancy of one slot, derived entirely from
// booking overlap. Capacity is exogenous configuration.
type OccupancyReading struct {
	SlotStart time.Time
	SlotEnd   time.Time
	Count     int
	Capacity  int
	Status    Status
}

// DayAvailability groups one day's slot readings with the whole-day status.
type DayAvailability struct {
	Date   string // YYYY-MM-DD
	Slots  []OccupancyReading
	Status Status
}

// Occupancy counts bookings overlapping the half-open interval
// [slotStart, slotEnd). A booking ending exactly at slotStart or starting
// exactly at slotEnd is not counted. Bookings without a usable interval are
// skipped.
// PRE: none
// POST: pure function of its inputs; no side effects
func Occupancy(bookings []booking.Booking, slotStart, slotEnd time.Time) int {
	count := 0
	for i := range bookings {
		if !bookings[i].HasValidInterval() {
			continue
		}
		if bookings[i].Overlaps(slotStart, slotEnd) {
			count++
		}
	}
	return count
}

// Classify maps an occupancy count to a status given the configured capacity.
// The classification is stable: same inputs always produce the same status.
func Classify(count, capacity int) Status {
	switch {
	case count >= capacity:
		return StatusFull
	case count > 0:
		return StatusPartial
	default:
		return StatusAvailable
	}
}

// DayStatus aggregates slot readings into a whole-day status: FULL only if
// every slot is FULL, PARTIAL if any slot is non-AVAILABLE, else AVAILABLE.
func DayStatus(slots []OccupancyReading) Status {
	if len(slots) == 0 {
		return StatusAvailable
	}
	allFull := true
	anyOccupied := false
	for _, s := range slots {
		if s.Status != StatusFull {
			allFull = false
		}
		if s.Status != StatusAvailable {
			anyOccupied = true
		}
	}
	if allFull {
		return StatusFull
	}
	if anyOccupied {
		return StatusPartial
	}
	return StatusAvailable
}

// DayGrid computes occupancy readings for every slot of one calendar day.
// The day is taken from `day`'s date in its own location.
func DayGrid(bookings []booking.Booking, capacity int, day time.Time) []OccupancyReading {
	year, month, date := day.Date()
	readings := make([]OccupancyReading, 0, SlotsPerDay)
	for hour := OpeningHour; hour < ClosingHour; hour++ {
		for minute := 0; minute < 60; minute += 30 {
			start := time.Date(year, month, date, hour, minute, 0, 0, day.Location())
			end := start.Add(Duration)
			count := Occupancy(bookings, start, end)
			readings = append(readings, OccupancyReading{
				SlotStart: start,
				SlotEnd:   end,
				Count:     count,
				Capacity:  capacity,
				Status:    Classify(count, capacity),
			})
		}
	}
	return readings
}

// BuildGrid computes the full availability grid: one DayAvailability per day
// for `days` days starting at `from`'s date.
// PRE: days >= 0
// POST: returns days entries, each with SlotsPerDay readings
func BuildGrid(bookings []booking.Booking, capacity int, from time.Time, days int) []DayAvailability {
	grid := make([]DayAvailability, 0, days)
	for d := 0; d < days; d++ {
		day := from.AddDate(0, 0, d)
		slots := DayGrid(bookings, capacity, day)
		grid = append(grid, DayAvailability{
			Date:   day.Format("2006-01-02"),
			Slots:  slots,
			Status: DayStatus(slots),
		})
	}
	return grid
}
