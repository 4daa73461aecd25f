package utils

import (
	"fmt"
	"time"
)

// DateLayout is the compact yymmdd layout used for trading dates
// throughout the store (e.g. 180101 for 2018-01-01).
const DateLayout = "060102"

func ParseTradingDate(date int) (time.Time, error) {
	t, err := time.Parse(DateLayout, fmt.Sprintf("%06d", date))
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseTradingDate: invalid date %d: %w", date, err)
	}

	return t, nil
}

func FormatTradingDate(t time.Time) int {
	year, month, day := t.Date()
	return (year%100)*10000 + int(month)*100 + day
}

// AddDays shifts a yymmdd trading date by n calendar days.
func AddDays(date int, n int) (int, error) {
	t, err := ParseTradingDate(date)
	if err != nil {
		return 0, err
	}

	return FormatTradingDate(t.AddDate(0, 0, n)), nil
}

func IsWeekend(date int) (bool, error) {
	t, err := ParseTradingDate(date)
	if err != nil {
		return false, err
	}

	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday, nil
}

// DateSpan expands an inclusive [startDate, endDate] window into the
// full list of calendar dates, weekends included.
func DateSpan(startDate, endDate int) ([]int, error) {
	start, err := ParseTradingDate(startDate)
	if err != nil {
		return nil, err
	}

	end, err := ParseTradingDate(endDate)
	if err != nil {
		return nil, err
	}

	var span []int
	for !start.After(end) {
		span = append(span, FormatTradingDate(start))
		start = start.AddDate(0, 0, 1)
	}

	return span, nil
}

// HMSToSeconds converts "HH:MM:SS" to seconds since midnight.
func HMSToSeconds(hms string) (int, error) {
	var hours, minutes, seconds int
	if _, err := fmt.Sscanf(hms, "%d:%d:%d", &hours, &minutes, &seconds); err != nil {
		return 0, fmt.Errorf("HMSToSeconds: invalid time %q: %w", hms, err)
	}

	if hours < 0 || hours > 24 {
		return 0, fmt.Errorf("HMSToSeconds: in %q hour=%d is not valid", hms, hours)
	}

	if minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("HMSToSeconds: in %q minute=%d is not valid", hms, minutes)
	}

	if seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("HMSToSeconds: in %q second=%d is not valid", hms, seconds)
	}

	return hours*3600 + minutes*60 + seconds, nil
}

// SecondsToHMS converts seconds since midnight to "HH:MM:SS".
func SecondsToHMS(seconds int) (string, error) {
	if seconds < 0 || seconds > 86399 {
		return "", fmt.Errorf("SecondsToHMS: %d is out of range", seconds)
	}

	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60), nil
}
