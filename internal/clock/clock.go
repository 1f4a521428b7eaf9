// Package clock computes delay-adjusted display times.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Shift moves an "HH:MM" time of day forward by delayMinutes, wrapping past
// midnight with no date carry (the record does not model day rollover).
// Seconds in the input are ignored. Negative delays and unparseable times
// return the input unchanged. Output is always zero-padded "HH:MM".
func Shift(timeOfDay string, delayMinutes int) string {
	h, m, ok := parse(timeOfDay)
	if !ok || delayMinutes < 0 {
		return timeOfDay
	}
	total := (h*60 + m + delayMinutes) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ShiftText is Shift for delay values arriving as raw form input.
// Non-numeric text is treated as zero delay.
func ShiftText(timeOfDay, delayMinutes string) string {
	n, err := strconv.Atoi(strings.TrimSpace(delayMinutes))
	if err != nil {
		n = 0
	}
	return Shift(timeOfDay, n)
}

func parse(timeOfDay string) (h, m int, ok bool) {
	parts := strings.Split(timeOfDay, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
