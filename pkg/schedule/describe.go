package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

var weekdayNames = map[string]string{
	"0": "Sunday", "1": "Monday", "2": "Tuesday", "3": "Wednesday",
	"4": "Thursday", "5": "Friday", "6": "Saturday", "7": "Sunday",
}

var commonPatterns = map[string]string{
	"0 * * * *":  "Every hour",
	"0 0 * * *":  "Every day at midnight",
	"0 2 * * *":  "Every day at 2:00 AM",
	"0 0 * * 0":  "Every Sunday at midnight",
	"0 0 1 * *":  "First day of every month",
}

// DescribeCronExpression produces a short human-readable gloss of a
// 5-field cron expression for display in the UI/API. Known shorthands
// come from commonPatterns; otherwise a description is built from the
// minute, hour and weekday fields, and the raw expression is returned
// when none of those apply — this is cosmetic, not a parser.
func DescribeCronExpression(expr string) string {
	if desc, ok := commonPatterns[expr]; ok {
		return desc
	}

	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return expr
	}
	minute, hour, day, month, weekday := parts[0], parts[1], parts[2], parts[3], parts[4]

	var descParts []string

	if minute == "0" && hour != "*" {
		if h, err := strconv.Atoi(hour); err == nil {
			period := "AM"
			if h >= 12 {
				period = "PM"
			}
			if h > 12 {
				h -= 12
			}
			if h == 0 {
				h = 12
			}
			descParts = append(descParts, fmt.Sprintf("at %d:00 %s", h, period))
		} else {
			descParts = append(descParts, fmt.Sprintf("at hour %s", hour))
		}
	} else if minute != "*" {
		descParts = append(descParts, fmt.Sprintf("at minute %s", minute))
	}

	switch {
	case day == "*" && month == "*" && weekday == "*":
		descParts = append([]string{"Daily"}, descParts...)
	case weekday != "*":
		if name, ok := weekdayNames[weekday]; ok {
			descParts = append([]string{"Every " + name}, descParts...)
		} else {
			descParts = append([]string{"On weekday " + weekday}, descParts...)
		}
	}

	if len(descParts) == 0 {
		return expr
	}
	return strings.Join(descParts, " ")
}
