package bot

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/emryildiz/barberbot/internal/timeutil"
)

// dateLayouts are the accepted explicit date formats, day-first Turkish
// convention plus ISO.
var dateLayouts = []string{"02.01.2006", "2.1.2006", "02-01-2006", "2006-01-02"}

// normalize lowercases with Turkish casing rules so "İptal" matches "iptal".
// strings.EqualFold folds İ to I, not to i, and would miss it.
func normalize(text string) string {
	return strings.ToLowerSpecial(unicode.TurkishCase, strings.TrimSpace(text))
}

func isKeyword(text, keyword string) bool {
	return normalize(text) == keyword
}

// parseDate resolves "bugün", "yarın" or an explicit date to a business-local
// midnight. Relative words are resolved against the business-local today.
func parseDate(text string, now time.Time) (time.Time, bool) {
	switch normalize(text) {
	case "bugün":
		return timeutil.Midnight(now), true
	case "yarın":
		return timeutil.Midnight(now).AddDate(0, 0, 1), true
	}
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, timeutil.Location); err == nil {
			return timeutil.Midnight(t), true
		}
	}
	return time.Time{}, false
}

// parseClock accepts "HH:MM" and "HH.MM" wall-clock input.
func parseClock(text string) (timeutil.TimeOfDay, bool) {
	tod, err := timeutil.ParseTimeOfDay(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return tod, true
}

// parseIndex parses a 1-based menu choice.
func parseIndex(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
