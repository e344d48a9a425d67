package skill

import (
	"regexp"
	"strconv"
	"strings"
)

// Duration bounds: worktime is booked in quarter-hour steps up to four
// hours.
const (
	minutesStep = 15
	minutesMax  = 4 * 60
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// numberWords covers the counts people actually dictate for worktime.
var numberWords = map[string]float64{
	"один": 1, "одна": 1, "одну": 1,
	"два": 2, "две": 2,
	"три": 3, "четыре": 4, "пять": 5, "шесть": 6,
	"семь": 7, "восемь": 8, "девять": 9, "десять": 10,
	"пятнадцать": 15, "двадцать": 20, "тридцать": 30,
	"сорок": 40, "пятьдесят": 50, "шестьдесят": 60,
	"полтора": 1.5, "полторы": 1.5,
}

// ParseMinutes turns a spoken duration into whole minutes. It accepts
// colloquial Russian ("полчаса", "полтора часа", "два часа",
// "час 15 минут"), digits with units, bare minute counts and H:MM.
// Any unrecognized token fails the whole phrase: a half-understood
// duration must be re-asked, not guessed.
func ParseMinutes(text string) (int, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.ReplaceAll(normalized, "ё", "е")
	if normalized == "" {
		return 0, false
	}

	if m := clockPattern.FindStringSubmatch(normalized); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		if minutes >= 60 {
			return 0, false
		}
		return hours*60 + minutes, true
	}

	total := 0.0
	pending := -1.0
	seenUnit := false

	for _, token := range strings.Fields(normalized) {
		switch {
		case token == "полчаса":
			total += 30
			seenUnit = true
		case strings.HasPrefix(token, "час"): // час, часа, часов
			if pending < 0 {
				pending = 1
			}
			total += pending * 60
			pending = -1
			seenUnit = true
		case strings.HasPrefix(token, "минут"): // минут, минута, минуты
			if pending < 0 {
				return 0, false
			}
			total += pending
			pending = -1
			seenUnit = true
		case token == "и":
			// connective, e.g. "час и 15 минут"
		default:
			value, ok := numberWords[token]
			if !ok {
				parsed, err := strconv.Atoi(token)
				if err != nil || pending >= 0 {
					return 0, false
				}
				value = float64(parsed)
			}
			if pending >= 0 {
				return 0, false
			}
			pending = value
		}
	}

	// A single bare number is taken as minutes ("пятнадцать", "30").
	if pending >= 0 {
		if seenUnit {
			return 0, false
		}
		total = pending
	}
	if total <= 0 || total != float64(int(total)) {
		return 0, false
	}
	return int(total), true
}

// ValidateMinutes checks the parsed value against booking rules and
// returns the in-context validation message for a rejected value.
func ValidateMinutes(minutes int) (string, bool) {
	switch {
	case minutes <= 0:
		return textMinutesInvalid, false
	case minutes < minutesStep:
		return textMinutesTooSmall, false
	case minutes > minutesMax:
		return textMinutesTooBig, false
	case minutes%minutesStep != 0:
		return textMinutesNotStep, false
	default:
		return "", true
	}
}
