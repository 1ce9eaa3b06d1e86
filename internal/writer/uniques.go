package writer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"poewiki/internal/model"
)

var (
	// Damage mods such as "Adds (10-20) to (30-40) Fire Damage". Either side
	// may be a plain number; lowmax and highmax are empty then.
	doubleRange = regexp.MustCompile(`\(?(?P<lowmin>\d+)(?:-(?P<lowmax>\d+)\))? to \(?(?P<highmin>\d+)(?:-(?P<highmax>\d+)\))?`)

	// A rolled range with optional leading "+" and trailing "%":
	// (10-20), +(10-20), (0.6-1)%, (-40-40)%, +(-25-50)%.
	// The "-" in front of "-(20-10) Physical Damage Taken" is left alone.
	singleRange = regexp.MustCompile(`\+?\((-?[\d\.]+-[\d\.]+)\)%?`)

	// Style variants get their own wiki page named "Item (Variant)".
	styleVariantPage = regexp.MustCompile(`([^\(]+) \([^\)]+\)`)
)

// SplitRange rewrites a mod into the "range:Text" form of Uniques.txt.
//
//	+(80-100) to maximum Life          -> 80-100:To maximum Life
//	Adds (5-8) to (12-15) Fire Damage  -> 5-8,12-15:Adds Fire Damage
//	+(-25-50)% to Fire Resistance      -> -25-+50:To Fire Resistance
//	50% increased Critical Strike      -> :50% increased Critical Strike
//
// odd reports a double range whose bounds are not ascending.
func SplitRange(mod string) (line string, odd bool) {
	if m := doubleRange.FindStringSubmatch(mod); m != nil {
		lowmin, lowmax := m[1], m[2]
		highmin, highmax := m[3], m[4]
		if lowmax == "" && highmax == "" {
			return ":" + mod, false
		}
		if lowmax == "" {
			lowmax = lowmin
		}
		if highmax == "" {
			highmax = highmin
		}
		odd = !ascending(lowmin, lowmax, highmin, highmax)
		nums := lowmin + "-" + lowmax + "," + highmin + "-" + highmax
		return nums + ":" + remainder(doubleRange, mod), odd
	}

	if m := singleRange.FindStringSubmatch(mod); m != nil {
		nums := m[1]
		if strings.HasPrefix(nums, "-") {
			// -10-20 would be ambiguous, write -10-+20
			nums = strings.Replace(strings.ReplaceAll(nums, "-", "-+"), "-+", "-", 1)
		}
		return nums + ":" + remainder(singleRange, mod), false
	}

	return ":" + mod, false
}

func remainder(re *regexp.Regexp, mod string) string {
	text := strings.TrimSpace(re.ReplaceAllString(mod, ""))
	return upcaseFirst(strings.ReplaceAll(text, "  ", " "))
}

func upcaseFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func ascending(nums ...string) bool {
	prev := -1
	for _, s := range nums {
		n, err := strconv.Atoi(s)
		if err != nil || n < prev {
			return false
		}
		prev = n
	}
	return true
}

// UniqueLines formats unique items as
//
//	Name|@implicit|explicit|explicit
//
// Items with several style variant pages are replaced by one prepared line
// from StyleVariants, keyed by the item name without the variant suffix.
type UniqueLines struct {
	StyleVariants map[string]string
	Logger        *slog.Logger
}

func (u UniqueLines) Lines(rs model.RecordSet) ([]string, error) {
	logger := u.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		lines    []string
		included []string
		seen     = make(map[string]bool)
	)
	for i, r := range rs {
		name := r.String("name")
		if name == "" {
			return nil, fmt.Errorf("unique record %d has no name", i)
		}

		if m := styleVariantPage.FindStringSubmatch(name); m != nil {
			base := m[1]
			if prepared, ok := u.StyleVariants[base]; ok {
				if !seen[base] {
					lines = append(lines, prepared)
					included = append(included, base)
					seen[base] = true
				}
				continue
			}
			logger.Warn("style variant expected but not prepared, item is written as usual", "item", name)
		}

		line := name
		if impl := u.mods(logger, name, r.Strings("implicit")); len(impl) > 0 {
			if len(impl) > 1 {
				logger.Warn("multiple implicits", "item", name)
			}
			for j, mod := range impl {
				if j == len(impl)-1 {
					line += "|@" + mod
				} else {
					line += "|" + mod
				}
			}
		}
		for _, mod := range u.mods(logger, name, r.Strings("explicit")) {
			line += "|" + mod
		}
		lines = append(lines, line)
	}

	if len(included) > 0 {
		logger.Info("prepared style variants included, make sure they are still correct", "items", included)
	}
	return lines, nil
}

func (u UniqueLines) mods(logger *slog.Logger, item string, mods []string) []string {
	out := make([]string, 0, len(mods))
	for _, mod := range mods {
		line, odd := SplitRange(mod)
		if odd {
			logger.Warn("double range oddity", "item", item, "written_as", line)
		}
		out = append(out, line)
	}
	return out
}

// LoadStyleVariants reads the prepared style variant lines, a JSON object
// mapping item name to its full Uniques.txt line.
func LoadStyleVariants(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	variants := make(map[string]string)
	if err := json.Unmarshal(b, &variants); err != nil {
		return nil, fmt.Errorf("style variants %s: %w", path, err)
	}
	return variants, nil
}
