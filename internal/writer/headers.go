package writer

import (
	"fmt"
	"time"
)

const stampLayout = "2006-01-02 at 15:04:05"

// UniquesHeader returns the banner of Uniques.txt. source names the wiki the
// data came from, generator the program that wrote the file.
func UniquesHeader(source, generator string) func(time.Time) []string {
	return func(now time.Time) []string {
		return []string{
			fmt.Sprintf("; Data from %s using the SMW API.", source),
			`; The "@" symbol marks a mod as implicit. This means a separator line will be appended after this mod. If there are multiple implicit mods, mark the last one in line.`,
			`; Comments can be made with ";", blank lines will be ignored.`,
			";",
			fmt.Sprintf("; This file was auto-generated by %s on %s", generator, now.Format(stampLayout)),
			"\n",
		}
	}
}

func CardsHeader(source, generator string) func(time.Time) []string {
	return func(now time.Time) []string {
		return []string{
			fmt.Sprintf("; Data from %s using the API.", source),
			`; Comments can be made with ";", blank lines will be ignored.`,
			";",
			fmt.Sprintf("; This file was auto-generated by %s on %s\n", generator, now.Format(stampLayout)),
			"divinationCardList := Object()\n",
			`divinationCardList["Unknown Card"] := "Card not recognised or not supported"` + "\n",
		}
	}
}

func MapsHeader(source, generator string) func(time.Time) []string {
	return func(now time.Time) []string {
		return []string{
			fmt.Sprintf("; Data from %s.", source),
			`; Comments can be made with ";", blank lines will be ignored.`,
			";",
			fmt.Sprintf("; This file was auto-generated by %s on %s\n", generator, now.Format(stampLayout)),
			"mapList := Object()\n",
		}
	}
}
