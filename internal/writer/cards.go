package writer

import (
	"fmt"
	"strings"

	"poewiki/internal/model"
)

const (
	currentAtlas = " (War for the Atlas)"
	oldAtlas     = " (Atlas of Worlds)"

	noCurrentRecord = "No current record. Generic sources like Diviner's Strongboxes,`n The Eternal Labyrinth or The Putrid Cloister still apply."
	noDropInfo      = "No drop information available"

	// AutoHotkey newline escape.
	ahkNewline = "`n"
)

// CardLines formats divination cards as AutoHotkey assignments:
//
//	divinationCardList["Humility"] := "Drop Locations:`n Tower Map`n The Ledge"
//
// Map pages of the current atlas are listed first, then other areas. Maps
// only recorded on the 3.0 atlas follow in their own block.
type CardLines struct{}

func (CardLines) Lines(rs model.RecordSet) ([]string, error) {
	lines := make([]string, 0, len(rs))
	for i, r := range rs {
		name := r.String("name")
		if name == "" {
			return nil, fmt.Errorf("card record %d has no name", i)
		}
		lines = append(lines, `divinationCardList["`+name+`"] := "`+cardText(r)+`"`)
	}
	return lines, nil
}

func cardText(r model.Record) string {
	areas := r.Strings("drop_areas")
	restrictions := r.Strings("drop_text")

	var b strings.Builder
	if len(areas) > 0 {
		b.WriteString("Drop Locations:")

		var maps, oldMaps, other []string
		for _, loc := range areas {
			switch {
			case strings.Contains(loc, "War for the Atlas"):
				maps = append(maps, strings.ReplaceAll(loc, currentAtlas, ""))
			case strings.Contains(loc, "Atlas of Worlds"):
				oldMaps = append(oldMaps, strings.ReplaceAll(loc, oldAtlas, ""))
			default:
				other = append(other, loc)
			}
		}

		if current := append(maps, other...); len(current) > 0 {
			b.WriteString(ahkNewline + " " + strings.Join(current, ahkNewline+" "))
		} else {
			b.WriteString(ahkNewline + " " + noCurrentRecord)
		}

		var onlyOld []string
		for _, loc := range oldMaps {
			if !contains(maps, loc) {
				onlyOld = append(onlyOld, loc)
			}
		}
		if len(onlyOld) > 0 {
			b.WriteString(ahkNewline + ahkNewline + "Additionally these locations were recorded in 3.0:")
			b.WriteString(ahkNewline + " " + strings.Join(onlyOld, ahkNewline+" "))
		}
	} else if len(restrictions) == 0 {
		b.WriteString(noDropInfo)
	}

	if len(restrictions) > 0 {
		if len(areas) > 0 {
			b.WriteString(ahkNewline + ahkNewline)
		}
		b.WriteString("Drop Restrictions:")
		for _, restr := range restrictions {
			b.WriteString(ahkNewline + " " + strings.TrimSpace(restr))
		}
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
