package writer

import (
	"fmt"
	"strings"

	"poewiki/internal/model"
)

// MapLines formats maps as
//
//	mapList["Dunes Map"] := "Tier: 3`nArea Level: 70"
//
// Missing values are left out; a map without any is marked as such.
type MapLines struct{}

func (MapLines) Lines(rs model.RecordSet) ([]string, error) {
	lines := make([]string, 0, len(rs))
	for i, r := range rs {
		name := r.String("name")
		if name == "" {
			return nil, fmt.Errorf("map record %d has no name", i)
		}

		var parts []string
		if v, ok := r.Get("tier"); ok && v != nil {
			parts = append(parts, fmt.Sprintf("Tier: %v", v))
		}
		if v, ok := r.Get("area_level"); ok && v != nil {
			parts = append(parts, fmt.Sprintf("Area Level: %v", v))
		}
		text := strings.Join(parts, ahkNewline)
		if text == "" {
			text = "No map information available"
		}
		lines = append(lines, `mapList["`+name+`"] := "`+text+`"`)
	}
	return lines, nil
}
