package parser

// UniqueItems reads the implicit and explicit stat text of unique items.
func UniqueItems() *SMWParser {
	return &SMWParser{
		NameField: "name",
		Printouts: []Printout{
			{Property: "Has implicit stat text", Field: "implicit"},
			{Property: "Has explicit stat text", Field: "explicit"},
		},
	}
}

// CardDrops reads drop areas and drop restrictions of divination cards from
// the items cargo table.
func CardDrops() *CargoParser {
	return &CargoParser{
		Fields: []CargoField{
			{Source: "name", Field: "name"},
			{Source: "drop areas html", Field: "drop_areas"},
			{Source: "drop text", Field: "drop_text"},
		},
	}
}

// CardTable reads the divination card list article.
func CardTable() *TableParser {
	return &TableParser{
		Columns: []Column{
			{Headers: []string{"Name", "Card", "Divination card"}, Field: "name"},
			{Headers: []string{"Stack size", "Stack"}, Field: "stack_size"},
			{Headers: []string{"Stat text", "Stats", "Reward", "Explicit stat text"}, Field: "stats", List: true},
		},
	}
}

// MapTable reads the map list article.
func MapTable() *TableParser {
	return &TableParser{
		Columns: []Column{
			{Headers: []string{"Map", "Name"}, Field: "name"},
			{Headers: []string{"Tier", "Map tier"}, Field: "tier"},
			{Headers: []string{"Area level", "Level"}, Field: "area_level", Optional: true},
		},
	}
}
