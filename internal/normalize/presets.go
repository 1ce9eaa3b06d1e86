package normalize

// UniqueItems turns SMW stat text into lists of visible mods. Mods keep
// their original spacing, the uniques file layout depends on it.
var UniqueItems = Schema{Rules: []Rule{
	{Field: "implicit", Kind: List, Clean: cleanMod, Split: SplitBreaks, Drop: IsHiddenMod},
	{Field: "explicit", Kind: List, Clean: cleanMod, Split: SplitBreaks, Drop: IsHiddenMod},
}}

var Cards = Schema{Rules: []Rule{
	{Field: "name", Kind: Text, Clean: CollapseSpace},
	{Field: "stack_size", Kind: Int},
	{Field: "stats", Kind: List, Clean: cleanStat, Split: SplitBreaks},
	{Field: "drop_areas", Kind: List, Clean: StripLinkBrackets, Split: SplitBullets},
	{Field: "drop_text", Kind: List, Split: SplitDropText},
}}

var Maps = Schema{Rules: []Rule{
	{Field: "name", Kind: Text, Clean: CollapseSpace},
	{Field: "tier", Kind: Int},
	{Field: "area_level", Kind: Int},
}}

func cleanMod(s string) string {
	return ASCIIDashes(RemoveWikiFormats(s))
}

func cleanStat(s string) string {
	return CollapseSpace(RemoveWikiFormats(s))
}
