package normalize

import (
	"regexp"
	"strings"
)

var (
	// wikiLink matches [[text]] and [[page|text]]; exactly one of the two
	// groups is filled, so "${1}${2}" always yields the visible text.
	wikiLink = regexp.MustCompile(`\[\[([^\]\|]*)\]\]|\[\[[^\]\|]*\|([^\]\|]*)\]\]`)

	lineBreak  = regexp.MustCompile(`<br\s*/?>`)
	whitespace = regexp.MustCompile(`\s+`)
)

const corruptedMarkup = `<em class="tc -corrupted">Corrupted</em>`

// RemoveWikiLinks replaces wiki links with their visible text.
//
//	[[The Harvest (area)|The Harvest]] -> The Harvest
//	Sold by [[Zana]]                   -> Sold by Zana
//
// Nested links are unwrapped until none is left.
func RemoveWikiLinks(s string) string {
	for {
		out := wikiLink.ReplaceAllString(s, "${1}${2}")
		if out == s {
			return out
		}
		s = out
	}
}

// RemoveWikiFormats strips links, the corrupted marker and the escaped angle
// brackets the SMW API puts into stat text.
func RemoveWikiFormats(s string) string {
	s = RemoveWikiLinks(s)
	s = strings.ReplaceAll(s, corruptedMarkup, "Corrupted")
	s = strings.ReplaceAll(s, "&#60;", "<")
	s = strings.ReplaceAll(s, "&#62;", ">")
	return s
}

// ASCIIDashes turns minus signs and en dashes into '-' so rolled ranges like
// (10–20) are recognised.
func ASCIIDashes(s string) string {
	return strings.NewReplacer("\u2212", "-", "\u2013", "-").Replace(s)
}

func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func SplitBreaks(s string) []string {
	return lineBreak.Split(s, -1)
}

// IsHiddenMod reports mods the wiki annotates as invisible in game.
func IsHiddenMod(s string) bool {
	return strings.Contains(s, "(Hidden)")
}

func StripLinkBrackets(s string) string {
	return strings.NewReplacer("[[", "", "]]", "").Replace(s)
}

// SplitBullets splits the " • " separated drop area list.
func SplitBullets(s string) []string {
	return strings.Split(s, " \u2022 ")
}

// SplitDropText splits a comma separated list of links. Entries may contain
// commas themselves, so the split only happens between two links.
func SplitDropText(s string) []string {
	s = strings.ReplaceAll(s, "]], [[", "]]><[[")
	parts := strings.Split(s, "><")
	for i, p := range parts {
		parts[i] = RemoveWikiLinks(p)
	}
	return parts
}
