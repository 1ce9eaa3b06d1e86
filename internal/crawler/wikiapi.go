package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// AskArgsURL builds a Semantic MediaWiki askargs query returning JSON.
//
//	api.php?action=askargs&conditions=Has item class::Belts|Has rarity::Unique&printouts=...
func AskArgsURL(api string, conditions, printouts []string, limit int) string {
	q := url.Values{}
	q.Set("action", "askargs")
	q.Set("format", "json")
	q.Set("parameters", fmt.Sprintf("limit=%d", limit))
	q.Set("conditions", strings.Join(conditions, "|"))
	q.Set("printouts", strings.Join(printouts, "|"))
	return api + "?" + q.Encode()
}

// CargoQuery describes an action=cargoquery request.
type CargoQuery struct {
	Tables  []string
	Fields  []string
	Where   string
	GroupBy string
	Limit   int
}

func CargoQueryURL(api string, cq CargoQuery) string {
	q := url.Values{}
	q.Set("action", "cargoquery")
	q.Set("format", "json")
	q.Set("formatversion", "1")
	q.Set("limit", fmt.Sprint(cq.Limit))
	q.Set("tables", strings.Join(cq.Tables, ","))
	q.Set("fields", strings.Join(cq.Fields, ","))
	if cq.Where != "" {
		q.Set("where", cq.Where)
	}
	if cq.GroupBy != "" {
		q.Set("group_by", cq.GroupBy)
	}
	return api + "?" + q.Encode()
}

// ArticleURL returns the page URL for a wiki article title.
func ArticleURL(base, title string) string {
	title = strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(title)
}
