package portal

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/satonodoka/herp-recommender/internal/types"
)

// recommendLabel is the per-posting action button text. Only postings that
// carry this button are recommendable and therefore listed.
const recommendLabel = "この職種に推薦する"

// maxAncestorHops bounds the walk from a button up to its table row.
const maxAncestorHops = 10

var requiredMarker = regexp.MustCompile(`[【（(\[［]?必須[】）)\]］]?`)

// parsePostings extracts the recommendable posting titles from the rendered
// listing page. Duplicates collapse; order follows the page.
func parsePostings(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Op: "list", Message: "failed to parse listing page", Cause: err}
	}

	var postings []string
	seen := map[string]bool{}
	doc.Find("button").Each(func(_ int, btn *goquery.Selection) {
		if !strings.Contains(btn.Text(), recommendLabel) {
			return
		}
		title := postingTitleFor(btn)
		if title != "" && !seen[title] {
			seen[title] = true
			postings = append(postings, title)
		}
	})
	return postings, nil
}

// postingTitleFor walks up from the action button looking for the row's name
// cell, falling back to the first table cell's link.
func postingTitleFor(btn *goquery.Selection) string {
	el := btn
	for i := 0; i < maxAncestorHops; i++ {
		el = el.Parent()
		if el.Length() == 0 {
			return ""
		}
		if a := el.Find(".agent-requisitions-table-list__cell.--name a").First(); a.Length() > 0 {
			return strings.TrimSpace(a.Text())
		}
		if a := el.Find("td:first-child a").First(); a.Length() > 0 {
			return strings.TrimSpace(a.Text())
		}
	}
	return ""
}

// parseFormFields reads the recommendation form's field list. Hidden and
// submit inputs are skipped; a field is required when its element says so or
// its label carries a 必須 marker.
func parseFormFields(html string) ([]types.FormField, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Op: "read-fields", Message: "failed to parse form page", Cause: err}
	}

	var fields []types.FormField
	seen := map[string]bool{}
	doc.Find("form input, form textarea, form select").Each(func(_ int, el *goquery.Selection) {
		if t, _ := el.Attr("type"); t == "hidden" || t == "submit" || t == "button" {
			return
		}
		label := fieldLabel(doc, el)
		name := strings.TrimSpace(requiredMarker.ReplaceAllString(label, ""))
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		fields = append(fields, types.FormField{
			Name:     name,
			Type:     fieldType(el),
			Required: isRequired(el, label),
		})
	})
	return fields, nil
}

// fieldLabel resolves a display name: aria-label, an associated <label>, the
// placeholder, then the raw name attribute.
func fieldLabel(doc *goquery.Document, el *goquery.Selection) string {
	if v, ok := el.Attr("aria-label"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if id, ok := el.Attr("id"); ok && id != "" {
		if label := doc.Find(`label[for="` + id + `"]`).First(); label.Length() > 0 {
			return strings.TrimSpace(label.Text())
		}
	}
	if v, ok := el.Attr("placeholder"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	v, _ := el.Attr("name")
	return strings.TrimSpace(v)
}

func fieldType(el *goquery.Selection) types.FieldType {
	switch goquery.NodeName(el) {
	case "textarea":
		return types.FieldTypeTextarea
	case "select":
		return types.FieldTypeSelect
	}
	if t, _ := el.Attr("type"); t == "file" {
		return types.FieldTypeFile
	}
	return types.FieldTypeText
}

func isRequired(el *goquery.Selection, label string) bool {
	if _, ok := el.Attr("required"); ok {
		return true
	}
	if v, _ := el.Attr("aria-required"); v == "true" {
		return true
	}
	return strings.Contains(label, "必須")
}
