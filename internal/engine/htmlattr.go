package engine

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HtmlAttrExtractArgs is StringModification.HtmlAttrExtract's payload: parse
// value as an HTML fragment, select the first element matching Selector,
// and read its Attr, per spec.md §4.5's "attribute-value extraction from an
// HTML blob" leaf (used for rule sets that pull canonical/og:url links out
// of scraped markup rather than a bare URL string).
type HtmlAttrExtractArgs struct {
	Selector string `json:"selector"`
	Attr     string `json:"attr"`
}

func extractHtmlAttr(html string, args *HtmlAttrExtractArgs) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", newErr(KindParse, "StringModification.HtmlAttrExtract", err)
	}
	sel := doc.Find(args.Selector).First()
	if sel.Length() == 0 {
		return "", newErr(KindMissing, "StringModification.HtmlAttrExtract", fmt.Errorf("%w: no element matches selector %q", ErrMissing, args.Selector))
	}
	val, ok := sel.Attr(args.Attr)
	if !ok {
		return "", newErr(KindMissing, "StringModification.HtmlAttrExtract", fmt.Errorf("%w: element has no %q attribute", ErrMissing, args.Attr))
	}
	return val, nil
}
