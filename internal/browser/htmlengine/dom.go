package htmlengine

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// elements that have a box even without text content
const sizedElements = "input, select, textarea, img, button, svg, canvas, video, iframe"

// isVisible approximates layout: the element must not be inside an
// unrendered subtree, hidden by attribute or inline style, or empty.
func isVisible(sel *goquery.Selection) bool {
	if sel.Closest("head, script, style, template, noscript").Length() > 0 {
		return false
	}
	if goquery.NodeName(sel) == "input" && strings.EqualFold(sel.AttrOr("type", ""), "hidden") {
		return false
	}
	for s := sel; s.Length() > 0; s = s.Parent() {
		if _, hidden := s.Attr("hidden"); hidden {
			return false
		}
		style := strings.ToLower(strings.ReplaceAll(s.AttrOr("style", ""), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	if sel.Is(sizedElements) {
		return true
	}
	return strings.TrimSpace(sel.Text()) != "" || sel.Find(sizedElements).Length() > 0
}

// isEnabled follows the HTML rules for disabled form controls.
func isEnabled(sel *goquery.Selection) bool {
	if !sel.Is("button, input, select, textarea, option, optgroup, fieldset") {
		return true
	}
	if _, disabled := sel.Attr("disabled"); disabled {
		return false
	}
	return sel.ParentsFiltered("fieldset[disabled]").Length() == 0
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(o.Text())
}

// owningForm returns the form a control belongs to, honouring the form attribute.
func owningForm(doc *goquery.Document, sel *goquery.Selection) *goquery.Selection {
	if id := sel.AttrOr("form", ""); id != "" {
		return doc.Find("form").FilterFunction(func(_ int, f *goquery.Selection) bool {
			return f.AttrOr("id", "") == id
		}).First()
	}
	return sel.Closest("form")
}

// formValues collects the successful controls of form, plus the submitter.
func formValues(form, submitter *goquery.Selection) url.Values {
	values := url.Values{}

	form.Find("input, select, textarea").Each(func(_ int, c *goquery.Selection) {
		name := c.AttrOr("name", "")
		if name == "" || !isEnabled(c) {
			return
		}

		switch goquery.NodeName(c) {
		case "textarea":
			values.Add(name, c.Text())
		case "select":
			selected := c.Find("option[selected]")
			if selected.Length() == 0 {
				if _, multiple := c.Attr("multiple"); !multiple {
					selected = c.Find("option").First()
				}
			}
			selected.Each(func(_ int, o *goquery.Selection) {
				values.Add(name, optionValue(o))
			})
		default:
			switch strings.ToLower(c.AttrOr("type", "text")) {
			case "submit", "button", "reset", "image", "file":
				return
			case "checkbox", "radio":
				if _, checked := c.Attr("checked"); !checked {
					return
				}
				values.Add(name, c.AttrOr("value", "on"))
			default:
				values.Add(name, c.AttrOr("value", ""))
			}
		}
	})

	if submitter != nil {
		if name := submitter.AttrOr("name", ""); name != "" {
			values.Add(name, submitter.AttrOr("value", ""))
		}
	}
	return values
}
