// Package navigation converts the link specifications of a region document
// (title links, header links, region links) into link trees for the portal
// template. Extraction is forgiving: these are display-only
// values, so absent or mistyped fields become zero values instead of errors.
package navigation

import "strconv"

// Link is one node of a navigation tree. Items holds nested dropdown
// entries and is always non-nil so templates can range over it directly.
type Link struct {
	Text        string `json:"text"`
	URL         string `json:"url"`
	Popup       bool   `json:"popup"`
	LaunchpadID string `json:"launchpadId,omitempty"`
	ElementID   string `json:"elementId,omitempty"`
	Items       []Link `json:"items"`
}

// Extract builds a Link from a decoded JSON value. Anything that is not a
// JSON object yields an empty link.
func Extract(v any) Link {
	link := Link{Items: []Link{}}
	obj, ok := v.(map[string]any)
	if !ok {
		return link
	}

	link.Text = stringField(obj, "text")
	link.URL = stringField(obj, "url")
	link.Popup = boolField(obj, "popup")
	link.LaunchpadID = stringField(obj, "launchpadId")
	link.ElementID = stringField(obj, "elementId")

	if items, ok := obj["items"].([]any); ok {
		for _, item := range items {
			link.Items = append(link.Items, Extract(item))
		}
	}
	return link
}

// ExtractList builds the link list for a JSON array value. A missing or
// mistyped value yields an empty, non-nil list.
func ExtractList(v any) []Link {
	links := []Link{}
	arr, ok := v.([]any)
	if !ok {
		return links
	}
	for _, item := range arr {
		links = append(links, Extract(item))
	}
	return links
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// boolField accepts a native boolean or its string form ("true", "1", ...).
func boolField(obj map[string]any, key string) bool {
	switch v := obj[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false
		}
		return b
	default:
		return false
	}
}
