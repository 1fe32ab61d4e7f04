package navigation

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func TestExtractNested(t *testing.T) {
	link := Extract(decode(t, `{"text":"Home","url":"/","items":[{"text":"Sub","url":"/s"}]}`))

	if link.Text != "Home" || link.URL != "/" {
		t.Fatalf("unexpected root link: %+v", link)
	}
	if len(link.Items) != 1 {
		t.Fatalf("expected one child, got %d", len(link.Items))
	}
	child := link.Items[0]
	if child.Text != "Sub" || child.URL != "/s" {
		t.Fatalf("unexpected child link: %+v", child)
	}
	if child.Popup {
		t.Error("child popup should default to false")
	}
	if child.Items == nil || len(child.Items) != 0 {
		t.Errorf("child items must be empty, non-nil; got %#v", child.Items)
	}
}

func TestExtractPopupForms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"native true", `{"popup": true}`, true},
		{"native false", `{"popup": false}`, false},
		{"string true", `{"popup": "true"}`, true},
		{"string mixed case", `{"popup": "True"}`, true},
		{"string false", `{"popup": "false"}`, false},
		{"unparsable string", `{"popup": "yes please"}`, false},
		{"absent", `{}`, false},
		{"wrong type", `{"popup": 1}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Extract(decode(t, tc.raw)).Popup; got != tc.want {
				t.Errorf("popup = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtractAbsentFields(t *testing.T) {
	link := Extract(decode(t, `{}`))
	if link.Text != "" || link.URL != "" || link.LaunchpadID != "" || link.ElementID != "" {
		t.Fatalf("absent fields must yield empty strings: %+v", link)
	}
	if link.Items == nil {
		t.Fatal("items must never be nil")
	}
}

func TestExtractNonObject(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `42`, `null`, `[1,2]`} {
		link := Extract(decode(t, raw))
		if link.Text != "" || link.Items == nil || len(link.Items) != 0 {
			t.Errorf("non-object %s should yield empty link, got %+v", raw, link)
		}
	}
}

func TestExtractDeepNesting(t *testing.T) {
	link := Extract(decode(t, `{
		"text": "Maps",
		"url": "#",
		"items": [
			{"text": "Coastal", "url": "/coastal", "popup": "true", "items": [
				{"text": "Flooding", "url": "/coastal/flooding", "elementId": "nav-flooding"}
			]},
			{"text": "Inland", "url": "/inland", "launchpadId": "lp-inland"}
		]
	}`))

	if len(link.Items) != 2 {
		t.Fatalf("expected two children, got %d", len(link.Items))
	}
	coastal := link.Items[0]
	if !coastal.Popup {
		t.Error("string-form popup should parse true")
	}
	if len(coastal.Items) != 1 || coastal.Items[0].ElementID != "nav-flooding" {
		t.Fatalf("unexpected grandchild: %+v", coastal.Items)
	}
	if link.Items[1].LaunchpadID != "lp-inland" {
		t.Errorf("launchpadId not extracted: %+v", link.Items[1])
	}
}

func TestExtractList(t *testing.T) {
	links := ExtractList(decode(t, `[{"text":"A","url":"/a"},{"text":"B","url":"/b"}]`))
	if len(links) != 2 || links[0].Text != "A" || links[1].Text != "B" {
		t.Fatalf("unexpected list: %+v", links)
	}

	if got := ExtractList(nil); got == nil || len(got) != 0 {
		t.Errorf("nil input must yield empty non-nil list, got %#v", got)
	}
	if got := ExtractList(decode(t, `{"text":"not an array"}`)); len(got) != 0 {
		t.Errorf("object input must yield empty list, got %+v", got)
	}
}

func TestLinkJSONShape(t *testing.T) {
	data, err := json.Marshal(Extract(decode(t, `{"text":"Home","url":"/"}`)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := round["items"]; !ok {
		t.Error("serialized link must always carry an items array")
	}
}
