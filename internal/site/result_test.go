package site

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestModuleIDList(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{name: "empty", ids: nil, want: ""},
		{name: "single", ids: []string{"measure/main"}, want: `"measure/main"`},
		{name: "several", ids: []string{"layer_selector/main", "measure/main"}, want: `"layer_selector/main","measure/main"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := moduleIDList(tc.ids); got != tc.want {
				t.Errorf("moduleIDList(%v) = %s, want %s", tc.ids, got, tc.want)
			}
		})
	}
}

func TestVariableNameList(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "p0"},
		{3, "p0,p1,p2"},
	}
	for _, tc := range tests {
		if got := variableNameList(tc.n); got != tc.want {
			t.Errorf("variableNameList(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestAugmentRegionJSON(t *testing.T) {
	out, err := augmentRegionJSON([]byte(`{"pluginDirectories":["plugins"],"colors":{"primary":"#112233"}}`), []string{"a", "b"})
	if err != nil {
		t.Fatalf("augmentRegionJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	folders, ok := decoded["pluginFolderNames"].([]any)
	if !ok || len(folders) != 2 {
		t.Fatalf("pluginFolderNames = %#v", decoded["pluginFolderNames"])
	}
	if _, ok := decoded["colors"]; !ok {
		t.Fatal("original keys dropped during augmentation")
	}
}

func TestAugmentRegionJSONRejectsGarbage(t *testing.T) {
	if _, err := augmentRegionJSON([]byte("{nope"), nil); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestReportMarshalJSON(t *testing.T) {
	report := newReport("gulfmex")
	report.StageDurations[StageDiscover] = 120 * time.Millisecond
	report.StageResults[StageDiscover] = "success"
	report.PluginCount = 4
	report.finish(OutcomeSuccess)

	encoded, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	body := string(encoded)
	for _, want := range []string{`"site":"gulfmex"`, `"outcome":"success"`, `"discover_plugins":120`, `"pluginCount":4`} {
		if !strings.Contains(body, want) {
			t.Errorf("report JSON missing %s: %s", want, body)
		}
	}
}
