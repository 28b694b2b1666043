package models

import "testing"

func TestNewKeyNormalization(t *testing.T) {
	a := NewKey(" s1 ", " 3 ")
	b := NewKey("s1", "3")
	if a != b {
		t.Errorf("NewKey() did not normalize whitespace: %+v != %+v", a, b)
	}
}

func TestWorkRowKey(t *testing.T) {
	row := WorkRow{LoginID: " s1", TriggerNumber: "3 "}
	if row.Key() != (Key{LoginID: "s1", TriggerNumber: "3"}) {
		t.Errorf("Key() = %+v", row.Key())
	}
}

func TestStatusActionable(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusNotSent, false},
		{Status(""), false},
		{StatusSent, true},
		{StatusIssue, true},
		{StatusIssueArchive, true},
	}
	for _, tc := range cases {
		if got := tc.status.Actionable(); got != tc.want {
			t.Errorf("Status(%q).Actionable() = %v, want %v", tc.status, got, tc.want)
		}
	}
}
