package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLabelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  Label
	}{
		{0, LabelLeave},
		{29, LabelLeave},
		{30, LabelSave},
		{59, LabelSave},
		{60, LabelRead},
		{100, LabelRead},
	}
	for _, tt := range tests {
		if got := LabelForScore(tt.score); got != tt.want {
			t.Errorf("LabelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestLabel_Valid(t *testing.T) {
	for _, l := range []Label{LabelLeave, LabelSave, LabelRead} {
		if !l.Valid() {
			t.Errorf("expected %s to be valid", l)
		}
	}
	if Label("read").Valid() || Label("").Valid() {
		t.Error("expected unknown labels to be invalid")
	}
}

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		name   string
		status VerdictStatus
		want   Badge
	}{
		{"idle", Idle(), Badge{Icon: "default"}},
		{"disabled", Disabled(), Badge{Icon: "default"}},
		{"loading", Loading(), Badge{Icon: "grey", Text: "...", Color: ColorGrey}},
		{"read", Success(Verdict{Verdict: LabelRead, Score: 80}), Badge{Icon: "read", Color: ColorRead}},
		{"save", Success(Verdict{Verdict: LabelSave, Score: 40}), Badge{Icon: "save", Color: ColorSave}},
		{"leave", Success(Verdict{Verdict: LabelLeave, Score: 5}), Badge{Icon: "leave", Color: ColorLeave}},
		{"error", Failed("boom", false), Badge{Icon: "grey", Color: ColorGrey}},
		{"skipped", Skipped("Invalid URL"), Badge{Icon: "grey", Color: ColorGrey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, BadgeFor(tt.status)); diff != "" {
				t.Errorf("badge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProfile_Clone(t *testing.T) {
	p := Profile{Role: "Dev", Goals: []string{"ship"}, Avoid: []string{}, Focus: []string{"go"}}
	c := p.Clone()
	c.Goals[0] = "changed"
	if p.Goals[0] != "ship" {
		t.Error("expected Clone to copy the goals slice")
	}
}
