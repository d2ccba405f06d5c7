package usecase

import (
	"math"
	"testing"
)

func TestTokenComparator_Similarity(t *testing.T) {
	c := NewTokenComparator(nil, nil, nil)

	testCases := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical after normalization",
			a:    "acme widget",
			b:    "acme   widget!",
			want: 1.0,
		},
		{
			name: "prefixed name contains the plain one",
			a:    "Regional Content Subscription",
			b:    "G2 Content: Regional Content Subscription",
			want: 0.95,
		},
		{
			name: "source prefix and leading word stripped",
			a:    "G2 Content: Social Asset Creation",
			b:    "Social Asset Creation",
			want: 0.95,
		},
		{
			name: "conflicting descriptors",
			a:    "Regional Content Subscription",
			b:    "Social Asset Creation",
			want: 0.0,
		},
		{
			name: "conflicting tiers",
			a:    "basic plan",
			b:    "premium plan",
			want: 0.0,
		},
		{
			name: "capitalized tiers lose the tier word",
			a:    "Basic Plan",
			b:    "Premium Plan",
			want: 1.0,
		},
		{
			name: "shared descriptor is not a conflict",
			a:    "monthly report",
			b:    "monthly reports",
			want: 0.9857,
		},
		{
			name: "token count too different",
			a:    "alpha",
			b:    "alphas beta gamma delta",
			want: 0.0,
		},
		{
			name: "empty against named",
			a:    "",
			b:    "widget",
			want: 0.0,
		},
		{
			name: "punctuation only against named",
			a:    "!!!",
			b:    "widget",
			want: 0.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 1.0,
		},
		{
			name: "partial token overlap",
			a:    "red widget",
			b:    "blue widget",
			want: 0.75,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Similarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 0.0001 {
				t.Errorf("Similarity(%q, %q) = %.4f, want %.4f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestTokenComparator_CustomDescriptorGroups(t *testing.T) {
	c := NewTokenComparator(nil, [][]string{{"Red", "Blue"}}, nil)

	if got := c.Similarity("red widget", "blue widget"); got != 0 {
		t.Errorf("Similarity(red widget, blue widget) = %v, want 0", got)
	}
	// Default groups no longer apply
	if got := c.Similarity("basic plan", "premium plan"); got == 0 {
		t.Error("Similarity(basic plan, premium plan) = 0, want non-zero without tier group")
	}
}

func TestTokenComparator_Bounds(t *testing.T) {
	c := NewTokenComparator(nil, nil, nil)
	names := []string{
		"G2 Content: Regional Content Subscription",
		"Regional Content Subscription",
		"G2 Content: Social Asset Creation",
		"Social Asset Creation",
		"Premium Support Package",
		"Enterprise Analytics Annual",
		"",
	}

	for _, a := range names {
		for _, b := range names {
			got := c.Similarity(a, b)
			if got < 0 || got > 1 {
				t.Errorf("Similarity(%q, %q) = %v, want within [0,1]", a, b, got)
			}
		}
	}
}

func TestSortedTokens(t *testing.T) {
	got := sortedTokens("subscription content  regional")
	want := []string{"content", "regional", "subscription"}
	if len(got) != len(want) {
		t.Fatalf("sortedTokens() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedTokens()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if tokens := sortedTokens(""); len(tokens) != 0 {
		t.Errorf("sortedTokens(\"\") = %v, want empty", tokens)
	}
}

func TestIsSubset(t *testing.T) {
	testCases := []struct {
		name    string
		smaller []string
		larger  []string
		want    bool
	}{
		{"contained", []string{"content", "subscription"}, []string{"content", "regional", "subscription"}, true},
		{"equal", []string{"a", "b"}, []string{"a", "b"}, true},
		{"missing token", []string{"asset", "creation"}, []string{"content", "subscription"}, false},
		{"empty smaller", []string{}, []string{"a"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isSubset(tc.smaller, tc.larger); got != tc.want {
				t.Errorf("isSubset(%v, %v) = %v, want %v", tc.smaller, tc.larger, got, tc.want)
			}
		})
	}
}
