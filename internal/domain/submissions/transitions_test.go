package submissions

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusInReview, true},
		{StatusInReview, StatusContacted, true},
		{StatusContacted, StatusClosed, true},
		{StatusNew, StatusClosed, true},
		{StatusInReview, StatusClosed, true},
		{StatusNew, StatusNew, true},
		{StatusClosed, StatusClosed, true},

		{StatusNew, StatusContacted, false},
		{StatusContacted, StatusInReview, false},
		{StatusClosed, StatusNew, false},
		{StatusNew, "archived", false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
