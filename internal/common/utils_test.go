package common

import "testing"

func TestContainsAnyFold(t *testing.T) {
	cases := []struct {
		s    string
		subs []string
		want bool
	}{
		{"Light Rain", []string{"rain"}, true},
		{"overcast clouds", []string{"snow", "CLOUD"}, true},
		{"clear sky", []string{"fog", "mist"}, false},
		{"anything", nil, false},
		{"anything", []string{""}, false},
	}
	for _, c := range cases {
		if got := ContainsAnyFold(c.s, c.subs...); got != c.want {
			t.Errorf("ContainsAnyFold(%q, %v) = %v, want %v", c.s, c.subs, got, c.want)
		}
	}
}
