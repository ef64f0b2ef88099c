package maps

import "testing"

func TestSortByRating(t *testing.T) {
	attractions := []Attraction{
		{Name: "安平老街", Rating: 4.2, UserRatingsTotal: 9000},
		{Name: "赤崁樓", Rating: 4.4, UserRatingsTotal: 30000},
		{Name: "安平古堡", Rating: 4.4, UserRatingsTotal: 42000},
		{Name: "林百貨", Rating: 4.3, UserRatingsTotal: 15000},
	}

	sortByRating(attractions)

	want := []string{"安平古堡", "赤崁樓", "林百貨", "安平老街"}
	for i, name := range want {
		if attractions[i].Name != name {
			t.Fatalf("position %d = %s, want %s", i, attractions[i].Name, name)
		}
	}
}

func TestHintLine(t *testing.T) {
	if got := HintLine(nil); got != "" {
		t.Fatalf("empty input produced %q", got)
	}

	got := HintLine([]Attraction{
		{Name: "安平古堡", Rating: 4.4},
		{Name: "赤崁樓", Rating: 4.4},
	})
	if got != "熱門景點參考：安平古堡 (⭐4.4)、赤崁樓 (⭐4.4)" {
		t.Fatalf("hint line = %q", got)
	}
}
