package targeting

import (
	"slices"
	"testing"
)

func TestAddMoodDeduplicates(t *testing.T) {
	var rules Rules
	rules.AddMood("feliz")
	rules.AddMood("calmo")
	rules.AddMood("feliz")

	want := []string{"feliz", "calmo"}
	if !slices.Equal(rules.Moods, want) {
		t.Fatalf("moods = %v, want %v", rules.Moods, want)
	}
}

func TestAddMoodIgnoresEmpty(t *testing.T) {
	var rules Rules
	rules.AddMood("   ")
	if len(rules.Moods) != 0 {
		t.Fatalf("expected no moods, got %v", rules.Moods)
	}
}

func TestRemoveMoodAbsentIsNoOp(t *testing.T) {
	rules := Rules{Moods: []string{"feliz"}}
	rules.RemoveMood("triste")
	if !slices.Equal(rules.Moods, []string{"feliz"}) {
		t.Fatalf("moods = %v, want [feliz]", rules.Moods)
	}

	rules.RemoveMood("feliz")
	if len(rules.Moods) != 0 {
		t.Fatalf("expected empty moods, got %v", rules.Moods)
	}
}

func TestValidRequiresThreeDistinctMoods(t *testing.T) {
	rules := Rules{}
	rules.SetGenre("Pop")
	rules.SetLanguage("Português")
	rules.AddMood("feliz")
	rules.AddMood("calmo")

	if rules.Valid() {
		t.Fatal("expected invalid with two moods")
	}

	// A duplicate does not count toward the minimum.
	rules.AddMood("feliz")
	if rules.Valid() {
		t.Fatal("expected invalid after duplicate add")
	}

	rules.AddMood("animado")
	if !rules.Valid() {
		t.Fatal("expected valid with three distinct moods")
	}
}

func TestValidRequiresGenreAndLanguage(t *testing.T) {
	rules := Rules{Moods: []string{"a", "b", "c"}}
	if rules.Valid() {
		t.Fatal("expected invalid without genre and language")
	}
	rules.SetGenre("Rock")
	if rules.Valid() {
		t.Fatal("expected invalid without language")
	}
	rules.SetLanguage("Inglês")
	if !rules.Valid() {
		t.Fatal("expected valid")
	}
}
