package editor

import "testing"

func TestEvents_ReadyRunsOnceAndLateSubscribersRunImmediately(t *testing.T) {
	var events Events
	calls := 0
	events.OnReady(func() { calls++ })

	events.MarkReady()
	events.MarkReady()
	if calls != 1 {
		t.Fatalf("ready handler ran %d times, want 1", calls)
	}

	late := false
	events.OnReady(func() { late = true })
	if !late {
		t.Fatal("late ready handler did not run")
	}
}

func TestEvents_ChangeHandlers(t *testing.T) {
	var events Events
	events.EmitChange()

	got := 0
	events.OnChange(func() { got++ })
	events.EmitChange()
	events.EmitChange()
	if got != 2 {
		t.Fatalf("change handler ran %d times, want 2", got)
	}
}

func TestOptions_ForRegionCopies(t *testing.T) {
	base := DefaultOptions()
	base.Theme.Tokens = map[string]string{"accent": "blue"}

	scoped := base.ForRegion(" deposit-1 ")
	scoped.Theme.Tokens["accent"] = "red"

	if scoped.FormNameRoot != "deposit-1" {
		t.Fatalf("form name root = %q", scoped.FormNameRoot)
	}
	if base.FormNameRoot != "" {
		t.Fatal("base options mutated")
	}
	if base.Theme.Tokens["accent"] != "blue" {
		t.Fatal("theme tokens aliased")
	}
	if base.ThemeName() != DefaultTheme {
		t.Fatalf("theme = %q", base.ThemeName())
	}
}
