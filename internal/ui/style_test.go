package ui

import "testing"

func TestStylesWithoutTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := Priority("high"); got != "high" {
		t.Fatalf("Priority() = %q, want plain label", got)
	}
	if got := Overdue("2024-03-01"); got != "2024-03-01" {
		t.Fatalf("Overdue() = %q, want plain value", got)
	}
	if got := Completed("done"); got != "done" {
		t.Fatalf("Completed() = %q, want plain value", got)
	}
}

func TestCheckbox(t *testing.T) {
	if Checkbox(true) != "[x]" || Checkbox(false) != "[ ]" {
		t.Fatalf("unexpected checkbox rendering")
	}
}
