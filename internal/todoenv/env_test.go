package todoenv

import "testing"

func TestServerTrimsValue(t *testing.T) {
	t.Setenv(ServerEnvVar, "  localhost:3001 ")

	if got := Server(); got != "localhost:3001" {
		t.Fatalf("expected trimmed server, got %q", got)
	}
}

func TestDataPathEmptyByDefault(t *testing.T) {
	t.Setenv(DataEnvVar, "")

	if got := DataPath(); got != "" {
		t.Fatalf("expected empty data path, got %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " b ", "c"); got != "b" {
		t.Fatalf("FirstNonEmpty() = %q, want %q", got, "b")
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q, want empty", got)
	}
}
