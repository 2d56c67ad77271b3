package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"uri", "neo4j://localhost:7687", "neo4j_password", "2much4ME", "dangling"})
	if len(out) != 5 {
		t.Fatalf("len: want=5 got=%d", len(out))
	}
	if out[1] != "neo4j://localhost:7687" {
		t.Fatalf("uri should pass through, got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("password should be redacted, got=%v", out[3])
	}
	if out[4] != "dangling" {
		t.Fatalf("dangling key lost: %v", out[4])
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	log := Nop().With("service", "test")
	log.Info("hello", "k", "v")
	log.Sync()
}
