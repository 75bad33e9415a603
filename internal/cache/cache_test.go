package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	if !ok || got.(string) != "v" {
		t.Fatalf("Get = %v, %v; want v, true", got, ok)
	}
}

func TestMissingKey(t *testing.T) {
	c := New()
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("k", "v", -time.Second) // already expired

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestReset(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Reset()

	if _, ok := c.Get("a"); ok {
		t.Fatal("entry survived Reset")
	}
}

func TestKeyIsStableAndDistinct(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Error("same parts produced different keys")
	}
	if Key("a", "b") == Key("ab") {
		t.Error("part boundaries ignored in key derivation")
	}
	if Key("a", "b") == Key("b", "a") {
		t.Error("part order ignored in key derivation")
	}
}
