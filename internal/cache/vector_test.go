package cache

import (
	"testing"
	"time"
)

func TestEncodeDecodeVector(t *testing.T) {
	v := []float32{0.25, -1.5, 0, 3.14159}

	decoded, err := DecodeVector(EncodeVector(v))
	if err != nil {
		t.Fatalf("DecodeVector failed: %v", err)
	}
	if len(decoded) != len(v) {
		t.Fatalf("Expected %d components, got %d", len(v), len(decoded))
	}
	for i := range v {
		if decoded[i] != v[i] {
			t.Errorf("Component %d: expected %v, got %v", i, v[i], decoded[i])
		}
	}
}

func TestDecodeVector_RejectsTruncatedData(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for data not a multiple of 4 bytes")
	}
}

func TestEmbeddingKey_DependsOnModel(t *testing.T) {
	a := EmbeddingKey("text-embedding-3-large", "clinical hold")
	b := EmbeddingKey("text-embedding-3-small", "clinical hold")
	if a == b {
		t.Error("Expected different keys for different models")
	}
	if a != EmbeddingKey("text-embedding-3-large", "clinical hold") {
		t.Error("Expected key derivation to be deterministic")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := EmbeddingKey("m", "some text")
	if err := c.Set(key, EncodeVector([]float32{1, 2}), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, found := c.Get(key)
	if !found {
		t.Fatal("Expected cache hit")
	}
	v, err := DecodeVector(data)
	if err != nil {
		t.Fatalf("DecodeVector failed: %v", err)
	}
	if v[0] != 1 || v[1] != 2 {
		t.Errorf("Unexpected vector %v", v)
	}
}
