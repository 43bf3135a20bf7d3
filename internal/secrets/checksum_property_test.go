package secrets

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genConfigMap generates maps of plausible config keys and values.
func genConfigMap() gopter.Gen {
	return gen.MapOf(
		gen.RegexMatch("[A-Z][A-Z0-9_]{0,30}"),
		gen.AlphaString(),
	)
}

func TestChecksumOrderIndependent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("same pairs yield same checksum", prop.ForAll(
		func(m map[string]string) bool {
			// Rebuild the map to force a different insertion order.
			rebuilt := make(map[string]string, len(m))
			for k, v := range m {
				rebuilt[k] = v
			}
			return Checksum(m) == Checksum(rebuilt)
		},
		genConfigMap(),
	))

	properties.Property("changing any value changes the checksum", prop.ForAll(
		func(m map[string]string, key, value string) bool {
			if existing, ok := m[key]; ok && existing == value {
				return true
			}
			before := Checksum(m)
			mutated := make(map[string]string, len(m)+1)
			for k, v := range m {
				mutated[k] = v
			}
			mutated[key] = value
			return Checksum(mutated) != before
		},
		genConfigMap(),
		gen.RegexMatch("[A-Z][A-Z0-9_]{0,30}"),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestChecksumDelimiterValuesDoNotCollide(t *testing.T) {
	// A value embedding separator characters must not reproduce the
	// canonical form of a different map.
	pairs := []struct {
		name string
		a, b map[string]string
	}{
		{
			name: "newline and equals in value",
			a:    map[string]string{"A": "1\nB=2"},
			b:    map[string]string{"A": "1", "B": "2"},
		},
		{
			name: "newline in value vs extra key",
			a:    map[string]string{"K": "v\nK2=v2"},
			b:    map[string]string{"K": "v", "K2": "v2"},
		},
		{
			name: "separator shifted between key and value",
			a:    map[string]string{"AB": "C"},
			b:    map[string]string{"A": "BC"},
		},
	}
	for _, tc := range pairs {
		if Checksum(tc.a) == Checksum(tc.b) {
			t.Errorf("%s: distinct maps produced the same checksum", tc.name)
		}
	}
}

func TestChecksumStableLength(t *testing.T) {
	if got := Checksum(nil); len(got) != checksumLen {
		t.Fatalf("empty map checksum length = %d, want %d", len(got), checksumLen)
	}
	if got := Checksum(map[string]string{"A": "1", "B": "2"}); len(got) != checksumLen {
		t.Fatalf("checksum length = %d, want %d", len(got), checksumLen)
	}
}
