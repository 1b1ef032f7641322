package token

import (
	"testing"
)

// Test looking up keywords succeeds, and unknown identifiers don't.
func TestLookup(t *testing.T) {

	for key, val := range keywords {
		if key == "true" || key == "false" {
			continue
		}
		if LookupIdentifier(key) != val {
			t.Errorf("Lookup of %s failed", key)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if LookupIdentifier("total_count") != IDENT {
		t.Errorf("expected an unreserved identifier to resolve to IDENT")
	}
}

func TestIsTypeKeyword(t *testing.T) {
	if !IsTypeKeyword(INT_KW) {
		t.Errorf("expected %q to be a type keyword", INT_KW)
	}
	if IsTypeKeyword(IF) {
		t.Errorf("did not expect %q to be a type keyword", IF)
	}
}
