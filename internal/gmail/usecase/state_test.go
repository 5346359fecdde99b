package usecase

import (
	"strings"
	"testing"

	gmaildomain "campushub-backend/internal/gmail/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestState_RoundTrip(t *testing.T) {
	state := signState("user-123", "secret")
	userID, err := verifyState(state, "secret")
	if err != nil {
		t.Fatalf("verifyState returned error: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Expected user-123, got %q", userID)
	}
}

func TestState_WrongSecret(t *testing.T) {
	state := signState("user-123", "secret")
	if _, err := verifyState(state, "other-secret"); err != gmaildomain.ErrInvalidState {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestState_Malformed(t *testing.T) {
	cases := []string{
		"",
		"no-dot",
		"payload.",
		".signature",
		"a.b.c",
		"!!!.???",
	}
	for _, state := range cases {
		if _, err := verifyState(state, "secret"); err != gmaildomain.ErrInvalidState {
			t.Errorf("verifyState(%q) = %v, want ErrInvalidState", state, err)
		}
	}
}

// Any signed state verifies under the signing secret and yields the original
// user id; any single-character mutation of the signature is rejected.
func TestProperty_StateSignVerify(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("signed_state_roundtrips", prop.ForAll(
		func(userID, secret string) bool {
			if userID == "" || secret == "" {
				return true
			}
			state := signState(userID, secret)
			got, err := verifyState(state, secret)
			return err == nil && got == userID
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("tampered_signature_rejected", prop.ForAll(
		func(userID, secret string) bool {
			if userID == "" || secret == "" {
				return true
			}
			state := signState(userID, secret)
			payload, sig, _ := strings.Cut(state, ".")

			// Flip one signature character to a value it does not already have.
			flipped := byte('A')
			if sig[0] == flipped {
				flipped = 'B'
			}
			tampered := payload + "." + string(flipped) + sig[1:]

			_, err := verifyState(tampered, secret)
			return err == gmaildomain.ErrInvalidState
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
