package ncncore

import "testing"

func TestDefaultVoteAuthenticatorFailsClosed(t *testing.T) {
	auth := DefaultVoteAuthenticator()
	if auth == nil {
		t.Fatal("expected a default authenticator to be installed")
	}
	msg := VoteMessage(addr(1), 5, NewBallot(WeatherSunny))
	pubkey := make([]byte, VotePubKeySize)
	sig := make([]byte, VoteSignatureSize)
	if auth.VerifyVote(pubkey, msg, sig) {
		t.Fatalf("expected default (non-blst) authenticator to reject any signature")
	}
}

func TestValidVoteSignatureShape(t *testing.T) {
	if validVoteSignatureShape(make([]byte, VotePubKeySize-1), make([]byte, VoteSignatureSize)) {
		t.Fatalf("expected short pubkey to fail shape check")
	}
	if validVoteSignatureShape(make([]byte, VotePubKeySize), make([]byte, VoteSignatureSize+1)) {
		t.Fatalf("expected wrong-length sig to fail shape check")
	}
	if !validVoteSignatureShape(make([]byte, VotePubKeySize), make([]byte, VoteSignatureSize)) {
		t.Fatalf("expected correctly sized pubkey/sig to pass shape check")
	}
}

func TestVoteMessageDeterministic(t *testing.T) {
	ballot := NewBallot(WeatherCloudy)
	a := VoteMessage(addr(1), 42, ballot)
	b := VoteMessage(addr(1), 42, ballot)
	if string(a) != string(b) {
		t.Fatalf("expected VoteMessage to be deterministic for identical inputs")
	}
	c := VoteMessage(addr(1), 43, ballot)
	if string(a) == string(c) {
		t.Fatalf("expected VoteMessage to vary with epoch")
	}
}

func TestSetVoteAuthenticatorOverride(t *testing.T) {
	original := DefaultVoteAuthenticator()
	defer SetVoteAuthenticator(original)

	SetVoteAuthenticator(&alwaysValidAuthenticator{})
	if DefaultVoteAuthenticator().Name() != "always-valid-fake" {
		t.Fatalf("expected override to take effect")
	}
}

type alwaysValidAuthenticator struct{}

func (a *alwaysValidAuthenticator) Name() string { return "always-valid-fake" }
func (a *alwaysValidAuthenticator) VerifyVote(pubkey, msg, sig []byte) bool {
	return true
}
