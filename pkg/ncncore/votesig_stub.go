//go:build !blst

// Default vote-signature backend when built without CGO/blst. It performs
// no real cryptography and always reports a signature invalid, so code that
// wires VoteAuthenticator into its vote path fails closed rather than
// silently accepting unverified votes when the real backend isn't linked.
package ncncore

func init() {
	defaultVoteAuthenticator = &stubVoteAuthenticator{}
}

type stubVoteAuthenticator struct{}

func (s *stubVoteAuthenticator) Name() string { return "stub" }

func (s *stubVoteAuthenticator) VerifyVote(pubkey, msg, sig []byte) bool {
	return false
}
