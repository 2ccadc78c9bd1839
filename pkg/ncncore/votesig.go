// votesig.go defines VoteAuthenticator, an optional signature-verification
// step a caller may run before BallotBox.CastVote. Ballot consensus itself
// never requires signatures (OperatorVote is authenticated by the
// caller's own access control); this is additive.
package ncncore

import "errors"

// VoteSignatureDST is the domain separation tag mixed into every vote
// signature, so a signature produced for one purpose can never be replayed
// as a vote.
var VoteSignatureDST = []byte("NCN_VOTE_BLS12381G2_XMD:SHA-256_SSWU_RO_")

// BLS12-381 MinPk encoding sizes: public keys in G1, signatures in G2.
const (
	VotePubKeySize    = 48
	VoteSignatureSize = 96
)

// Vote authenticator errors.
var (
	ErrVoteSignatureInvalid   = errors.New("votesig: signature verification failed")
	ErrVotePubKeyWrongSize    = errors.New("votesig: public key has wrong size")
	ErrVoteSignatureWrongSize = errors.New("votesig: signature has wrong size")
)

// VoteAuthenticator verifies an operator's vote signature over a ballot
// message, authenticated by the operator's registered BLS public key.
// Implementations must be safe for concurrent use.
type VoteAuthenticator interface {
	// Name identifies the backend, for logging.
	Name() string
	// VerifyVote reports whether sig is a valid signature by pubkey over
	// msg. pubkey must be VotePubKeySize bytes and sig VoteSignatureSize
	// bytes; callers that pass the wrong length get false, not a panic.
	VerifyVote(pubkey, msg, sig []byte) bool
}

// VoteMessage builds the canonical message an operator signs for a vote:
// the NCN, epoch, and ballot weather status, domain-separated from any
// other signature an operator's key might produce.
func VoteMessage(ncn NCNID, epoch uint64, ballot Ballot) []byte {
	msg := make([]byte, 0, len(ncn)+8+1)
	msg = append(msg, ncn.Bytes()...)
	for i := 7; i >= 0; i-- {
		msg = append(msg, byte(epoch>>(8*uint(i))))
	}
	msg = append(msg, ballot.WeatherStatus)
	return msg
}

// defaultVoteAuthenticator is selected at init time: votesig_blst.go (tag
// blst) installs the real backend; votesig_stub.go (tag !blst) installs a
// backend that always reports signatures invalid, so a caller who actually
// wires signature checking into CastVote fails safely without the blst
// build tag rather than silently accepting anything.
var defaultVoteAuthenticator VoteAuthenticator

// DefaultVoteAuthenticator returns the process-wide VoteAuthenticator
// selected by build tag.
func DefaultVoteAuthenticator() VoteAuthenticator {
	return defaultVoteAuthenticator
}

// SetVoteAuthenticator overrides the process-wide VoteAuthenticator, for
// tests that want to inject a fake.
func SetVoteAuthenticator(a VoteAuthenticator) {
	if a != nil {
		defaultVoteAuthenticator = a
	}
}

func validVoteSignatureShape(pubkey, sig []byte) bool {
	return len(pubkey) == VotePubKeySize && len(sig) == VoteSignatureSize
}
