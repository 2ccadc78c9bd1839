//go:build blst

// Real BLS12-381 vote-signature verification using the supranational/blst
// library's MinPk scheme (public key in G1, signature in G2).
//
// Build with: go build -tags blst
package ncncore

import blst "github.com/supranational/blst/bindings/go"

func init() {
	defaultVoteAuthenticator = &blstVoteAuthenticator{}
}

type blstVoteAuthenticator struct{}

func (b *blstVoteAuthenticator) Name() string { return "blst" }

func (b *blstVoteAuthenticator) VerifyVote(pubkey, msg, sig []byte) bool {
	if !validVoteSignatureShape(pubkey, sig) {
		return false
	}
	pk := new(blst.P1Affine).Uncompress(pubkey)
	if pk == nil {
		return false
	}
	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}
	return s.Verify(true, pk, true, msg, VoteSignatureDST)
}
