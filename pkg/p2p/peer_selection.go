package p2p

import "github.com/taikoxyz/surge-preconf-client/pkg/p2p/reputation"

// ChoosePeer picks which peer to dial an outbound request to: the
// preferred peer if one was given, otherwise any connected peer that isn't
// banned.
func ChoosePeer(preferred string, connected []string, store *reputation.Store) (string, bool) {
	if preferred != "" {
		return preferred, true
	}
	for _, peerID := range connected {
		if !store.IsBanned(peerID) {
			return peerID, true
		}
	}
	return "", false
}
