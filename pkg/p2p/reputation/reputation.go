// Package reputation scores peers by discrete actions (successful or
// failed request/response exchanges, dial failures), decaying scores
// exponentially over time and deriving ban/greylist status from the
// decayed score.
package reputation

import (
	"math"
	"sync"
	"time"

	"github.com/multiformats/go-multihash"
)

// Action is a discrete event that affects a peer's score. GossipValid and
// GossipInvalid are accepted but scored zero: gossip scoring is handled by
// the pubsub layer's own peer-scoring, and double-counting it here would
// skew the ban threshold.
type Action int

const (
	GossipValid Action = iota
	GossipInvalid
	ReqRespSuccess
	ReqRespError
	Timeout
	DialFailure
)

// Weights maps actions to score deltas.
type Weights struct {
	ReqRespSuccess float64
	ReqRespError   float64
	Timeout        float64
	DialFailure    float64
}

// DefaultWeights mirrors conventional reth reputation-change magnitudes:
// a modest reward for success, and penalties of increasing severity for
// bad responses, timeouts, and failed dials.
var DefaultWeights = Weights{
	ReqRespSuccess: 1,
	ReqRespError:   -16,
	Timeout:        -32,
	DialFailure:    -64,
}

func (w Weights) delta(action Action) float64 {
	switch action {
	case ReqRespSuccess:
		return w.ReqRespSuccess
	case ReqRespError:
		return w.ReqRespError
	case Timeout:
		return w.Timeout
	case DialFailure:
		return w.DialFailure
	default:
		return 0
	}
}

// BannedReputation is the score at or below which a peer is banned;
// greylist kicks in at half that.
const BannedReputation float64 = -100

// Config holds thresholds and decay tuning for a Store.
type Config struct {
	BanThreshold      float64
	GreylistThreshold float64
	Halflife          time.Duration
	Weights           Weights
}

// DefaultConfig matches the values the network driver wires by default.
func DefaultConfig() Config {
	return Config{
		BanThreshold:      BannedReputation,
		GreylistThreshold: BannedReputation / 2,
		Halflife:          10 * time.Minute,
		Weights:           DefaultWeights,
	}
}

type entry struct {
	score       float64
	lastUpdated time.Time
}

// Event describes the outcome of applying an action to a peer.
type Event struct {
	PeerID        string
	NewScore      float64
	Action        Action
	IsBanned      bool
	IsGreylisted  bool
	WasBanned     bool
	WasGreylisted bool
}

// Store tracks per-peer reputation scores and derived ban/greylist sets.
// Peer identities are plain strings so callers can key by either a
// libp2p peer id or a derived 64-byte reth-style id (see DerivedPeerID).
type Store struct {
	mu         sync.Mutex
	cfg        Config
	scores     map[string]*entry
	banned     map[string]struct{}
	greylisted map[string]struct{}
}

func NewStore(cfg Config) *Store {
	return &Store{
		cfg:        cfg,
		scores:     make(map[string]*entry),
		banned:     make(map[string]struct{}),
		greylisted: make(map[string]struct{}),
	}
}

// Apply scores an action against peerID, decaying its prior score by
// elapsed time before adding the action's delta.
func (s *Store) Apply(peerID string, action Action) Event {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, wasBanned := s.banned[peerID]
	_, wasGrey := s.greylisted[peerID]

	e, ok := s.scores[peerID]
	if !ok {
		e = &entry{lastUpdated: now}
		s.scores[peerID] = e
	}

	e.score = decay(e.score, e.lastUpdated, now, s.cfg.Halflife)
	e.score += s.cfg.Weights.delta(action)
	e.lastUpdated = now

	s.updateLists(peerID, e.score)

	_, isBanned := s.banned[peerID]
	_, isGrey := s.greylisted[peerID]

	return Event{
		PeerID:        peerID,
		NewScore:      e.score,
		Action:        action,
		IsBanned:      isBanned,
		IsGreylisted:  isGrey,
		WasBanned:     wasBanned,
		WasGreylisted: wasGrey,
	}
}

// IsBanned reports whether peerID is currently banned.
func (s *Store) IsBanned(peerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.banned[peerID]
	return ok
}

// AllowDial reports whether a dial to peerID should proceed. The default
// policy refuses only banned peers; callers needing IP/subnet rules wrap
// this with their own gating.
func (s *Store) AllowDial(peerID string) bool {
	return !s.IsBanned(peerID)
}

func (s *Store) updateLists(peerID string, score float64) {
	switch {
	case score <= s.cfg.BanThreshold:
		s.banned[peerID] = struct{}{}
		delete(s.greylisted, peerID)
	case score <= s.cfg.GreylistThreshold:
		s.greylisted[peerID] = struct{}{}
		delete(s.banned, peerID)
	default:
		delete(s.banned, peerID)
		delete(s.greylisted, peerID)
	}
}

func decay(score float64, last, now time.Time, halflife time.Duration) float64 {
	dt := now.Sub(last).Seconds()
	if dt <= 0 {
		return score
	}
	hl := halflife.Seconds()
	if hl < 1 {
		hl = 1
	}
	lambda := math.Ln2 / hl
	return score * math.Exp(-lambda*dt)
}

// DerivedPeerID extracts the 64-byte digest from a libp2p peer id's
// multihash, the identity reth-style reputation backends key scores under.
// It returns ok=false when the digest isn't exactly 64 bytes, in which case
// callers should fall back to scoring under the raw libp2p id string.
func DerivedPeerID(libp2pPeerIDBytes []byte) (id [64]byte, ok bool) {
	decoded, err := multihash.Decode(libp2pPeerIDBytes)
	if err != nil {
		return id, false
	}
	if len(decoded.Digest) != 64 {
		return id, false
	}
	copy(id[:], decoded.Digest)
	return id, true
}
