package flags

import (
	"time"

	"github.com/urfave/cli/v2"
)

var (
	L1WSEndpoint = &cli.StringFlag{
		Name:     "l1.ws",
		Usage:    "Websocket RPC endpoint of the L1 execution client",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"L1_WS_ENDPOINT"},
	}
	L2EngineEndpoint = &cli.StringFlag{
		Name:     "l2.engine",
		Usage:    "Authenticated engine-API endpoint of the embedded L2 execution client",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"L2_ENGINE_ENDPOINT"},
	}
	L2EngineJWTSecretFile = &cli.StringFlag{
		Name:     "l2.jwtSecret",
		Usage:    "Path to the JWT secret file shared with the L2 engine-API endpoint",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"L2_JWT_SECRET_FILE"},
	}
	InboxAddress = &cli.StringFlag{
		Name:     "l1.inboxAddress",
		Usage:    "Address of the Surge inbox contract on L1",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"L1_INBOX_ADDRESS"},
	}
	WhitelistAddress = &cli.StringFlag{
		Name:     "l1.whitelistAddress",
		Usage:    "Address of the preconf operator whitelist contract on L1",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"L1_WHITELIST_ADDRESS"},
	}
	SlasherAddress = &cli.StringFlag{
		Name:     "l1.slasherAddress",
		Usage:    "Address of the slasher contract named in every commitment this driver signs or validates",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"L1_SLASHER_ADDRESS"},
	}
	ShastaForkHeight = &cli.Uint64Flag{
		Name:     "l2.shastaForkHeight",
		Usage:    "L2 block number at which the Shasta fork activates",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"L2_SHASTA_FORK_HEIGHT"},
	}
	LookaheadGenesis = &cli.Uint64Flag{
		Name:     "lookahead.genesis",
		Usage:    "Beacon chain genesis timestamp used to derive lookahead epoch boundaries",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"LOOKAHEAD_GENESIS"},
	}
	LookaheadWindow = &cli.Uint64Flag{
		Name:     "lookahead.window",
		Usage:    "Number of epochs back from now within which the lookahead resolver accepts a timestamp; older ones are rejected as too old",
		Value:    4,
		Category: driverCategory,
		EnvVars:  []string{"LOOKAHEAD_WINDOW"},
	}
	BeaconEndpoint = &cli.StringFlag{
		Name:     "beacon.endpoint",
		Usage:    "Beacon node REST endpoint, used for blob sidecar retrieval",
		Required: true,
		Category: driverCategory,
		EnvVars:  []string{"BEACON_ENDPOINT"},
	}
	ArchivalEndpoint = &cli.StringFlag{
		Name:     "blobs.archivalEndpoint",
		Usage:    "Archival blob store endpoint, used once a slot falls out of beacon retention",
		Category: driverCategory,
		EnvVars:  []string{"BLOB_ARCHIVAL_ENDPOINT"},
	}
	MaxCommitmentRetention = &cli.IntFlag{
		Name:     "commitstore.retentionLimit",
		Usage:    "Max number of gossip-accepted commitments retained in memory",
		Value:    1024,
		Category: driverCategory,
		EnvVars:  []string{"COMMITSTORE_RETENTION_LIMIT"},
	}
	P2PRateLimitWindow = &cli.DurationFlag{
		Name:     "p2p.rateLimitWindow",
		Usage:    "Window over which each (peer, protocol) token bucket for inbound request-response traffic refills to its full request budget",
		Value:    time.Second,
		Category: p2pCategory,
		EnvVars:  []string{"P2P_RATE_LIMIT_WINDOW"},
	}
	P2PMaxRequests = &cli.Uint64Flag{
		Name:     "p2p.maxRequestsPerWindow",
		Usage:    "Max inbound requests per (peer, protocol) pair per rate limit window",
		Value:    32,
		Category: p2pCategory,
		EnvVars:  []string{"P2P_MAX_REQUESTS_PER_WINDOW"},
	}
	P2PListenAddrs = &cli.StringFlag{
		Name:     "p2p.listenAddrs",
		Usage:    "Comma-separated list of libp2p listen multiaddrs",
		Value:    "/ip4/0.0.0.0/tcp/9222",
		Category: p2pCategory,
		EnvVars:  []string{"P2P_LISTEN_ADDRS"},
	}
	P2PBootstrapPeer = &cli.StringFlag{
		Name:     "p2p.bootstrapPeer",
		Usage:    "Multiaddr (including /p2p/<peerID>) of a peer to dial and catch up commitments from on startup",
		Category: p2pCategory,
		EnvVars:  []string{"P2P_BOOTSTRAP_PEER"},
	}
	RESTListenAddr = &cli.StringFlag{
		Name:     "rest.listenAddr",
		Usage:    "Listen address for the operator REST/WS server",
		Value:    ":9546",
		Category: restCategory,
		EnvVars:  []string{"REST_LISTEN_ADDR"},
	}
	RESTCorsOrigins = &cli.StringFlag{
		Name:     "rest.corsOrigins",
		Usage:    "Comma-separated list of allowed CORS origins",
		Value:    "*",
		Category: restCategory,
		EnvVars:  []string{"REST_CORS_ORIGINS"},
	}
	RESTJWTSecret = &cli.StringFlag{
		Name:     "rest.jwtSecret",
		Usage:    "HS256 secret required on every REST/WS request except /healthz; unset disables auth",
		Category: restCategory,
		EnvVars:  []string{"REST_JWT_SECRET"},
	}
	RESTEnableWS = &cli.BoolFlag{
		Name:     "rest.enableWS",
		Usage:    "Expose the GET /ws end-of-sequencing notification feed",
		Value:    true,
		Category: restCategory,
		EnvVars:  []string{"REST_ENABLE_WS"},
	}
)

// DriverFlags is the full flag set for cmd/preconf-driver.
var DriverFlags = MergeFlags(CommonFlags, NotifierFlags, []cli.Flag{
	L1WSEndpoint,
	L2EngineEndpoint,
	L2EngineJWTSecretFile,
	InboxAddress,
	WhitelistAddress,
	SlasherAddress,
	ShastaForkHeight,
	LookaheadGenesis,
	LookaheadWindow,
	BeaconEndpoint,
	ArchivalEndpoint,
	MaxCommitmentRetention,
	P2PRateLimitWindow,
	P2PMaxRequests,
	P2PListenAddrs,
	P2PBootstrapPeer,
	RESTListenAddr,
	RESTCorsOrigins,
	RESTJWTSecret,
	RESTEnableWS,
})
