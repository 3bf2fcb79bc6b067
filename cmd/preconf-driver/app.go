package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/urfave/cli/v2"

	"github.com/taikoxyz/surge-preconf-client/bindings"
	"github.com/taikoxyz/surge-preconf-client/driver/apiserver"
	"github.com/taikoxyz/surge-preconf-client/driver/eventsync"
	"github.com/taikoxyz/surge-preconf-client/driver/router"
	"github.com/taikoxyz/surge-preconf-client/pkg/blobsource"
	"github.com/taikoxyz/surge-preconf-client/pkg/catchup"
	"github.com/taikoxyz/surge-preconf-client/pkg/commitstore"
	"github.com/taikoxyz/surge-preconf-client/pkg/core"
	"github.com/taikoxyz/surge-preconf-client/pkg/derivation"
	"github.com/taikoxyz/surge-preconf-client/pkg/lookahead"
	"github.com/taikoxyz/surge-preconf-client/pkg/notifier"
	"github.com/taikoxyz/surge-preconf-client/pkg/notifier/rabbitmq"
	"github.com/taikoxyz/surge-preconf-client/pkg/p2p"
	"github.com/taikoxyz/surge-preconf-client/pkg/rpc"
	"github.com/taikoxyz/surge-preconf-client/pkg/restapi"

	echo "github.com/labstack/echo/v4"
)

// beaconClientTimeout bounds every single blob-sidecar request the blob
// source issues against the configured beacon/archival endpoints.
const beaconClientTimeout = 10 * time.Second

// eventBuffer sizes the P2P driver's validated NetworkEvent channel.
const eventBuffer = 256

// lookaheadCacheCapacity bounds the resolver's epoch cache; a handful of
// epochs is enough headroom for the lookback window plus the current one.
const lookaheadCacheCapacity = 8

// App owns the preconfirmation driver's lifecycle: event sync off L1,
// preconfirmation production through the engine, gossip/request-response
// P2P, peer catch-up, and the operator REST/WS surface.
type App struct {
	syncer *eventsync.Syncer
	host   *p2p.Host
	rest   *restapi.Server
	queue  notifier.Queue

	restAddr string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (a *App) Name() string { return "preconf-driver" }

// InitFromCli parses flags and wires every collaborator. It dials the L1
// and L2 engine endpoints, constructs the lookahead resolver, derivation
// pipeline, production router and event syncer, then the P2P host and
// operator REST/WS server on top of them. If a bootstrap peer is
// configured, it also runs a one-shot catch-up against that peer before
// returning, so Start never races a cold commitment cache against a
// /preconfBlocks request.
func (a *App) InitFromCli(ctx context.Context, c *cli.Context) error {
	cfg, err := NewConfigFromCliContext(c)
	if err != nil {
		return err
	}
	a.restAddr = cfg.RESTListenAddr

	engineClient, err := dialAuthenticatedEngineClient(ctx, cfg.L2EngineEndpoint, cfg.L2EngineJWTSecretFile)
	if err != nil {
		return fmt.Errorf("dial l2 engine endpoint: %w", err)
	}

	l1Client, err := ethclient.DialContext(ctx, cfg.L1WSEndpoint)
	if err != nil {
		return fmt.Errorf("dial l1 ws endpoint: %w", err)
	}

	engine := rpc.NewEmbeddedEngine(engineClient)
	parents := rpc.NewEmbeddedParentBlockSource(engineClient, cfg.ShastaForkHeight)

	inboxContract, err := bindings.NewInboxReader(cfg.InboxAddress, l1Client)
	if err != nil {
		return fmt.Errorf("bind inbox contract: %w", err)
	}
	inboxReader := rpc.NewEmbeddedInboxReader(inboxContract)

	logs := rpc.NewL1EventSource(l1Client, cfg.InboxAddress, common.Hash{})

	snapshotter, err := bindings.NewWhitelistSnapshotter(cfg.WhitelistAddress, l1Client, nil)
	if err != nil {
		return fmt.Errorf("bind whitelist contract: %w", err)
	}
	resolver, err := lookahead.NewResolver(cfg.LookaheadGenesis, cfg.LookaheadWindow*lookahead.SecondsInEpoch, lookaheadCacheCapacity, snapshotter)
	if err != nil {
		return fmt.Errorf("build lookahead resolver: %w", err)
	}

	beacon, err := blobsource.NewBeaconClient(ctx, cfg.BeaconEndpoint, beaconClientTimeout)
	if err != nil {
		return fmt.Errorf("dial beacon endpoint: %w", err)
	}
	var archival *blobsource.ArchivalClient
	if cfg.ArchivalEndpoint != "" {
		archival = blobsource.NewArchivalClient(cfg.ArchivalEndpoint, beaconClientTimeout)
	}
	blobs := blobsource.NewSource(beacon, archival, blobsource.NewFieldElementCoder())

	pipeline := derivation.NewPipeline(blobs, parents)

	// The router needs a CanonicalTipReader before the syncer that will
	// back it exists; tipRef indirects through a pointer set right after
	// both are constructed.
	tipRef := &syncerTipRef{}
	rt := router.New(engine, tipRef, pipeline)
	a.syncer = eventsync.New(logs, inboxReader, parents, rt)
	tipRef.syncer = a.syncer

	store := commitstore.NewWithRetentionLimit(cfg.CommitmentRetention)

	var queue notifier.Queue
	if cfg.QueueHost != "" {
		queue, err = rabbitmq.New(notifier.NewQueueOpts{
			Username: cfg.QueueUsername,
			Password: cfg.QueuePassword,
			Host:     cfg.QueueHost,
			Port:     cfg.QueuePort,
		})
		if err != nil {
			return fmt.Errorf("dial notification queue: %w", err)
		}
	}
	a.queue = queue
	eop := apiserver.NewEOPTracker(queue)

	applier := apiserver.NewApplier(store, parents, rt, cfg.ShastaForkHeight, eop)
	gossipValidator := p2p.NewLookaheadValidator(resolver)

	driver := p2p.New(store, gossipValidator, cfg.P2PRateLimitWindow, uint32(cfg.P2PMaxRequests), eventBuffer)
	ingress := p2p.NewGossipIngress(store, resolver, driver.Reputation, applier)

	host, err := p2p.NewHost(ctx, cfg.P2PListenAddrs, driver, ingress)
	if err != nil {
		return fmt.Errorf("start p2p host: %w", err)
	}
	a.host = host

	if cfg.P2PBootstrapPeer != "" {
		if err := a.catchUpFromBootstrapPeer(ctx, cfg.P2PBootstrapPeer, store, resolver); err != nil {
			log.Warn("catch-up from bootstrap peer failed, continuing cold", "error", err)
		}
	}

	api := apiserver.New(apiserver.Config{
		Router:     rt,
		Syncer:     a.syncer,
		Store:      store,
		Resolver:   resolver,
		Parents:    parents,
		ForkHeight: cfg.ShastaForkHeight,
		Slasher:    cfg.SlasherAddress,
		EOP:        eop,
	})

	var jwtSecret []byte
	if cfg.RESTJWTSecret != "" {
		jwtSecret = []byte(cfg.RESTJWTSecret)
	}
	rest, err := restapi.NewServer(restapi.NewServerOpts{
		API:         api,
		Echo:        echo.New(),
		CorsOrigins: cfg.RESTCorsOrigins,
		JWTSecret:   jwtSecret,
		EnableWS:    cfg.RESTEnableWS,
	})
	if err != nil {
		return fmt.Errorf("build rest server: %w", err)
	}
	a.rest = rest

	return nil
}

// catchUpFromBootstrapPeer dials peerAddr, anchors on its commitment tip,
// and walks the parent-commitment chain back to the driver's own confirmed
// sync boundary before normal operation begins.
func (a *App) catchUpFromBootstrapPeer(ctx context.Context, peerAddr string, store *commitstore.Store, resolver *lookahead.Resolver) error {
	addr, err := ma.NewMultiaddr(peerAddr)
	if err != nil {
		return fmt.Errorf("parse bootstrap peer addr: %w", err)
	}
	info, err := peer.AddrInfoFromP2pAddr(addr)
	if err != nil {
		return fmt.Errorf("resolve bootstrap peer info: %w", err)
	}
	if err := a.host.Connect(ctx, *info); err != nil {
		return fmt.Errorf("dial bootstrap peer: %w", err)
	}

	snapshot, err := a.syncer.ConfirmedSyncSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("resolve confirmed sync snapshot: %w", err)
	}
	var eventSyncTip uint64
	if snapshot.TargetBlockID != nil {
		eventSyncTip = *snapshot.TargetBlockID
	}

	engine := catchup.New(a.host.Peer(info.ID), store, resolver, catchup.Config{})
	chain, reachedBoundary, err := engine.BackfillFromPeerHead(ctx, eventSyncTip)
	if err != nil {
		return err
	}

	log.Info("caught up from bootstrap peer", "commitments", len(chain), "reachedBoundary", reachedBoundary)
	return nil
}

// Start runs the event syncer's canonical and preconfirmation-ingress
// loops, begins serving P2P gossip, and starts the REST/WS server.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.syncer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("event syncer exited", "error", err)
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.syncer.RunPreconfIngress(ctx); err != nil && ctx.Err() == nil {
			log.Error("preconfirmation ingress exited", "error", err)
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.rest.Start(a.restAddr); err != nil {
			log.Error("rest server exited", "error", err)
		}
	}()

	return nil
}

// Close tears down the REST server, stops the syncer's loops, and closes
// the notification queue mirror if one was configured.
func (a *App) Close(ctx context.Context) {
	if a.rest != nil {
		if err := a.rest.Shutdown(ctx); err != nil {
			log.Warn("rest server shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	if a.queue != nil {
		a.queue.Close()
	}
}

// syncerTipRef adapts a *eventsync.Syncer to router.CanonicalTipReader via a
// pointer set after construction, breaking the router/syncer construction
// cycle: the router is built first and needs a tip reader immediately, but
// the only syncer that will ever back it doesn't exist until the router
// does.
type syncerTipRef struct {
	syncer *eventsync.Syncer
}

func (r *syncerTipRef) CanonicalTip() core.CanonicalTip {
	return r.syncer.CanonicalTip()
}
