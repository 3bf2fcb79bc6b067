package main

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/taikoxyz/surge-preconf-client/cmd/flags"
)

// Config holds the parsed flags for the preconfirmation driver.
type Config struct {
	L1WSEndpoint          string
	L2EngineEndpoint      string
	L2EngineJWTSecretFile string
	InboxAddress          common.Address
	WhitelistAddress      common.Address
	SlasherAddress        common.Address
	ShastaForkHeight      uint64
	LookaheadGenesis      uint64
	LookaheadWindow       uint64
	BeaconEndpoint        string
	ArchivalEndpoint      string
	CommitmentRetention   int
	P2PRateLimitWindow    time.Duration
	P2PMaxRequests        uint64
	P2PListenAddrs        []string
	P2PBootstrapPeer      string
	RESTListenAddr        string
	RESTCorsOrigins       []string
	RESTJWTSecret         string
	RESTEnableWS          bool

	QueueUsername string
	QueuePassword string
	QueueHost     string
	QueuePort     string
}

// NewConfigFromCliContext builds a Config from parsed command-line flags.
func NewConfigFromCliContext(c *cli.Context) (*Config, error) {
	cfg := &Config{
		L1WSEndpoint:          c.String(flags.L1WSEndpoint.Name),
		L2EngineEndpoint:      c.String(flags.L2EngineEndpoint.Name),
		L2EngineJWTSecretFile: c.String(flags.L2EngineJWTSecretFile.Name),
		InboxAddress:          common.HexToAddress(c.String(flags.InboxAddress.Name)),
		WhitelistAddress:      common.HexToAddress(c.String(flags.WhitelistAddress.Name)),
		SlasherAddress:        common.HexToAddress(c.String(flags.SlasherAddress.Name)),
		ShastaForkHeight:      c.Uint64(flags.ShastaForkHeight.Name),
		LookaheadGenesis:      c.Uint64(flags.LookaheadGenesis.Name),
		LookaheadWindow:       c.Uint64(flags.LookaheadWindow.Name),
		BeaconEndpoint:        c.String(flags.BeaconEndpoint.Name),
		ArchivalEndpoint:      c.String(flags.ArchivalEndpoint.Name),
		CommitmentRetention:   c.Int(flags.MaxCommitmentRetention.Name),
		P2PRateLimitWindow:    c.Duration(flags.P2PRateLimitWindow.Name),
		P2PMaxRequests:        c.Uint64(flags.P2PMaxRequests.Name),
		P2PBootstrapPeer:      c.String(flags.P2PBootstrapPeer.Name),
		RESTListenAddr:        c.String(flags.RESTListenAddr.Name),
		RESTJWTSecret:         c.String(flags.RESTJWTSecret.Name),
		RESTEnableWS:          c.Bool(flags.RESTEnableWS.Name),
		QueueUsername:         c.String(flags.QueueUsername.Name),
		QueuePassword:         c.String(flags.QueuePassword.Name),
		QueueHost:             c.String(flags.QueueHost.Name),
		QueuePort:             c.String(flags.QueuePort.Name),
	}

	if raw := c.String(flags.RESTCorsOrigins.Name); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.RESTCorsOrigins = append(cfg.RESTCorsOrigins, origin)
			}
		}
	}

	if raw := c.String(flags.P2PListenAddrs.Name); raw != "" {
		for _, addr := range strings.Split(raw, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.P2PListenAddrs = append(cfg.P2PListenAddrs, addr)
			}
		}
	}

	return cfg, nil
}
