package blobsource

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
	"github.com/go-resty/resty/v2"

	"github.com/taikoxyz/surge-preconf-client/bindings/encoding"
)

// BeaconClient is a thin resty wrapper over the subset of the beacon API
// names, grounded on the teacher's resty-based alt-DA client shape
// (base URL + timeout + typed methods), generalized to the plain beacon
// endpoints this core actually needs.
type BeaconClient struct {
	http            *resty.Client
	genesisTime     uint64
	secondsPerSlot  uint64
}

// NewBeaconClient dials a beacon node base URL and loads genesis time and
// slot duration via /eth/v1/beacon/genesis and /eth/v1/config/spec.
func NewBeaconClient(ctx context.Context, baseURL string, timeout time.Duration) (*BeaconClient, error) {
	c := &BeaconClient{http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout)}

	var genesis struct {
		Data struct {
			GenesisTime string `json:"genesis_time"`
		} `json:"data"`
	}
	if _, err := c.http.R().SetContext(ctx).SetResult(&genesis).Get("/eth/v1/beacon/genesis"); err != nil {
		return nil, fmt.Errorf("fetch genesis: %w", err)
	}

	var spec struct {
		Data map[string]string `json:"data"`
	}
	if _, err := c.http.R().SetContext(ctx).SetResult(&spec).Get("/eth/v1/config/spec"); err != nil {
		return nil, fmt.Errorf("fetch spec: %w", err)
	}

	genesisTime, err := parseUint(genesis.Data.GenesisTime)
	if err != nil {
		return nil, fmt.Errorf("parse genesis_time: %w", err)
	}
	secondsPerSlot, err := parseUint(spec.Data["SECONDS_PER_SLOT"])
	if err != nil {
		return nil, fmt.Errorf("parse SECONDS_PER_SLOT: %w", err)
	}

	c.genesisTime = genesisTime
	c.secondsPerSlot = secondsPerSlot
	return c, nil
}

func parseUint(s string) (uint64, error) {
	var v uint64
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

// SlotForTimestamp converts an L1 timestamp to the beacon slot that would
// have produced it, walking backward over missed slots up to
// maxMissedSlotWalkback times.
func (c *BeaconClient) SlotForTimestamp(ctx context.Context, timestamp uint64) (uint64, error) {
	if timestamp < c.genesisTime {
		return 0, fmt.Errorf("timestamp %d before genesis %d", timestamp, c.genesisTime)
	}

	slot := (timestamp - c.genesisTime) / c.secondsPerSlot

	for steps := 0; steps < maxMissedSlotWalkback; steps++ {
		has, err := c.hasExecutionPayload(ctx, slot)
		if err != nil {
			return 0, err
		}
		if has {
			return slot, nil
		}
		if slot == 0 {
			break
		}
		slot--
	}

	return 0, fmt.Errorf("no slot with an execution payload found within %d steps", maxMissedSlotWalkback)
}

func (c *BeaconClient) hasExecutionPayload(ctx context.Context, slot uint64) (bool, error) {
	resp, err := c.http.R().SetContext(ctx).
		Get(fmt.Sprintf("/eth/v2/beacon/blocks/%d", slot))
	if err != nil {
		return false, err
	}
	if resp.StatusCode() == 404 {
		return false, nil
	}
	if resp.IsError() {
		return false, fmt.Errorf("beacon block lookup for slot %d: status %d", slot, resp.StatusCode())
	}

	var body struct {
		Data struct {
			Message struct {
				Body struct {
					ExecutionPayload *struct {
						BlockNumber string `json:"block_number"`
					} `json:"execution_payload"`
				} `json:"body"`
			} `json:"message"`
		} `json:"data"`
	}
	if err := jsonUnmarshal(resp.Body(), &body); err != nil {
		return false, err
	}

	return body.Data.Message.Body.ExecutionPayload != nil, nil
}

// FetchSidecars fetches /eth/v1/beacon/blob_sidecars/<slot> and returns the
// raw blob bytes in the order of the requested hashes.
func (c *BeaconClient) FetchSidecars(ctx context.Context, slot uint64, hashes []common.Hash) ([][]byte, error) {
	var body struct {
		Data []struct {
			Index         string `json:"index"`
			Blob          string `json:"blob"`
			KZGCommitment string `json:"kzg_commitment"`
		} `json:"data"`
	}

	resp, err := c.http.R().SetContext(ctx).SetResult(&body).
		Get(fmt.Sprintf("/eth/v1/beacon/blob_sidecars/%d", slot))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("blob sidecars for slot %d: status %d", slot, resp.StatusCode())
	}

	byHash := make(map[common.Hash][]byte, len(body.Data))
	for _, sidecar := range body.Data {
		commitment, err := hexToCommitment(sidecar.KZGCommitment)
		if err != nil {
			return nil, err
		}
		blob, err := hexToBytes(sidecar.Blob)
		if err != nil {
			return nil, err
		}
		byHash[encoding.KZGToVersionedHash(commitment)] = blob
	}

	out := make([][]byte, 0, len(hashes))
	for _, h := range hashes {
		blob, ok := byHash[h]
		if !ok {
			return nil, fmt.Errorf("sidecar for versioned hash %s not present in slot %d response", h, slot)
		}
		out = append(out, blob)
	}
	return out, nil
}

func hexToCommitment(s string) (kzg4844.Commitment, error) {
	var c kzg4844.Commitment
	b, err := hexToBytes(s)
	if err != nil {
		return c, err
	}
	if len(b) != len(c) {
		return c, fmt.Errorf("unexpected commitment length %d", len(b))
	}
	copy(c[:], b)
	return c, nil
}
