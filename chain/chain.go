// Package chain defines the abstract boundary between the indexing engine
// and a concrete Substrate-family RPC transport. Nothing in this package
// encodes JSON-RPC or SCALE wire framing; a concrete implementation
// (a subxt-equivalent client, a custom WebSocket client) lives outside
// this module and is supplied to the engine as a Client.
package chain

import (
	"context"

	"github.com/flamewire/taotrace/event"
)

// RawEvent is one undecoded event as reported by the chain client: the
// pallet/variant names the client already resolved from chain metadata,
// the raw SCALE-encoded field payload, and which phase of block execution
// produced it.
//
// DecodeError is non-nil when the client's metadata cache could not
// resolve this event's pallet/variant names — typically because the
// chain applied a runtime upgrade introducing an event the client
// doesn't yet recognize. PalletName, VariantName, and Payload are
// meaningless when DecodeError is set; the engine surfaces it as
// EventDecodingFailed rather than forwarding the event to handlers.
type RawEvent struct {
	PalletName     string
	VariantName    string
	Payload        []byte
	Phase          event.Phase
	ExtrinsicIndex uint32
	DecodeError    error
}

// BlockNotification is one block delivered by a live subscription.
type BlockNotification struct {
	BlockNumber uint64
	BlockHash   event.Hash
	RawEvents   []RawEvent
}

// Client is the chain-RPC transport the engine consumes. Implementations
// are responsible for resolving raw SCALE event data against chain
// metadata down to the (pallet_name, variant_name, payload) shape above;
// the engine itself never touches wire bytes.
type Client interface {
	// GetFinalizedTip returns the most recently finalized block.
	GetFinalizedTip(ctx context.Context) (blockNumber uint64, hash event.Hash, err error)

	// GetBlockAt performs a point lookup for a specific block, used during
	// catch-up and gap-filling.
	GetBlockAt(ctx context.Context, blockNumber uint64) (hash event.Hash, rawEvents []RawEvent, err error)

	// SubscribeFinalized opens a live feed of finalized blocks. The
	// subscription may emit gaps (e.g. after a transport reconnect) but
	// must never emit out of ascending block order.
	SubscribeFinalized(ctx context.Context) (Subscription, error)
}

// Subscription represents an active live-block feed.
type Subscription interface {
	// Notifications returns the channel new blocks arrive on. It is closed
	// when the subscription ends, whether by Unsubscribe or by the
	// underlying transport failing.
	Notifications() <-chan BlockNotification

	// Err returns a channel that receives at most one error explaining why
	// Notifications closed, then is itself closed. A clean Unsubscribe
	// yields no error.
	Err() <-chan error

	// Unsubscribe terminates the subscription and closes both channels.
	Unsubscribe()
}
