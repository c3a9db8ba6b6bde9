package confirm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/chapool/txengine/internal/rpc"
	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/wallet/codec"
)

const (
	// DefaultInterval is the fixed pause between polls.
	DefaultInterval = 3 * time.Second

	receiptStatusSuccessful = 1
)

// Poller waits for EVM transaction receipts. Transport errors while polling are retried
// until the deadline, node errors are returned.
type Poller struct {
	client   rpc.Caller
	Interval time.Duration
}

func NewPoller(client rpc.Caller) *Poller {
	return &Poller{
		client:   client,
		Interval: DefaultInterval,
	}
}

// WaitTx reports whether the transaction succeeded. It returns a *TimeoutError when no
// receipt appears within timeout.
func (p *Poller) WaitTx(ctx context.Context, txHash string, timeout time.Duration) (bool, error) {
	result, err := p.Wait(ctx, txHash, timeout)
	if err != nil {
		return false, err
	}
	return result == Success, nil
}

// Wait polls eth_getTransactionReceipt until a receipt exists or timeout elapses.
// A non-positive timeout polls once.
func (p *Poller) Wait(ctx context.Context, txHash string, timeout time.Duration) (Result, error) {
	log := util.LogFromContext(ctx).With().Str("tx_hash", txHash).Logger()

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	deadline := time.Now().Add(timeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	var lastErr error
	for attempt := 1; ; attempt++ {
		result, found, err := p.poll(pollCtx, txHash)
		switch {
		case err == nil && found:
			log.Info().Str("result", result.String()).Int("attempt", attempt).Msg("Transaction confirmed")
			return result, nil
		case err == nil:
			p.diagnose(pollCtx, log, txHash)
		case ctx.Err() != nil:
			return Pending, errors.Wrap(ctx.Err(), "waiting for transaction cancelled")
		case rpc.IsTransport(err):
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("Transient error while polling receipt")
		default:
			return Pending, errors.Wrap(err, "failed to get transaction receipt")
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return TimedOut, &TimeoutError{TxHash: txHash, Timeout: timeout, LastErr: lastErr}
		}

		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return Pending, errors.Wrap(ctx.Err(), "waiting for transaction cancelled")
		case <-timer.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context, txHash string) (Result, bool, error) {
	var r receipt
	found, err := rpc.CallInto(ctx, p.client, &r, "eth_getTransactionReceipt", txHash)
	if err != nil || !found {
		return Pending, false, err
	}

	status, err := codec.HexToBigInt(r.Status)
	if err != nil {
		return Pending, false, errors.Wrap(err, "invalid receipt status")
	}

	if status.IsInt64() && status.Int64() == receiptStatusSuccessful {
		return Success, true, nil
	}
	return Failed, true, nil
}

// diagnose logs whether a transaction without receipt is still in the mempool. It never affects the outcome.
func (p *Poller) diagnose(ctx context.Context, log zerolog.Logger, txHash string) {
	var tx json.RawMessage
	found, err := rpc.CallInto(ctx, p.client, &tx, "eth_getTransactionByHash", txHash)
	switch {
	case err != nil:
		log.Debug().Err(err).Msg("Failed to look up pending transaction")
	case found:
		log.Debug().Str("state", "pending_in_mempool").Msg("No receipt yet")
	default:
		log.Debug().Str("state", "unknown_to_node").Msg("No receipt yet")
	}
}
