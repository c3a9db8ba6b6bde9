package confirm

import (
	"fmt"
	"time"
)

// Result is the outcome of waiting for a transaction.
type Result int

const (
	Pending Result = iota
	Success
	Failed
	TimedOut
)

func (r Result) String() string {
	switch r {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// TimeoutError is returned when no receipt appeared before the deadline.
type TimeoutError struct {
	TxHash  string
	Timeout time.Duration
	LastErr error // last transient error seen while polling, if any
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("transaction %s not confirmed within %s", e.TxHash, e.Timeout)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// receipt holds the fields of eth_getTransactionReceipt the poller reads.
type receipt struct {
	Status      string `json:"status"`
	BlockNumber string `json:"blockNumber"`
	GasUsed     string `json:"gasUsed"`
}
