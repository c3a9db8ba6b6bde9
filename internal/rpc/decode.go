package rpc

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/util/jsonx"
	"github.com/chapool/txengine/internal/wallet/codec"
)

// CallInto decodes the result of method into out. A null result leaves out untouched and reports false.
func CallInto(ctx context.Context, c Caller, out any, method string, params ...any) (bool, error) {
	raw, err := c.Call(ctx, method, params...)
	if err != nil {
		return false, err
	}

	if jsonx.IsNull(raw) {
		return false, nil
	}

	if err := jsonx.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "failed to decode %s result", method)
	}

	return true, nil
}

// CallString returns a string result.
func CallString(ctx context.Context, c Caller, method string, params ...any) (string, error) {
	var s string
	found, err := CallInto(ctx, c, &s, method, params...)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &RPCError{Message: NoResultMessage, Method: method}
	}
	return s, nil
}

// CallBigInt returns a numeric result. Strings are read as hex quantities, JSON numbers as base 10.
func CallBigInt(ctx context.Context, c Caller, method string, params ...any) (*big.Int, error) {
	raw, err := c.Call(ctx, method, params...)
	if err != nil {
		return nil, err
	}

	if jsonx.IsNull(raw) {
		return nil, &RPCError{Message: NoResultMessage, Method: method}
	}

	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := jsonx.Unmarshal(raw, &s); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s result", method)
		}
		return codec.HexToBigInt(s)
	}

	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, errors.Errorf("failed to decode %s result %s as integer", method, text)
	}
	return n, nil
}

// CallUint64 returns a numeric result that must fit in uint64.
func CallUint64(ctx context.Context, c Caller, method string, params ...any) (uint64, error) {
	n, err := CallBigInt(ctx, c, method, params...)
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, errors.Errorf("%s result %s overflows uint64", method, n)
	}
	return n.Uint64(), nil
}
