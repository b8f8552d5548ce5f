// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package triggered implements the child-transaction fan-out of §4.5:
// deriving a child's address, reserving its nonce, and handing the
// batch to the rollup bridge. The address derivation follows a
// create2-style scheme — deterministic when the parent supplies a salt
// nonce, random otherwise — built on the pack's own hashing primitive
// rather than an Ethereum-specific one.
package triggered

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/luxfi/crypto/hashing"

	"github.com/luxfi/txconsensus/txtypes"
)

// Deriver assigns addresses to a receipt's pending children. Nonce
// reservation happens in store.Store.InsertTransaction itself, which is
// the only place that can atomically read-then-claim the next nonce for
// a from_address.
type Deriver struct{}

// Derive resolves ToAddress for each pending transaction that needs one
// (a DEPLOY_CONTRACT child with no explicit target), returning the
// fully-addressed children in the same order.
func (d *Deriver) Derive(parent txtypes.Address, children []txtypes.PendingTransaction) ([]txtypes.PendingTransaction, error) {
	out := make([]txtypes.PendingTransaction, len(children))
	for i, c := range children {
		resolved := c

		if c.Type == txtypes.TxDeployContract && c.ToAddress == "" {
			addr, err := deriveAddress(parent, c.SaltNonce)
			if err != nil {
				return nil, err
			}
			resolved.ToAddress = addr
		}

		out[i] = resolved
	}
	return out, nil
}

// deriveAddress implements §4.5's address scheme: when saltNonce is
// non-zero, the child's address is deterministic — a hash over the
// parent address and salt, so the same (parent, salt) pair always
// yields the same contract address (create2-style reproducibility).
// When saltNonce is zero, a fresh random address is drawn instead.
func deriveAddress(parent txtypes.Address, saltNonce uint64) (txtypes.Address, error) {
	if saltNonce == 0 {
		return randomAddress()
	}

	buf := make([]byte, len(parent)+8)
	copy(buf, parent)
	binary.BigEndian.PutUint64(buf[len(parent):], saltNonce)

	digest := hashing.ComputeHash256Array(buf)
	return txtypes.Address(encodeAddress(digest[len(digest)-20:])), nil
}

func randomAddress() (txtypes.Address, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return txtypes.Address(encodeAddress(raw)), nil
}

func encodeAddress(raw []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 2+2*len(raw))
	out[0], out[1] = '0', 'x'
	for i, b := range raw {
		out[2+2*i] = hextable[b>>4]
		out[3+2*i] = hextable[b&0x0f]
	}
	return string(out)
}
