// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package selection implements validator-snapshot selection: the
// per-re-entry draw table in spec §4.2.1, leader shuffling in §4.2.2,
// and the appeal extra-validator math in §4.6. Draws are VRF-style
// weighted-without-replacement over validator stake, falling back to
// uniform sampling when weights are absent, using the teacher's
// generic sampler package.
package selection

import (
	"errors"

	"github.com/luxfi/txconsensus/internal/collections/sampler"
	"github.com/luxfi/txconsensus/txtypes"
)

// ErrInsufficientValidators is returned when a pool cannot satisfy a
// requested draw size.
var ErrInsufficientValidators = errors.New("selection: insufficient validators in pool")

// Selector draws and shuffles validator snapshots. It is not safe for
// concurrent use by multiple goroutines over the same transaction
// attempt; the worker holds one Selector per claimed transaction.
type Selector struct {
	source sampler.Source
}

// NewSelector returns a Selector seeded from source. Pass a fixed-seed
// source in tests for determinism; production wiring uses a
// time-seeded one per worker.
func NewSelector(source sampler.Source) *Selector {
	return &Selector{source: source}
}

// DrawFresh draws n validators from pool without replacement, weighted
// by stake (falling back to uniform weight 1 when every stake is zero).
func (s *Selector) DrawFresh(pool txtypes.Snapshot, n int) (txtypes.Snapshot, error) {
	if n <= 0 {
		return txtypes.Snapshot{}, nil
	}
	if len(pool) < n {
		return nil, ErrInsufficientValidators
	}

	weights := make([]uint64, len(pool))
	anyStake := false
	for i, v := range pool {
		weights[i] = v.Stake
		if v.Stake > 0 {
			anyStake = true
		}
	}
	if !anyStake {
		for i := range weights {
			weights[i] = 1
		}
	}

	w := sampler.NewWeightedWithoutReplacement(s.source)
	if err := w.Initialize(weights); err != nil {
		return nil, err
	}
	indices, ok := w.Sample(n)
	if !ok {
		return nil, ErrInsufficientValidators
	}

	out := make(txtypes.Snapshot, n)
	for i, idx := range indices {
		out[i] = pool[idx]
	}
	return out, nil
}

// ShuffleForProposing randomizes validator order and splits the result
// into a leader and the remaining committee (§4.2.2).
func (s *Selector) ShuffleForProposing(validators txtypes.Snapshot) (leader txtypes.Validator, committee txtypes.Snapshot) {
	if len(validators) == 0 {
		return txtypes.Validator{}, nil
	}
	shuffled := make(txtypes.Snapshot, len(validators))
	copy(shuffled, validators)

	u := sampler.NewUniform()
	if err := u.Initialize(len(shuffled)); err == nil {
		if indices, ok := u.Sample(len(shuffled)); ok {
			reordered := make(txtypes.Snapshot, len(shuffled))
			for i, idx := range indices {
				reordered[i] = shuffled[idx]
			}
			shuffled = reordered
		}
	}
	return shuffled[0], shuffled[1:]
}

// excludeSet builds a lookup set from a map of past-leader addresses
// plus any extra addresses supplied.
func excludeSet(past map[txtypes.Address]struct{}, extra ...txtypes.Address) map[txtypes.Address]struct{} {
	out := make(map[txtypes.Address]struct{}, len(past)+len(extra))
	for k := range past {
		out[k] = struct{}{}
	}
	for _, a := range extra {
		out[a] = struct{}{}
	}
	return out
}

// SelectForPending implements the §4.2.1 table, picking the validator
// list for a Pending re-entry given the transaction's current appeal
// state and prior consensus data.
func (s *Selector) SelectForPending(tx *txtypes.Transaction, pool txtypes.Snapshot) (txtypes.Snapshot, error) {
	n := tx.NumInitialValidators
	past := tx.PastLeaders()

	switch {
	case len(tx.ConsensusData.Validators) == 0 && !tx.Appeal.Any():
		// First try: no consensus_data yet.
		return s.DrawFresh(pool, n)

	case tx.Appeal.Undetermined:
		// Leader appeal: prior validators plus n+2 extra, leader excluded.
		extra, err := s.DrawFresh(excludeSnapshot(pool, past), n+2)
		if err != nil {
			return nil, err
		}
		prior := priorValidators(tx, pool)
		prior = excludeByAddress(prior, past)
		return append(append(txtypes.Snapshot{}, prior...), extra...), nil

	case tx.Appeal.LeaderTimeout:
		// Leader-timeout appeal: reuse leader_timeout_validators plus one
		// fresh validator, excluding every past leader.
		fresh, err := s.DrawFresh(excludeSnapshot(pool, past), 1)
		if err != nil {
			return nil, err
		}
		prior := excludeByAddress(tx.LeaderTimeoutValidators, past)
		return append(append(txtypes.Snapshot{}, prior...), fresh...), nil

	case tx.Appeal.Appealed || tx.Appeal.ValidatorsTimeout:
		// Validator appeal (already drawn by the appeal package before
		// Pending re-entry): reuse validators minus the old leader.
		prior := priorValidators(tx, pool)
		leader, hasLeader := currentLeader(tx)
		if hasLeader {
			prior = excludeByAddress(prior, map[txtypes.Address]struct{}{leader: {}})
		}
		return prior, nil

	default:
		// Rolled-back try: reuse prior validators including leader; if
		// they no longer exist in the registry, draw fresh.
		prior := priorValidators(tx, pool)
		if len(prior) == 0 {
			return s.DrawFresh(pool, n)
		}
		return prior, nil
	}
}

func currentLeader(tx *txtypes.Transaction) (txtypes.Address, bool) {
	if len(tx.ConsensusData.LeaderReceipt) == 0 {
		return "", false
	}
	return tx.ConsensusData.LeaderReceipt[0].NodeConfig, true
}

// priorValidators resolves the addresses recorded in consensus_data
// against the current registry snapshot, dropping any that vanished.
func priorValidators(tx *txtypes.Transaction, pool txtypes.Snapshot) txtypes.Snapshot {
	byAddr := make(map[txtypes.Address]txtypes.Validator, len(pool))
	for _, v := range pool {
		byAddr[v.Address] = v
	}
	out := make(txtypes.Snapshot, 0, len(tx.ConsensusData.Validators))
	for _, r := range tx.ConsensusData.Validators {
		if v, ok := byAddr[r.NodeConfig]; ok {
			out = append(out, v)
		}
	}
	return out
}

func excludeByAddress(snap txtypes.Snapshot, excluded map[txtypes.Address]struct{}) txtypes.Snapshot {
	return snap.Exclude(excluded)
}

func excludeSnapshot(pool txtypes.Snapshot, excluded map[txtypes.Address]struct{}) txtypes.Snapshot {
	return pool.Exclude(excluded)
}

// ValidatorAppealCounts returns the reused and newly-drawn validator
// counts for a validator appeal at the given appeal_failed count,
// following the §4.6 table. appeal_failed 0, 1, and 2 use the table's
// explicit values; 3 and beyond extrapolate from its general k≥1 row,
// which only coincides with the explicit values at k=1.
func ValidatorAppealCounts(n, appealFailed int) (reused, newlyDrawn, total int) {
	switch k := appealFailed; {
	case k == 0:
		reused, newlyDrawn = 0, n+2
	case k == 1:
		reused, newlyDrawn = n+2, n+1
	case k == 2:
		reused, newlyDrawn = 2*n+3, 2*n
	default:
		reused, newlyDrawn = (2*k-1)*n+3, 2*n
	}
	return reused, newlyDrawn, n + reused + newlyDrawn
}

// CapacityCheck reports whether an appeal can proceed: the validators
// it would involve, plus every address ever used as leader, must still
// be fewer than the total registered validator pool (§4.6).
func CapacityCheck(involved, usedLeaders, totalValidators int) bool {
	return involved+usedLeaders < totalValidators
}
