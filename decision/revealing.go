// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"time"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/tally"
	"github.com/luxfi/txconsensus/txtypes"
)

// Revealing implements decide_revealing (§4.2.4): tallies the gathered
// votes, emits one "vote revealed" event per validator, and routes to
// the next status per the §4.2.4 table. On an appeal re-entry the votes
// and validator receipts already recorded on tx.ConsensusData (from the
// round the appeal is contesting) are merged with this round's newly
// gathered ones per the §4.6 merge rule before tallying — appeal/vote
// result is decided on the combined multiset, not just the new
// validators' votes. now is passed in so the function stays pure.
func Revealing(tx *txtypes.Transaction, ctx *RoundContext, now time.Time) effects.Decision {
	currentVotes := ctx.Votes()
	currentValidators := receiptSlice(ctx.ValidatorReceipts)

	isAppeal := tx.Appeal.Appealed || tx.Appeal.ValidatorsTimeout

	votes, validatorResults := currentVotes, currentValidators
	if isAppeal {
		votes, validatorResults = mergeAppealValidators(
			tx.ConsensusData.Votes, currentVotes,
			tx.ConsensusData.Validators, currentValidators,
			tx.Appeal.Failed,
		)
	}
	result := tally.Tally(votes)

	post := make([]effects.Effect, 0, len(ctx.ValidatorReceipts)+2)
	for addr := range ctx.ValidatorReceipts {
		post = append(post, effects.EmitRollupEvent{
			Name:            "emitVoteRevealed",
			Account:         addr,
			TransactionHash: tx.Hash,
		})
	}

	entry := txtypes.HistoryEntry{
		LeaderResult:     ctx.LeaderReceipt,
		ValidatorResults: validatorResults,
		RecordedAt:       now,
	}

	switch {
	case tx.Appeal.Appealed && result == tally.MajorityAgree:
		entry.Round = txtypes.RoundValidatorAppealFailed
		post = append(post, effects.UpdateConsensusHistory{Entry: entry})
		return effects.Decision{Post: post, Outcome: effects.NextStatus(txtypes.StatusAccepted)}

	case tx.Appeal.ValidatorsTimeout && result == tally.Timeout:
		entry.Round = txtypes.RoundValidatorAppealFailed
		post = append(post, effects.UpdateConsensusHistory{Entry: entry})
		return effects.Decision{Post: post, Outcome: effects.NextStatus(txtypes.StatusValidatorsTimeout)}

	case isAppeal:
		// Appeal succeeded: any other tally result flips the prior
		// outcome. The newer-sibling rollback (§4.6's rollback law) only
		// runs now, on confirmed success, not at submission time.
		entry.Round = txtypes.RoundValidatorAppealSuccessful
		post = append(post,
			effects.UpdateConsensusHistory{Entry: entry},
			effects.SetAppealFailed{Value: 0},
		)
		if tx.ContractSnapshot != nil {
			post = append(post, effects.Rollback{
				ToAddress: tx.ToAddress,
				NewerThan: tx.Hash,
				Snapshot:  tx.ContractSnapshot,
			})
		}
		return effects.Decision{Post: post, Outcome: effects.Terminal(txtypes.RoundValidatorAppealSuccessful)}

	case result == tally.MajorityAgree:
		entry.Round = txtypes.RoundAccepted
		post = append(post, effects.UpdateConsensusHistory{Entry: entry})
		return effects.Decision{Post: post, Outcome: effects.NextStatus(txtypes.StatusAccepted)}

	case result == tally.Timeout:
		entry.Round = txtypes.RoundValidatorsTimeout
		post = append(post, effects.UpdateConsensusHistory{Entry: entry})
		return effects.Decision{Post: post, Outcome: effects.NextStatus(txtypes.StatusValidatorsTimeout)}

	case tx.RotationCount < tx.ConfigRotationRounds:
		entry.Round = txtypes.RoundLeaderRotated
		ctx.Rotated = true
		post = append(post,
			effects.UpdateConsensusHistory{Entry: entry},
			effects.IncreaseRotationCount{},
		)
		return effects.Decision{Post: post, Outcome: effects.NextStatus(txtypes.StatusProposing)}

	default:
		entry.Round = txtypes.RoundUndetermined
		post = append(post, effects.UpdateConsensusHistory{Entry: entry})
		return effects.Decision{Post: post, Outcome: effects.NextStatus(txtypes.StatusUndetermined)}
	}
}

func receiptSlice(m map[txtypes.Address]txtypes.Receipt) []txtypes.Receipt {
	out := make([]txtypes.Receipt, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out
}

// mergeAppealValidators implements merge_appeal_validators (§4.6): the
// current round's votes overwrite existing ones on key collision, and
// the validator receipt list is built from a appeal_failed-dependent
// prefix of the existing receipts followed by all of the current ones.
func mergeAppealValidators(
	existingVotes, currentVotes map[txtypes.Address]txtypes.Vote,
	existingValidators, currentValidators []txtypes.Receipt,
	appealFailed int,
) (map[txtypes.Address]txtypes.Vote, []txtypes.Receipt) {
	merged := make(map[txtypes.Address]txtypes.Vote, len(existingVotes)+len(currentVotes))
	for addr, v := range existingVotes {
		merged[addr] = v
	}
	for addr, v := range currentVotes {
		merged[addr] = v
	}

	var prefix int
	switch {
	case appealFailed == 0:
		prefix = len(existingValidators)
	case appealFailed == 1:
		n := (len(existingValidators) - 1) / 2
		prefix = n - 1
	default:
		n := len(currentValidators) - (len(existingValidators) + 1)
		prefix = n - 1
	}

	mergedValidators := append(receiptPrefix(existingValidators, prefix), currentValidators...)
	return merged, mergedValidators
}

// receiptPrefix returns existing[:k] with Python slice semantics: a
// negative k counts from the end, and the result is clamped to
// [0, len(existing)] rather than panicking.
func receiptPrefix(existing []txtypes.Receipt, k int) []txtypes.Receipt {
	n := len(existing)
	if k < 0 {
		k += n
	}
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}
	out := make([]txtypes.Receipt, k)
	copy(out, existing[:k])
	return out
}
