// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package txtypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVote_OnChain(t *testing.T) {
	require.Equal(t, VoteTimeout, VoteIdle.OnChain())
	require.Equal(t, VoteAgree, VoteAgree.OnChain())
	require.Equal(t, VoteDisagree, VoteDisagree.OnChain())
	require.Equal(t, VoteTimeout, VoteTimeout.OnChain())
}
