package registry

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownPaths(t *testing.T) {
	op, ok := Lookup("token::transfer")
	require.True(t, ok)
	assert.Equal(t, "transfer", op.Name)
	assert.Equal(t, "token_program", op.Program)
	assert.Equal(t, common.TokenProgramID, op.ProgramID)
	assert.Equal(t, []string{"from", "to", "authority"}, op.Roles)

	op, ok = Lookup("anchor_spl::token::mint_to")
	require.True(t, ok)
	assert.Equal(t, "mint_to", op.Name)
	assert.Equal(t, "MintTo", op.Struct)

	op, ok = Lookup("system_program::transfer")
	require.True(t, ok)
	assert.Equal(t, common.SystemProgramID, op.ProgramID)
	assert.Equal(t, []string{"from", "to"}, op.Roles)
}

func TestLookupToleratesSpacedPaths(t *testing.T) {
	op, ok := Lookup("token :: burn")
	require.True(t, ok)
	assert.Equal(t, "burn", op.Name)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("token::freeze_account")
	assert.False(t, ok)
	_, ok = Lookup("")
	assert.False(t, ok)
}

func TestMatches(t *testing.T) {
	op, ok := Lookup("token::transfer")
	require.True(t, ok)

	assert.True(t, op.Matches("token::transfer(cpi_ctx, amount)?;"))
	assert.True(t, op.Matches("token :: transfer ( cpi_ctx , amount ) ? ;"))
	assert.False(t, op.Matches("token::burn(cpi_ctx, amount)?;"))
}

func TestOperationsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, op := range Operations() {
		key := op.Program + "::" + op.Name
		assert.False(t, seen[key], key)
		seen[key] = true
		assert.NotEmpty(t, op.Roles)
		assert.Equal(t, len(op.Fields), len(op.Roles))
	}
}
