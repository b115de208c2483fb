// Package cpigen renders the target-convention snippets the rewrite passes
// splice into instruction bodies: cross-program invocations, direct lamport
// transfers, and state deserialization bindings.
package cpigen

import (
	"fmt"
	"strings"
)

// TokenTransfer renders a token transfer invocation. With signer seeds the
// call is signed by the PDA; the seed expressions are emitted verbatim.
func TokenTransfer(from, to, authority, amount string, signerSeeds []string) string {
	if len(signerSeeds) > 0 {
		return fmt.Sprintf(`// Token transfer with PDA signer
    Transfer {
        from: %s,
        to: %s,
        authority: %s,
        amount: %s,
    }.invoke_signed(
        &[&[
%s
        ]],
    )?;
`, from, to, authority, amount, seedLines(signerSeeds))
	}
	return fmt.Sprintf(`// Token transfer
    Transfer {
        from: %s,
        to: %s,
        authority: %s,
        amount: %s,
    }.invoke()?;
`, from, to, authority, amount)
}

// TokenMintTo renders a mint invocation.
func TokenMintTo(mint, to, authority, amount string, signerSeeds []string) string {
	if len(signerSeeds) > 0 {
		return fmt.Sprintf(`// Mint tokens with PDA signer
    MintTo {
        mint: %s,
        account: %s,
        mint_authority: %s,
        amount: %s,
    }.invoke_signed(
        &[&[
%s
        ]],
    )?;
`, mint, to, authority, amount, seedLines(signerSeeds))
	}
	return fmt.Sprintf(`// Mint tokens
    MintTo {
        mint: %s,
        account: %s,
        mint_authority: %s,
        amount: %s,
    }.invoke()?;
`, mint, to, authority, amount)
}

// TokenBurn renders a burn invocation.
func TokenBurn(mint, from, authority, amount string) string {
	return fmt.Sprintf(`// Burn tokens
    Burn {
        account: %s,
        mint: %s,
        authority: %s,
        amount: %s,
    }.invoke()?;
`, from, mint, authority, amount)
}

// SystemTransfer renders a native transfer through the system program.
func SystemTransfer(from, to, amount string) string {
	return fmt.Sprintf(`// SOL transfer via system program
    pinocchio_system::instructions::Transfer {
        from: %s,
        to: %s,
        lamports: %s,
    }.invoke()?;
`, from, to, amount)
}

// SolTransfer renders a native transfer as direct lamport arithmetic. Only
// correct when the source account is owned by the executing program; callers
// gate on that.
func SolTransfer(from, to, amount string) string {
	return fmt.Sprintf(`// SOL transfer
    **%s.try_borrow_mut_lamports()? -= %s;
    **%s.try_borrow_mut_lamports()? += %s;`, from, amount, to, amount)
}

// StateRead renders a readonly state binding for an account.
func StateRead(stateType, account string) string {
	return fmt.Sprintf("let %s_state = %s::from_account_info(%s)?;", account, stateType, account)
}

// StateWrite renders a mutable state binding. needsMut adds the binding-level
// mut for bodies that reassign fields through the binding.
func StateWrite(stateType, account string, needsMut bool) string {
	if needsMut {
		return fmt.Sprintf("let mut %s_state = %s::from_account_info_mut(%s)?;", account, stateType, account)
	}
	return fmt.Sprintf("let %s_state = %s::from_account_info_mut(%s)?;", account, stateType, account)
}

func seedLines(seeds []string) string {
	lines := make([]string, 0, len(seeds))
	for _, s := range seeds {
		lines = append(lines, "        "+s+",")
	}
	return strings.Join(lines, "\n")
}
