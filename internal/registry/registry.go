// SPDX-License-Identifier: Apache-2.0

// Package registry is the closed set of external-program operations the
// pipeline recognizes in instruction bodies. The set is built once at process
// start and is immutable, read-only shared state for the process lifetime.
package registry

import (
	"strings"

	"github.com/blocto/solana-go-sdk/common"
)

// Operation describes one recognizable cross-program call: the external
// program it targets, the source-level call paths that denote it, and the
// ordered account roles the call requires.
type Operation struct {
	Program   string           // source-level program handle, e.g. "token_program"
	ProgramID common.PublicKey // canonical identity of the external program
	Name      string           // operation name, e.g. "transfer"
	Paths     []string         // call paths in source bodies
	Struct    string           // accounts struct literal in source, e.g. "Transfer"
	Fields    []string         // struct field names in source order
	Roles     []string         // ordered account roles the operation requires
}

// Matches reports whether a body contains a call through any of the
// operation's paths, tolerating token-spaced path separators.
func (op *Operation) Matches(body string) bool {
	for _, p := range op.Paths {
		if strings.Contains(body, p) {
			return true
		}
		spaced := strings.ReplaceAll(p, "::", " :: ")
		if strings.Contains(body, spaced) {
			return true
		}
	}
	return false
}

var operations = []Operation{
	{
		Program:   "token_program",
		ProgramID: common.TokenProgramID,
		Name:      "transfer",
		Paths:     []string{"token::transfer", "anchor_spl::token::transfer"},
		Struct:    "Transfer",
		Fields:    []string{"from", "to", "authority"},
		Roles:     []string{"from", "to", "authority"},
	},
	{
		Program:   "token_program",
		ProgramID: common.TokenProgramID,
		Name:      "mint_to",
		Paths:     []string{"token::mint_to", "anchor_spl::token::mint_to"},
		Struct:    "MintTo",
		Fields:    []string{"mint", "to", "authority"},
		Roles:     []string{"mint", "to", "authority"},
	},
	{
		Program:   "token_program",
		ProgramID: common.TokenProgramID,
		Name:      "burn",
		Paths:     []string{"token::burn", "anchor_spl::token::burn"},
		Struct:    "Burn",
		Fields:    []string{"from", "mint", "authority"},
		Roles:     []string{"mint", "from", "authority"},
	},
	{
		Program:   "system_program",
		ProgramID: common.SystemProgramID,
		Name:      "transfer",
		Paths:     []string{"system_program::transfer"},
		Struct:    "Transfer",
		Fields:    []string{"from", "to"},
		Roles:     []string{"from", "to"},
	},
}

// Operations returns the full operation set in registration order.
func Operations() []Operation {
	return operations
}

// Lookup resolves a source call path to its operation.
func Lookup(path string) (*Operation, bool) {
	path = strings.ReplaceAll(path, " ", "")
	for i := range operations {
		for _, p := range operations[i].Paths {
			if p == path {
				return &operations[i], true
			}
		}
	}
	return nil, false
}
