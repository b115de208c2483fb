package transform

import (
	"pinsmith/internal/ir"
	"pinsmith/internal/layout"
)

// errorCodeBase is where implicit error codes start, matching the source
// framework's own numbering for custom program errors.
const errorCodeBase = 6000

func lowerStateRecords(p *ir.Program) []ir.TargetStateRecord {
	records := make([]ir.TargetStateRecord, 0, len(p.StateRecords))
	for _, rec := range p.StateRecords {
		records = append(records, layout.Record(rec))
	}
	return records
}

// lowerErrors assigns concrete codes: explicit codes pass through, the rest
// are numbered sequentially from the base in declaration order.
func lowerErrors(defs []ir.ErrorDef) []ir.TargetError {
	errors := make([]ir.TargetError, 0, len(defs))
	for i, def := range defs {
		code := uint32(errorCodeBase + i)
		if def.Code != nil {
			code = *def.Code
		}
		errors = append(errors, ir.TargetError{Name: def.Name, Code: code, Msg: def.Msg})
	}
	return errors
}
