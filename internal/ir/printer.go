package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for target programs and fact sets,
// used by the CLI inspect command.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new printer.
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the string representation of a target program.
func Print(tp *TargetProgram) string {
	p := NewPrinter()
	p.printProgram(tp)
	return p.output.String()
}

// PrintFacts returns the string representation of an analyzer fact set.
func PrintFacts(f *Facts) string {
	p := NewPrinter()
	p.printFacts(f)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(tp *TargetProgram) {
	p.writeLine("PROGRAM %s", tp.Name)
	if tp.ProgramID != "" {
		p.writeLine("identity %s", tp.ProgramID)
	}
	p.writeLine("")

	if len(tp.StateRecords) > 0 {
		p.writeLine("STATE LAYOUT:")
		p.indent++
		for _, rec := range tp.StateRecords {
			p.writeLine("%s (%d bytes)", rec.Name, rec.Size)
			p.indent++
			for _, f := range rec.Fields {
				bound := ""
				if f.Bound > 0 {
					bound = fmt.Sprintf("  ; capacity %d", f.Bound)
				}
				p.writeLine("[%4d] %-24s : %-12s (%d bytes)%s", f.Offset, f.Name, f.Type, f.Size, bound)
			}
			p.indent--
		}
		p.indent--
		p.writeLine("")
	}

	for _, inst := range tp.Instructions {
		p.writeLine("INSTRUCTION %s  disc=%x", inst.Name, inst.Discriminator)
		p.indent++
		for _, a := range inst.Accounts {
			flags := make([]string, 0, 4)
			if a.Signer {
				flags = append(flags, "signer")
			}
			if a.Writable {
				flags = append(flags, "writable")
			}
			if a.PDA {
				flags = append(flags, "pda")
			}
			if a.Init {
				flags = append(flags, "init")
			}
			p.writeLine("account[%d] %-20s %s", a.Index, a.Name, strings.Join(flags, ","))
		}
		for _, v := range inst.Validations {
			p.writeLine("check %s %s", v.Kind, describeValidation(v))
		}
		for _, issue := range inst.Issues {
			p.writeLine("issue %s: %s", issue.Kind, issue.Detail)
		}
		p.indent--
		p.writeLine("")
	}

	if len(tp.Errors) > 0 {
		p.writeLine("ERRORS:")
		p.indent++
		for _, e := range tp.Errors {
			p.writeLine("%d %s: %s", e.Code, e.Name, e.Msg)
		}
		p.indent--
	}
}

func (p *Printer) printFacts(f *Facts) {
	p.writeLine("PDAS: %d", len(f.PDAs))
	p.indent++
	for _, pda := range f.PDAs {
		bump := "canonical"
		if pda.BumpSource != "" {
			bump = pda.BumpSource
		}
		p.writeLine("%-20s seeds=[%s] bump=%s", pda.Account, strings.Join(pda.Seeds, ", "), bump)
	}
	p.indent--

	p.writeLine("CPI CALLS: %d", len(f.Calls))
	p.indent++
	for _, c := range f.Calls {
		p.writeLine("%-20s %s::%s roles=[%s]", c.Instruction, c.Program, c.Operation, strings.Join(c.Roles, ", "))
	}
	p.indent--

	p.writeLine("RECORD SIZES: %d", len(f.Sizes))
	p.indent++
	for _, s := range f.Sizes {
		p.writeLine("%-20s %d bytes", s.Record, s.Size)
	}
	p.indent--
}

func describeValidation(v Validation) string {
	switch v.Kind {
	case ValidationPdaCheck:
		if v.Strategy == PdaFromBump {
			return fmt.Sprintf("account=%d seeds=[%s] bump=%s", v.Account, strings.Join(v.Seeds, ", "), v.Bump)
		}
		return fmt.Sprintf("account=%d seeds=[%s] derive", v.Account, strings.Join(v.Seeds, ", "))
	case ValidationOwnerCheck:
		return fmt.Sprintf("account=%d owner=%s", v.Account, v.Owner)
	case ValidationKeyEquals:
		return fmt.Sprintf("account=%d expected=%s", v.Account, v.Expected)
	case ValidationCustom:
		return firstLine(v.Code)
	default:
		return fmt.Sprintf("account=%d", v.Account)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
