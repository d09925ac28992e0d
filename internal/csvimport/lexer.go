package csvimport

import "strings"

// record is one logical CSV record. A record can span several physical lines
// when a quoted field contains newlines; line is the 1-based physical line
// the record starts on.
type record struct {
	fields []string
	line   int
	blank  bool
}

// lexResult carries the lexed records plus the first occurrence of each
// quote-level grammar violation. The lexer never stops early: rule priority
// is decided by the validator, not by scan order.
type lexResult struct {
	records           []record
	unclosedQuoteLine int // 0 when absent
	strayQuoteLine    int // 0 when absent
}

type lexState int

const (
	stateFieldStart lexState = iota
	stateUnquoted
	stateQuoted
	stateQuoteEnd // closing quote seen; may be an escape, a delimiter, or junk
)

// lex splits text into logical records under the CSV grammar: comma-delimited
// fields, double-quoted fields may contain commas, newlines, and doubled-quote
// escapes. Violations are recorded and lexing continues with the offending
// quote treated as a literal character.
func lex(text string) lexResult {
	var (
		res       lexResult
		field     strings.Builder
		fields    []string
		line      = 1
		recLine   = 1
		quoteLine = 0 // physical line the current quoted field began on
		sawQuote  = false
		sawRune   = false
		state     = stateFieldStart
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		// Blank means the raw line held nothing at all: a line of commas or
		// quotes is an empty record, not a blank one.
		blank := !sawQuote && len(fields) == 1 && strings.TrimSpace(fields[0]) == ""
		res.records = append(res.records, record{fields: fields, line: recLine, blank: blank})
		fields = nil
		sawQuote = false
	}
	stray := func() {
		if res.strayQuoteLine == 0 {
			res.strayQuoteLine = line
		}
	}

	for _, r := range text {
		sawRune = true
		switch state {
		case stateFieldStart:
			switch r {
			case '"':
				sawQuote = true
				quoteLine = line
				state = stateQuoted
			case ',':
				endField()
			case '\n':
				endRecord()
				line++
				recLine = line
			case '\r':
				// tolerated; dropped before the newline
			default:
				field.WriteRune(r)
				state = stateUnquoted
			}
		case stateUnquoted:
			switch r {
			case '"':
				stray()
				field.WriteRune(r)
			case ',':
				endField()
				state = stateFieldStart
			case '\n':
				endRecord()
				line++
				recLine = line
				state = stateFieldStart
			case '\r':
			default:
				field.WriteRune(r)
			}
		case stateQuoted:
			switch r {
			case '"':
				state = stateQuoteEnd
			case '\n':
				field.WriteRune(r)
				line++
			default:
				field.WriteRune(r)
			}
		case stateQuoteEnd:
			switch r {
			case '"':
				// escaped quote
				field.WriteRune(r)
				state = stateQuoted
			case ',':
				endField()
				state = stateFieldStart
			case '\n':
				endRecord()
				line++
				recLine = line
				state = stateFieldStart
			case '\r':
			default:
				stray()
				field.WriteRune(r)
				state = stateUnquoted
			}
		}
	}

	switch state {
	case stateQuoted:
		res.unclosedQuoteLine = quoteLine
		endRecord()
	case stateUnquoted, stateQuoteEnd:
		endRecord()
	case stateFieldStart:
		// A trailing newline leaves nothing pending; a dangling comma does.
		if len(fields) > 0 {
			endRecord()
		} else if sawRune && len(res.records) == 0 {
			endRecord()
		}
	}

	return res
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// nonBlank filters out records whose raw text is only whitespace. Blank lines
// are ignored everywhere: row counting, column checks, and the row limit.
func nonBlank(records []record) []record {
	out := make([]record, 0, len(records))
	for _, r := range records {
		if !r.blank {
			out = append(out, r)
		}
	}
	return out
}
