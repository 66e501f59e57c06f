package timeline

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/deafbeat/internal/ir"
)

// Field names in document order.
const (
	fieldSeed         = "seed"
	fieldSampleRate   = "sample_rate"
	fieldBPM          = "bpm"
	fieldStepSamples  = "step_samples"
	fieldTotalSamples = "total_samples"
	fieldSteps        = "steps"
	fieldBeats        = "beats"
	fieldEvents       = "events"
)

var requiredFields = []string{
	fieldSeed, fieldSampleRate, fieldBPM, fieldStepSamples,
	fieldTotalSamples, fieldSteps, fieldBeats, fieldEvents,
}

// Parse reads an interchange document.
//
// The reader is deliberately narrow: a single object whose keys come from
// the fixed header set, each exactly once, in any order. Arrays hold unsigned
// integers; events hold exactly time, type and aux. Unknown event type names
// become ir.EventUnknown. Any other deviation fails the whole parse with a
// *ParseError and a nil Timeline.
func Parse(data []byte) (*Timeline, error) {
	p := &parser{lx: lexer{src: data}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	tl, err := p.document()
	if err != nil {
		return nil, err
	}
	return tl, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline %s: %w", path, err)
	}
	tl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse timeline %s: %w", path, err)
	}
	return tl, nil
}

type parser struct {
	lx  lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind, field string) (token, error) {
	tok := p.tok
	if tok.kind != kind {
		return tok, p.unexpected(field, kind)
	}
	return tok, p.advance()
}

func (p *parser) unexpected(field string, want tokenKind) *ParseError {
	return &ParseError{
		Code:    ErrCodeUnexpectedToken,
		Field:   field,
		Offset:  p.tok.off,
		Message: fmt.Sprintf("expected %s, found %s", want, p.tok.kind),
	}
}

func (p *parser) document() (*Timeline, error) {
	if _, err := p.expect(tokLBrace, ""); err != nil {
		return nil, err
	}

	tl := &Timeline{}
	seen := make(map[string]bool, len(requiredFields))
	for p.tok.kind != tokRBrace {
		if len(seen) > 0 {
			if _, err := p.expect(tokComma, ""); err != nil {
				return nil, err
			}
		}
		key, err := p.expect(tokString, "")
		if err != nil {
			return nil, err
		}
		if seen[key.text] {
			return nil, &ParseError{Code: ErrCodeDuplicateField, Field: key.text, Offset: key.off, Message: "field given twice"}
		}
		if _, err := p.expect(tokColon, key.text); err != nil {
			return nil, err
		}
		if err := p.field(tl, key); err != nil {
			return nil, err
		}
		seen[key.text] = true
	}
	closing := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected("", tokEOF)
	}

	for _, f := range requiredFields {
		if !seen[f] {
			return nil, &ParseError{Code: ErrCodeMissingField, Field: f, Offset: closing.off, Message: "required field missing"}
		}
	}
	if tl.SampleRate == 0 {
		return nil, &ParseError{Code: ErrCodeBadValue, Field: fieldSampleRate, Message: "sample rate must be positive"}
	}
	return tl, nil
}

func (p *parser) field(tl *Timeline, key token) error {
	var err error
	switch key.text {
	case fieldSeed:
		tl.Seed, err = p.seed()
	case fieldSampleRate:
		tl.SampleRate, err = p.uint32Value(key.text)
	case fieldBPM:
		tl.BPM, err = p.bpm()
	case fieldStepSamples:
		tl.StepSamples, err = p.uint32Value(key.text)
	case fieldTotalSamples:
		tl.TotalSamples, err = p.uint32Value(key.text)
	case fieldSteps:
		tl.Steps, err = p.array(key.text)
	case fieldBeats:
		tl.Beats, err = p.array(key.text)
	case fieldEvents:
		tl.Events, err = p.events()
	default:
		err = &ParseError{Code: ErrCodeUnexpectedToken, Field: key.text, Offset: key.off, Message: "unknown field"}
	}
	return err
}

func (p *parser) seed() (uint64, error) {
	tok, err := p.expect(tokString, fieldSeed)
	if err != nil {
		return 0, err
	}
	digits, ok := strings.CutPrefix(tok.text, "0x")
	if !ok {
		digits, ok = strings.CutPrefix(tok.text, "0X")
	}
	if !ok || len(digits) == 0 || len(digits) > 16 {
		return 0, &ParseError{Code: ErrCodeBadValue, Field: fieldSeed, Offset: tok.off, Message: "seed must be 0x followed by 1-16 hex digits"}
	}
	v, perr := strconv.ParseUint(digits, 16, 64)
	if perr != nil {
		return 0, &ParseError{Code: ErrCodeBadValue, Field: fieldSeed, Offset: tok.off, Message: perr.Error()}
	}
	return v, nil
}

func (p *parser) uint32Value(field string) (uint32, error) {
	tok, err := p.expect(tokNumber, field)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseUint(tok.text, 10, 32)
	if perr != nil {
		return 0, &ParseError{Code: ErrCodeBadValue, Field: field, Offset: tok.off, Message: fmt.Sprintf("not an unsigned 32-bit integer: %q", tok.text)}
	}
	return uint32(v), nil
}

func (p *parser) bpm() (float64, error) {
	tok, err := p.expect(tokNumber, fieldBPM)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseFloat(tok.text, 64)
	if perr != nil || math.IsInf(v, 0) || math.IsNaN(v) || v <= 0 {
		return 0, &ParseError{Code: ErrCodeBadValue, Field: fieldBPM, Offset: tok.off, Message: fmt.Sprintf("bpm must be a positive number: %q", tok.text)}
	}
	return v, nil
}

func (p *parser) array(field string) ([]uint32, error) {
	open := p.tok
	if open.kind != tokLBracket {
		return nil, p.malformedArray(field, "expected '['")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	out := []uint32{}
	for p.tok.kind != tokRBracket {
		if len(out) > 0 {
			if p.tok.kind != tokComma {
				return nil, p.malformedArray(field, fmt.Sprintf("expected ',' or ']', found %s", p.tok.kind))
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.tok.kind != tokNumber {
			return nil, p.malformedArray(field, fmt.Sprintf("expected integer, found %s", p.tok.kind))
		}
		v, err := strconv.ParseUint(p.tok.text, 10, 32)
		if err != nil {
			return nil, p.malformedArray(field, fmt.Sprintf("not an unsigned 32-bit integer: %q", p.tok.text))
		}
		out = append(out, uint32(v))
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return out, p.advance()
}

func (p *parser) malformedArray(field, msg string) *ParseError {
	return &ParseError{Code: ErrCodeMalformedArray, Field: field, Offset: p.tok.off, Message: msg}
}

func (p *parser) events() ([]ir.Event, error) {
	if _, err := p.expect(tokLBracket, fieldEvents); err != nil {
		return nil, err
	}

	out := []ir.Event{}
	for p.tok.kind != tokRBracket {
		if len(out) > 0 {
			if _, err := p.expect(tokComma, fieldEvents); err != nil {
				return nil, err
			}
		}
		ev, err := p.event()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, p.advance()
}

func (p *parser) event() (ir.Event, error) {
	var ev ir.Event
	if p.tok.kind != tokLBrace {
		return ev, p.malformedEvent(fmt.Sprintf("expected '{', found %s", p.tok.kind))
	}
	if err := p.advance(); err != nil {
		return ev, err
	}

	var hasTime, hasType, hasAux bool
	first := true
	for p.tok.kind != tokRBrace {
		if !first {
			if p.tok.kind != tokComma {
				return ev, p.malformedEvent(fmt.Sprintf("expected ',' or '}', found %s", p.tok.kind))
			}
			if err := p.advance(); err != nil {
				return ev, err
			}
		}
		first = false

		key := p.tok
		if key.kind != tokString {
			return ev, p.malformedEvent(fmt.Sprintf("expected key, found %s", key.kind))
		}
		if err := p.advance(); err != nil {
			return ev, err
		}
		if _, err := p.expect(tokColon, fieldEvents); err != nil {
			return ev, err
		}

		switch key.text {
		case "time":
			if hasTime {
				return ev, p.malformedEvent("time given twice")
			}
			v, err := p.eventNumber("time", 32)
			if err != nil {
				return ev, err
			}
			ev.Time = uint32(v)
			hasTime = true
		case "type":
			if hasType {
				return ev, p.malformedEvent("type given twice")
			}
			if p.tok.kind != tokString {
				return ev, p.malformedEvent(fmt.Sprintf("type must be a string, found %s", p.tok.kind))
			}
			ev.Type = ir.ParseEventType(p.tok.text)
			if err := p.advance(); err != nil {
				return ev, err
			}
			hasType = true
		case "aux":
			if hasAux {
				return ev, p.malformedEvent("aux given twice")
			}
			v, err := p.eventNumber("aux", 8)
			if err != nil {
				return ev, err
			}
			ev.Aux = uint8(v)
			hasAux = true
		default:
			return ev, p.malformedEvent(fmt.Sprintf("unknown event key %q", key.text))
		}
	}
	if !hasTime || !hasType || !hasAux {
		return ev, p.malformedEvent("event needs time, type and aux")
	}
	return ev, p.advance()
}

func (p *parser) eventNumber(key string, bits int) (uint64, error) {
	if p.tok.kind != tokNumber {
		return 0, p.malformedEvent(fmt.Sprintf("%s must be an integer, found %s", key, p.tok.kind))
	}
	v, err := strconv.ParseUint(p.tok.text, 10, bits)
	if err != nil {
		return 0, &ParseError{Code: ErrCodeBadValue, Field: fieldEvents, Offset: p.tok.off, Message: fmt.Sprintf("%s out of range: %q", key, p.tok.text)}
	}
	return v, p.advance()
}

func (p *parser) malformedEvent(msg string) *ParseError {
	return &ParseError{Code: ErrCodeMalformedEvent, Field: fieldEvents, Offset: p.tok.off, Message: msg}
}
