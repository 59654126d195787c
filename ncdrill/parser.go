package ncdrill

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// drillMode is the body state machine's current interpretation of bare
// coordinate lines and G01/G02/G03, per spec §4.5.
type drillMode int

const (
	modeDrill drillMode = iota
	modeRout
)

// Parser holds the live state while reading an NC-Drill file.
type Parser struct {
	strict bool
	doc    *Document

	mode        drillMode
	currentTool int
	toolDown    bool
	done        bool
}

// ReadDocument parses a complete NC-Drill file from r. When strict is true,
// an unrecognised command aborts parsing with ErrUnknownCommand; otherwise
// it is logged and skipped.
func ReadDocument(r io.Reader, strict bool) (*Document, error) {
	p := &Parser{strict: strict, doc: newDocument(), mode: modeDrill}

	scanner := bufio.NewScanner(r)
	lines := make([]string, 0, 64)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 || lines[0] != "M48" {
		return nil, fmt.Errorf("%w: missing M48 header start", ErrUnknownCommand)
	}

	i := 1
	headerClosed := false
	for ; i < len(lines); i++ {
		kind, fields, err := classifyHeader(lines[i])
		if err != nil {
			if p.strict {
				return nil, err
			}
			log.Printf("ncdrill: %v", err)
			continue
		}
		switch kind {
		case headerComment:
			p.doc.Comments = append(p.doc.Comments, fields[0])
		case headerUnitMetric:
			p.doc.Units = MM
		case headerUnitInch:
			p.doc.Units = Inch
		case headerToolDeclare:
			idx, _ := strconv.Atoi(fields[0])
			dia, _ := strconv.ParseFloat(fields[1], 64)
			if _, exists := p.doc.ToolTable[idx]; !exists {
				p.doc.ToolOrder = append(p.doc.ToolOrder, idx)
			}
			p.doc.ToolTable[idx] = dia
		case headerFormat, headerAbsolute:
			// accepted, no state change
		case headerEnd:
			i++
			headerClosed = true
		}
		if headerClosed {
			break
		}
	}
	if !headerClosed {
		return nil, fmt.Errorf("%w: header never terminated with %%", ErrUnknownCommand)
	}

	for ; i < len(lines) && !p.done; i++ {
		if err := p.process(lines[i]); err != nil {
			return nil, err
		}
	}
	return p.doc, nil
}

func (p *Parser) process(line string) error {
	kind, payload, err := classifyBody(line)
	if err != nil {
		if p.strict {
			return err
		}
		log.Printf("ncdrill: %v", err)
		return nil
	}

	switch kind {
	case bodyDrillMode:
		p.mode = modeDrill

	case bodyRoutMode:
		p.mode = modeRout
		if payload != "" {
			pt, err := parseCoord(payload)
			if err != nil {
				return err
			}
			p.doc.Operations = append(p.doc.Operations, RoutSegment{ToolIndex: p.currentTool, Kind: Linear, Point: pt})
		}

	case bodySelectTool:
		n, err := strconv.Atoi(payload)
		if err != nil {
			return fmt.Errorf("%w: bad tool number %q", ErrUnknownCommand, payload)
		}
		p.currentTool = n

	case bodyDrillHit:
		if p.mode != modeDrill {
			return fmt.Errorf("%w: drill hit %q while in rout mode", ErrBadMode, line)
		}
		pt, err := parseCoord(payload)
		if err != nil {
			return err
		}
		p.doc.Operations = append(p.doc.Operations, DrillHit{ToolIndex: p.currentTool, Point: pt})

	case bodyToolDown:
		p.toolDown = true
		p.doc.Operations = append(p.doc.Operations, ToolDown{})

	case bodyToolUp:
		p.toolDown = false
		p.doc.Operations = append(p.doc.Operations, ToolUp{})

	case bodyRoutLinear, bodyRoutCW, bodyRoutCCW:
		if p.mode != modeRout {
			return fmt.Errorf("%w: rout command %q while in drill mode", ErrBadMode, line)
		}
		if !p.toolDown {
			return fmt.Errorf("%w: rout segment %q while tool is up", ErrBadMode, line)
		}
		pt, err := parseCoord(payload)
		if err != nil {
			return err
		}
		var sk SegmentKind
		switch kind {
		case bodyRoutCW:
			sk = CW
		case bodyRoutCCW:
			sk = CCW
		default:
			sk = Linear
		}
		p.doc.Operations = append(p.doc.Operations, RoutSegment{ToolIndex: p.currentTool, Kind: sk, Point: pt})

	case bodyComment:
		p.doc.Comments = append(p.doc.Comments, payload)

	case bodyAbsolute:
		// ignored, per spec §4.5

	case bodyEndOfFile:
		p.done = true
	}
	return nil
}
