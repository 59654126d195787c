package gerber

import (
	"fmt"
	"strings"
)

// commandKind tags a classified Gerber command, mirroring the GerberFormat
// enum of the Python original this package is grounded on.
type commandKind int

const (
	kindFormat commandKind = iota
	kindUnits
	kindApertureDefine
	kindApertureMacro
	kindApertureBlock
	kindSetAperture
	kindOperationInterp
	kindOperationMove
	kindOperationFlash
	kindInterpLinear
	kindInterpCW
	kindInterpCCW
	kindQuadrantSingle
	kindQuadrantMulti
	kindLoadPolarity
	kindLoadMirroring
	kindLoadRotation
	kindLoadScaling
	kindRegionStart
	kindRegionEnd
	kindStepAndRepeat
	kindComment
	kindAttributeFile
	kindAttributeAperture
	kindAttributeObject
	kindAttributeDelete
	kindDeprecatedUnitsInch
	kindDeprecatedUnitsMM
	kindDeprecatedSelectAperture
	kindDeprecatedProgramStop
	kindEndOfFile
)

// twoLetterKinds maps the two-letter alphabetic head of a command to its kind.
var twoLetterKinds = map[string]commandKind{
	"FS": kindFormat,
	"MO": kindUnits,
	"AD": kindApertureDefine,
	"AM": kindApertureMacro,
	"AB": kindApertureBlock,
	"LP": kindLoadPolarity,
	"LM": kindLoadMirroring,
	"LR": kindLoadRotation,
	"LS": kindLoadScaling,
	"SR": kindStepAndRepeat,
	"TF": kindAttributeFile,
	"TA": kindAttributeAperture,
	"TO": kindAttributeObject,
	"TD": kindAttributeDelete,
}

// threeCharKinds maps a three-character alphanumeric head to its kind.
var threeCharKinds = map[string]commandKind{
	"G01": kindInterpLinear,
	"G02": kindInterpCW,
	"G03": kindInterpCCW,
	"G04": kindComment,
	"G36": kindRegionStart,
	"G37": kindRegionEnd,
	"G70": kindDeprecatedUnitsInch,
	"G71": kindDeprecatedUnitsMM,
	"G74": kindQuadrantSingle,
	"G75": kindQuadrantMulti,
	"G54": kindDeprecatedSelectAperture,
	"M00": kindDeprecatedProgramStop,
	"M01": kindDeprecatedProgramStop,
	"M02": kindEndOfFile,
}

// classify splits a stripped command (no surrounding %...%, no trailing *)
// into its kind and payload, per spec §4.1.
func classify(cmd string) (commandKind, string, error) {
	if len(cmd) < 2 {
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	// A command that begins with X or Y and ends with D0[1-3] is an
	// operation with embedded coordinates.
	if (cmd[0] == 'X' || cmd[0] == 'Y') && len(cmd) >= 3 && cmd[len(cmd)-3] == 'D' {
		switch cmd[len(cmd)-3:] {
		case "D01":
			return kindOperationInterp, cmd[:len(cmd)-3], nil
		case "D02":
			return kindOperationMove, cmd[:len(cmd)-3], nil
		case "D03":
			return kindOperationFlash, cmd[:len(cmd)-3], nil
		}
	}

	// D<digits>: either an operation code (01/02/03) or a set-aperture.
	if cmd[0] == 'D' {
		digits := cmd[1:]
		switch digits {
		case "01":
			return kindOperationInterp, "", nil
		case "02":
			return kindOperationMove, "", nil
		case "03":
			return kindOperationFlash, "", nil
		}
		return kindSetAperture, digits, nil
	}

	// Two-letter alphabetic head.
	if isAlpha(cmd[1]) {
		head := cmd[:2]
		if k, ok := twoLetterKinds[head]; ok {
			return k, cmd[2:], nil
		}
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	// Three-character alphanumeric head (G36, M02, ...).
	if len(cmd) >= 3 {
		head := cmd[:3]
		if k, ok := threeCharKinds[head]; ok {
			return k, cmd[3:], nil
		}
	}
	return 0, "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// stripWrapping removes a leading/trailing "%" extended-command wrapper and
// a trailing "*" delimiter, per spec §4.2 line framing.
func stripWrapping(buf string) string {
	buf = strings.TrimSpace(buf)
	if strings.HasPrefix(buf, "%") && strings.HasSuffix(buf, "%") {
		buf = buf[1 : len(buf)-1]
	}
	buf = strings.TrimSuffix(buf, "*")
	return buf
}
