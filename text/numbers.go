package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/WebAssembly/wasp-sub001/wasm"
)

// classifyNumeric recognizes the numeric literal shapes of spec.md §4.4:
// natural/integer/float (decimal or hex), nan (with optional hex payload),
// and inf, each with an optional leading sign. Returns ok=false if text
// isn't shaped like any numeric literal, so the caller falls back to
// KindReserved.
func (l *Lexer) classifyNumeric(text string, loc wasm.Location) (Token, bool) {
	info := NumericInfo{}
	rest := text
	switch {
	case strings.HasPrefix(rest, "+"):
		info.Sign = SignPlus
		rest = rest[1:]
	case strings.HasPrefix(rest, "-"):
		info.Sign = SignMinus
		rest = rest[1:]
	}
	if rest == "" {
		return Token{}, false
	}
	if rest == "inf" {
		return Token{Kind: KindInf, Text: text, Numeric: info, Location: loc}, true
	}
	if rest == "nan" {
		return Token{Kind: KindNan, Text: text, Numeric: info, Location: loc}, true
	}
	if strings.HasPrefix(rest, "nan:0x") {
		payload := rest[len("nan:0x"):]
		if payload == "" || !allHexOrUnderscore(payload) {
			return Token{}, false
		}
		info.NanPayloadHex = payload
		return Token{Kind: KindNan, Text: text, Numeric: info, Location: loc}, true
	}

	hex := strings.HasPrefix(rest, "0x")
	digits := rest
	if hex {
		digits = rest[2:]
	}
	if digits == "" {
		return Token{}, false
	}
	info.Hex = hex
	info.Underscores = strings.Contains(digits, "_")

	isFloat := false
	dotOK, expOK := true, true
	if hex {
		expOK = true // 'p'/'P' exponent
	}
	validChar := func(c byte) bool {
		if hex {
			return isHexDigit(c)
		}
		return c >= '0' && c <= '9'
	}
	expChar := byte('e')
	if hex {
		expChar = 'p'
	}
	i := 0
	sawDigit := false
	for i < len(digits) {
		c := digits[i]
		switch {
		case validChar(c):
			sawDigit = true
		case c == '_':
			if i == 0 || i == len(digits)-1 || digits[i-1] == '_' {
				return Token{}, false
			}
		case c == '.' && dotOK:
			isFloat = true
			dotOK = false
		case (c == expChar || c == expChar-32) && expOK:
			isFloat = true
			expOK = false
			dotOK = false
			if i+1 < len(digits) && (digits[i+1] == '+' || digits[i+1] == '-') {
				i++
			}
		default:
			return Token{}, false
		}
		i++
	}
	if !sawDigit {
		return Token{}, false
	}
	kind := KindNat
	if info.Sign != SignNone && kind == KindNat {
		kind = KindInt
	}
	if isFloat {
		kind = KindFloat
	}
	return Token{Kind: kind, Text: text, Numeric: info, Location: loc}, true
}

func allHexOrUnderscore(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '_' && !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func stripUnderscores(s string) string { return strings.ReplaceAll(s, "_", "") }

// DecodeUint decodes text (sign-less nat literal text, e.g. "123" or
// "0xFF") into a uint64, per spec.md §4.8 "Integer": strip underscores,
// pick radix from the 0x prefix, accumulate with an overflow check at
// each digit rather than parsing then range-checking.
func DecodeUint(text string, info NumericInfo, bits int) (uint64, error) {
	digits := stripUnderscores(text)
	base := 10
	if strings.HasPrefix(digits, "0x") {
		digits = digits[2:]
		base = 16
	}
	maxVal := uint64(1)<<uint(bits) - 1
	var v uint64
	for i := 0; i < len(digits); i++ {
		d, err := digitValue(digits[i], base)
		if err != nil {
			return 0, err
		}
		if v > maxVal/uint64(base) || (v == maxVal/uint64(base) && uint64(d) > maxVal%uint64(base)) {
			return 0, fmt.Errorf("integer literal out of range")
		}
		v = v*uint64(base) + uint64(d)
	}
	return v, nil
}

// DecodeInt decodes a signed integer literal (sign already recorded in
// info.Sign) into a two's-complement value of the given bit width.
func DecodeInt(text string, info NumericInfo, bits int) (int64, error) {
	digits := text
	switch info.Sign {
	case SignPlus, SignMinus:
		digits = digits[1:]
	}
	// The negative range is one larger than the positive range; decode
	// unsigned first against the wider bound, then negate for SignMinus.
	maxUnsigned := uint64(1)<<uint(bits-1) - 1
	maxNegative := uint64(1) << uint(bits-1)
	limit := maxUnsigned
	if info.Sign == SignMinus {
		limit = maxNegative
	}
	raw, err := decodeUintWithLimit(digits, limit)
	if err != nil {
		return 0, err
	}
	if info.Sign == SignMinus {
		return -int64(raw), nil
	}
	return int64(raw), nil
}

func decodeUintWithLimit(text string, limit uint64) (uint64, error) {
	digits := stripUnderscores(text)
	base := 10
	if strings.HasPrefix(digits, "0x") {
		digits = digits[2:]
		base = 16
	}
	var v uint64
	for i := 0; i < len(digits); i++ {
		d, err := digitValue(digits[i], base)
		if err != nil {
			return 0, err
		}
		if v > limit/uint64(base) || (v == limit/uint64(base) && uint64(d) > limit%uint64(base)) {
			return 0, fmt.Errorf("integer literal out of range")
		}
		v = v*uint64(base) + uint64(d)
	}
	return v, nil
}

func digitValue(c byte, base int) (int, error) {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'f':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		v = int(c-'A') + 10
	default:
		return 0, fmt.Errorf("invalid digit %q", c)
	}
	if v >= base {
		return 0, fmt.Errorf("invalid digit %q for base %d", c, base)
	}
	return v, nil
}

// DecodeFloat32 converts a float/nat/int/nan/inf token into its raw IEEE
// 754 binary32 bits, per spec.md §4.8 "Float".
func DecodeFloat32(text string, info NumericInfo, kind Kind) (uint32, error) {
	bits, err := decodeFloatBits(text, info, kind, 32)
	return uint32(bits), err
}

// DecodeFloat64 converts a float/nat/int/nan/inf token into its raw IEEE
// 754 binary64 bits.
func DecodeFloat64(text string, info NumericInfo, kind Kind) (uint64, error) {
	return decodeFloatBits(text, info, kind, 64)
}

func decodeFloatBits(text string, info NumericInfo, kind Kind, size int) (uint64, error) {
	neg := info.Sign == SignMinus
	switch kind {
	case KindInf:
		if size == 32 {
			bits := uint64(math.Float32bits(float32(math.Inf(1))))
			if neg {
				bits |= 1 << 31
			}
			return bits, nil
		}
		bits := math.Float64bits(math.Inf(1))
		if neg {
			bits |= 1 << 63
		}
		return bits, nil
	case KindNan:
		return encodeNaN(info, neg, size)
	default:
		clean := stripUnderscores(text)
		f, err := strconv.ParseFloat(clean, size)
		if err != nil {
			return 0, fmt.Errorf("malformed float literal: %w", err)
		}
		if size == 32 {
			return uint64(math.Float32bits(float32(f))), nil
		}
		return math.Float64bits(f), nil
	}
}

// encodeNaN builds the raw bits for `nan` (canonical, high mantissa bit
// set) or `nan:0xNN` (explicit payload). Payload 0 is invalid: it would
// be indistinguishable from infinity (spec.md §4.8).
func encodeNaN(info NumericInfo, neg bool, size int) (uint64, error) {
	expBits := uint64(0xff) << 23
	mantissaBits := uint(23)
	signBit := uint64(1) << 31
	if size == 64 {
		expBits = uint64(0x7ff) << 52
		mantissaBits = 52
		signBit = uint64(1) << 63
	}
	var mantissa uint64
	if info.NanPayloadHex == "" {
		mantissa = uint64(1) << (mantissaBits - 1) // canonical NaN
	} else {
		digits := stripUnderscores(info.NanPayloadHex)
		v, err := decodeUintWithLimit("0x"+digits, (uint64(1)<<mantissaBits)-1)
		if err != nil {
			return 0, fmt.Errorf("NaN payload out of range: %w", err)
		}
		if v == 0 {
			return 0, fmt.Errorf("NaN payload must be non-zero")
		}
		mantissa = v
	}
	bits := expBits | mantissa
	if neg {
		bits |= signBit
	}
	return bits, nil
}
