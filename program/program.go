package program

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/coregx/bxgrep/bitset"
)

// Errors produced while building or loading a Program.
var (
	// ErrProgramTooLarge is returned when a program's bytecode would exceed
	// what a 32-bit LONG_FORK offset can address.
	ErrProgramTooLarge = errors.New("bxgrep/program: program too large to address")

	// ErrDeserialize is returned for any malformed serialized program: bad
	// magic, bad version, truncated or inconsistent length fields.
	ErrDeserialize = errors.New("bxgrep/program: deserialize error")
)

// magic identifies the serialized program format; version allows the wire
// format to evolve without breaking older programs silently.
const (
	magic        = "BXGPROG\x00"
	formatVersion = uint8(1)
)

// PatternInfo records one compiled pattern's metadata, verbatim enough to
// reconstruct the original Pattern from a deserialized Program.
type PatternInfo struct {
	Expression      string
	Encoding        string
	UserIndex       uint64
	CaseInsensitive bool
	FixedString     bool
}

const (
	flagCaseInsensitive = 1 << 0
	flagFixedString     = 1 << 1
)

// Program is the immutable output of compilation: a bytecode instruction
// stream plus everything the VM needs to execute it and everything a
// caller needs to map a match back to its originating pattern.
type Program struct {
	Code             []byte
	FirstByteSet     bitset.ByteSet
	NumCheckedStates uint32
	Patterns         []PatternInfo

	// VertexLabels maps a vertex's code address to the pattern labels a
	// thread resting there could still go on to complete — used by the VM
	// to tell whether a not-yet-labeled carried thread might still
	// extend a pending match, without needing its own LABEL set yet.
	VertexLabels map[uint32][]uint32
}

// DeserializeError wraps a low-level parse failure with context about what
// was being read when it happened.
type DeserializeError struct {
	Reason string
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("bxgrep/program: %s", e.Reason)
}

func (e *DeserializeError) Unwrap() error {
	return ErrDeserialize
}

// Serialize writes p in the little-endian wire format documented in the
// package's external interface: magic+version, numCheckedStates, code,
// pattern table, firstByteSet.
func (p *Program) Serialize() []byte {
	var buf []byte
	buf = append(buf, magic...)
	buf = append(buf, formatVersion)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], p.NumCheckedStates)
	buf = append(buf, u32[:]...)

	binary.LittleEndian.PutUint32(u32[:], uint32(len(p.Code)))
	buf = append(buf, u32[:]...)
	buf = append(buf, p.Code...)

	binary.LittleEndian.PutUint32(u32[:], uint32(len(p.Patterns)))
	buf = append(buf, u32[:]...)
	for _, pi := range p.Patterns {
		buf = appendLenPrefixed(buf, pi.Expression)
		buf = appendLenPrefixed(buf, pi.Encoding)

		var u64 [8]byte
		binary.LittleEndian.PutUint64(u64[:], pi.UserIndex)
		buf = append(buf, u64[:]...)

		var flags byte
		if pi.CaseInsensitive {
			flags |= flagCaseInsensitive
		}
		if pi.FixedString {
			flags |= flagFixedString
		}
		buf = append(buf, flags)
	}

	fbs := p.FirstByteSet.Marshal()
	buf = append(buf, fbs[:]...)

	addrs := make([]uint32, 0, len(p.VertexLabels))
	for addr := range p.VertexLabels {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	binary.LittleEndian.PutUint32(u32[:], uint32(len(addrs)))
	buf = append(buf, u32[:]...)
	for _, addr := range addrs {
		binary.LittleEndian.PutUint32(u32[:], addr)
		buf = append(buf, u32[:]...)
		labels := p.VertexLabels[addr]
		binary.LittleEndian.PutUint32(u32[:], uint32(len(labels)))
		buf = append(buf, u32[:]...)
		for _, lbl := range labels {
			binary.LittleEndian.PutUint32(u32[:], lbl)
			buf = append(buf, u32[:]...)
		}
	}

	return buf
}

func appendLenPrefixed(buf []byte, s string) []byte {
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(s)))
	buf = append(buf, u32[:]...)
	buf = append(buf, s...)
	return buf
}

// Deserialize parses the wire format written by Serialize. A read+write
// round trip reproduces the input byte-for-byte.
func Deserialize(buf []byte) (*Program, error) {
	r := &reader{buf: buf}

	gotMagic, err := r.take(len(magic))
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated magic"}
	}
	if string(gotMagic) != magic {
		return nil, &DeserializeError{Reason: "bad magic"}
	}

	version, err := r.byte()
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated version"}
	}
	if version != formatVersion {
		return nil, &DeserializeError{Reason: fmt.Sprintf("unsupported version %d", version)}
	}

	numChecked, err := r.u32()
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated numCheckedStates"}
	}

	codeLen, err := r.u32()
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated codeLen"}
	}
	code, err := r.take(int(codeLen))
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated code"}
	}
	codeCopy := make([]byte, len(code))
	copy(codeCopy, code)

	patternCount, err := r.u32()
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated patternCount"}
	}

	patterns := make([]PatternInfo, 0, patternCount)
	for i := uint32(0); i < patternCount; i++ {
		expr, err := r.lenPrefixedString()
		if err != nil {
			return nil, &DeserializeError{Reason: "truncated pattern expression"}
		}
		enc, err := r.lenPrefixedString()
		if err != nil {
			return nil, &DeserializeError{Reason: "truncated pattern encoding"}
		}
		userIndex, err := r.u64()
		if err != nil {
			return nil, &DeserializeError{Reason: "truncated pattern userIndex"}
		}
		flags, err := r.byte()
		if err != nil {
			return nil, &DeserializeError{Reason: "truncated pattern flags"}
		}
		patterns = append(patterns, PatternInfo{
			Expression:      expr,
			Encoding:        enc,
			UserIndex:       userIndex,
			CaseInsensitive: flags&flagCaseInsensitive != 0,
			FixedString:     flags&flagFixedString != 0,
		})
	}

	fbsBuf, err := r.take(32)
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated firstByteSet"}
	}
	var fbsArr [32]byte
	copy(fbsArr[:], fbsBuf)

	vertexCount, err := r.u32()
	if err != nil {
		return nil, &DeserializeError{Reason: "truncated vertexLabels count"}
	}
	vertexLabels := make(map[uint32][]uint32, vertexCount)
	for i := uint32(0); i < vertexCount; i++ {
		addr, err := r.u32()
		if err != nil {
			return nil, &DeserializeError{Reason: "truncated vertexLabels address"}
		}
		labelCount, err := r.u32()
		if err != nil {
			return nil, &DeserializeError{Reason: "truncated vertexLabels labelCount"}
		}
		labels := make([]uint32, 0, labelCount)
		for j := uint32(0); j < labelCount; j++ {
			lbl, err := r.u32()
			if err != nil {
				return nil, &DeserializeError{Reason: "truncated vertexLabels label"}
			}
			labels = append(labels, lbl)
		}
		vertexLabels[addr] = labels
	}

	if !r.atEnd() {
		return nil, &DeserializeError{Reason: "trailing bytes after vertexLabels"}
	}

	return &Program{
		Code:             codeCopy,
		FirstByteSet:     bitset.Unmarshal(fbsArr),
		NumCheckedStates: numChecked,
		Patterns:         patterns,
		VertexLabels:     vertexLabels,
	}, nil
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) atEnd() bool {
	return r.pos == len(r.buf)
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errors.New("short read")
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) lenPrefixedString() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
