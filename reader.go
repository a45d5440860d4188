// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"
)

const (
	// ticksPerSecond is the number of 100 ns BCL ticks in one second.
	ticksPerSecond = 10000000

	// maxDateTimeTicks is the BCL DateTime.MaxValue tick count
	// (9999-12-31T23:59:59.9999999).
	maxDateTimeTicks = 3155378975999999999

	// dateTimeKindMask covers the kind field packed into the low two bits of
	// a DateTime tick value.
	dateTimeKindMask = 0x3
)

// countingReader tracks how many bytes the wrapped reader has produced, so
// the record loop can report where each record starts.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// reader decodes the NRBF primitive wire encodings from an io.Reader. All
// multi-byte values are little-endian. Non-fatal oddities observed while
// reading are collected in anomalies.
type reader struct {
	r         io.Reader
	cr        *countingReader
	opts      *Options
	anomalies []string
	buf       [8]byte
}

func newReader(r io.Reader, opts *Options) *reader {
	if opts == nil {
		opts = &Options{}
	}
	maxString := opts.MaxStringLength
	if maxString == 0 {
		maxString = MaxDefaultStringLength
	}
	maxArray := opts.MaxArrayLength
	if maxArray == 0 {
		maxArray = MaxDefaultArrayLength
	}
	cr := &countingReader{r: r}
	return &reader{
		r:    cr,
		cr:   cr,
		opts: &Options{MaxStringLength: maxString, MaxArrayLength: maxArray},
	}
}

// Offset returns the number of bytes consumed so far.
func (r *reader) Offset() int64 {
	return r.cr.n
}

func (r *reader) ReadU8() (uint8, error) {
	if _, err := io.ReadFull(r.r, r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

func (r *reader) ReadU16() (uint16, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[:2]), nil
}

func (r *reader) ReadU32() (uint32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

func (r *reader) ReadU64() (uint64, error) {
	if _, err := io.ReadFull(r.r, r.buf[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.buf[:8]), nil
}

func (r *reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

func (r *reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *reader) ReadFloat32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *reader) ReadFloat64() (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v > 0, err
}

// ReadLength reads a 7-bit variable length prefix of up to 5 bytes. Each
// byte contributes its low 7 bits; the high bit means continue. A prefix
// whose final group carries no bits encodes the same length in fewer bytes
// and is flagged as an anomaly.
func (r *reader) ReadLength() (uint32, error) {
	var length uint32
	var last uint8
	n := 0
	for i := 0; i < 5; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		last = b
		n++
		length |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			break
		}
	}
	if n > 1 && last&0x7F == 0 {
		r.anomalies = append(r.anomalies, AnoNonMinimalLength)
	}
	return length, nil
}

// ReadString reads a 7-bit length-prefixed UTF-8 string.
func (r *reader) ReadString() (string, error) {
	length, err := r.ReadLength()
	if err != nil {
		return "", err
	}
	if length > r.opts.MaxStringLength {
		return "", fmt.Errorf("%w: string of %d bytes", ErrTooLarge, length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", ErrInvalidString
	}
	return string(buf), nil
}

// ReadChar reads one UTF-8 encoded code point of 1 to 4 bytes. The leading
// byte selects the sequence width.
func (r *reader) ReadChar() (rune, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}

	var width int
	switch {
	case b&0x80 == 0:
		width = 1
	case b&0xE0 == 0xC0:
		width = 2
	case b&0xF0 == 0xE0:
		width = 3
	case b&0xF8 == 0xF0:
		width = 4
	default:
		return 0, ErrInvalidChar
	}

	buf := make([]byte, width)
	buf[0] = b
	if _, err := io.ReadFull(r.r, buf[1:]); err != nil {
		return 0, err
	}

	c, size := utf8.DecodeRune(buf)
	if c == utf8.RuneError && size <= 1 {
		return 0, ErrInvalidChar
	}
	if size != width {
		return 0, ErrInvalidChar
	}
	return c, nil
}

// ReadTimeSpan reads a signed i64 count of 100 ns ticks.
func (r *reader) ReadTimeSpan() (time.Duration, error) {
	ticks, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	if ticks > math.MaxInt64/100 || ticks < math.MinInt64/100 {
		return 0, ErrInvalidTimeSpan
	}
	return time.Duration(ticks * 100), nil
}

// ReadDateTime reads a u64 whose low two bits carry the DateTimeKind; the
// remaining bits are a 100 ns tick count.
func (r *reader) ReadDateTime() (DateTime, error) {
	raw, err := r.ReadU64()
	if err != nil {
		return DateTime{}, err
	}

	kind := DateTimeKind(raw & dateTimeKindMask)
	ticks := int64(raw &^ uint64(dateTimeKindMask))
	if ticks < 0 || ticks > maxDateTimeTicks {
		return DateTime{}, ErrInvalidDateTime
	}

	sec := ticks / ticksPerSecond
	nsec := (ticks % ticksPerSecond) * 100
	return DateTime{
		Time: time.Unix(sec, nsec).UTC(),
		Kind: kind,
	}, nil
}

// ReadCount reads an i32 count field and rejects negative values.
func (r *reader) ReadCount() (int32, error) {
	count, err := r.ReadI32()
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}
	return count, nil
}

// ReadArrayLength reads an i32 element count and applies the allocation cap.
func (r *reader) ReadArrayLength() (int32, error) {
	length, err := r.ReadCount()
	if err != nil {
		return 0, err
	}
	if uint32(length) > r.opts.MaxArrayLength {
		return 0, fmt.Errorf("%w: array of %d elements", ErrTooLarge, length)
	}
	return length, nil
}

func (r *reader) ReadRecordType() (RecordType, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	return recordTypeFromByte(b)
}

func (r *reader) ReadPrimitiveType() (PrimitiveType, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	return primitiveTypeFromByte(b)
}

func (r *reader) ReadBinaryType() (BinaryType, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	return binaryTypeFromByte(b)
}

func (r *reader) ReadBinaryArrayType() (BinaryArrayType, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	return binaryArrayTypeFromByte(b)
}
