// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"encoding/binary"
	"io"
	"math"
	"time"
	"unicode/utf8"
)

// writer encodes the NRBF primitive wire encodings to an io.Writer. All
// multi-byte values are little-endian. It does not flush.
type writer struct {
	w   io.Writer
	buf [8]byte
}

func newWriter(w io.Writer) *writer {
	return &writer{w: w}
}

func (w *writer) WriteU8(v uint8) error {
	w.buf[0] = v
	_, err := w.w.Write(w.buf[:1])
	return err
}

func (w *writer) WriteU16(v uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	_, err := w.w.Write(w.buf[:2])
	return err
}

func (w *writer) WriteU32(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	_, err := w.w.Write(w.buf[:4])
	return err
}

func (w *writer) WriteU64(v uint64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	_, err := w.w.Write(w.buf[:8])
	return err
}

func (w *writer) WriteI8(v int8) error {
	return w.WriteU8(uint8(v))
}

func (w *writer) WriteI16(v int16) error {
	return w.WriteU16(uint16(v))
}

func (w *writer) WriteI32(v int32) error {
	return w.WriteU32(uint32(v))
}

func (w *writer) WriteI64(v int64) error {
	return w.WriteU64(uint64(v))
}

func (w *writer) WriteFloat32(v float32) error {
	return w.WriteU32(math.Float32bits(v))
}

func (w *writer) WriteFloat64(v float64) error {
	return w.WriteU64(math.Float64bits(v))
}

func (w *writer) WriteBool(v bool) error {
	if v {
		return w.WriteU8(1)
	}
	return w.WriteU8(0)
}

// WriteLength writes a 7-bit variable length prefix of up to 5 bytes.
func (w *writer) WriteLength(length uint32) error {
	for i := 0; i < 5; i++ {
		b := uint8(length & 0x7F)
		length >>= 7
		if length == 0 {
			return w.WriteU8(b)
		}
		if err := w.WriteU8(b | 0x80); err != nil {
			return err
		}
	}
	return nil
}

// WriteString writes a 7-bit length-prefixed UTF-8 string.
func (w *writer) WriteString(s string) error {
	if err := w.WriteLength(uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, s)
	return err
}

// WriteChar writes one code point as 1 to 4 UTF-8 bytes.
func (w *writer) WriteChar(c rune) error {
	if !utf8.ValidRune(c) {
		return ErrInvalidChar
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], c)
	_, err := w.w.Write(buf[:n])
	return err
}

// WriteTimeSpan writes the signed i64 count of 100 ns ticks.
func (w *writer) WriteTimeSpan(d time.Duration) error {
	return w.WriteI64(int64(d) / 100)
}

// WriteDateTime writes a u64 tick count with the kind field reassembled into
// the low two bits.
func (w *writer) WriteDateTime(dt DateTime) error {
	sec := dt.Time.Unix()
	ticks := sec*ticksPerSecond + int64(dt.Time.Nanosecond())/100
	if ticks < 0 || ticks > maxDateTimeTicks {
		return ErrInvalidDateTime
	}
	raw := uint64(ticks)&^uint64(dateTimeKindMask) | uint64(dt.Kind&dateTimeKindMask)
	return w.WriteU64(raw)
}

func (w *writer) WriteRecordType(rt RecordType) error {
	return w.WriteU8(uint8(rt))
}

func (w *writer) WritePrimitiveType(pt PrimitiveType) error {
	return w.WriteU8(uint8(pt))
}

func (w *writer) WriteBinaryType(bt BinaryType) error {
	return w.WriteU8(uint8(bt))
}

func (w *writer) WriteBinaryArrayType(at BinaryArrayType) error {
	return w.WriteU8(uint8(at))
}
