// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"fmt"
	"time"
)

// DateTime is a point in time together with the two-bit kind field the wire
// format packs into the low bits of the tick count.
type DateTime struct {
	Time time.Time    `json:"time"`
	Kind DateTimeKind `json:"kind"`
}

// Primitive is a scalar value tagged with its wire type. Value holds the Go
// representation matching Type: bool, uint8, rune, string, float64, int16,
// int32, int64, int8, float32, time.Duration, DateTime, uint16, uint32,
// uint64, or nil for Null.
type Primitive struct {
	Type  PrimitiveType `json:"type"`
	Value interface{}   `json:"value,omitempty"`
}

// Boolean wraps a bool into a Primitive.
func Boolean(v bool) Primitive { return Primitive{PrimitiveBoolean, v} }

// Byte wraps a uint8 into a Primitive.
func Byte(v uint8) Primitive { return Primitive{PrimitiveByte, v} }

// Char wraps a code point into a Primitive.
func Char(v rune) Primitive { return Primitive{PrimitiveChar, v} }

// Decimal wraps a decimal string into a Primitive.
func Decimal(v string) Primitive { return Primitive{PrimitiveDecimal, v} }

// Double wraps a float64 into a Primitive.
func Double(v float64) Primitive { return Primitive{PrimitiveDouble, v} }

// Int16 wraps an int16 into a Primitive.
func Int16(v int16) Primitive { return Primitive{PrimitiveInt16, v} }

// Int32 wraps an int32 into a Primitive.
func Int32(v int32) Primitive { return Primitive{PrimitiveInt32, v} }

// Int64 wraps an int64 into a Primitive.
func Int64(v int64) Primitive { return Primitive{PrimitiveInt64, v} }

// SByte wraps an int8 into a Primitive.
func SByte(v int8) Primitive { return Primitive{PrimitiveSByte, v} }

// Single wraps a float32 into a Primitive.
func Single(v float32) Primitive { return Primitive{PrimitiveSingle, v} }

// TimeSpan wraps a duration into a Primitive.
func TimeSpan(v time.Duration) Primitive { return Primitive{PrimitiveTimeSpan, v} }

// Timestamp wraps a DateTime into a Primitive.
func Timestamp(v DateTime) Primitive { return Primitive{PrimitiveDateTime, v} }

// UInt16 wraps a uint16 into a Primitive.
func UInt16(v uint16) Primitive { return Primitive{PrimitiveUInt16, v} }

// UInt32 wraps a uint32 into a Primitive.
func UInt32(v uint32) Primitive { return Primitive{PrimitiveUInt32, v} }

// UInt64 wraps a uint64 into a Primitive.
func UInt64(v uint64) Primitive { return Primitive{PrimitiveUInt64, v} }

// Null is the primitive with no payload.
func Null() Primitive { return Primitive{PrimitiveNull, nil} }

// String wraps a string into a Primitive.
func String(v string) Primitive { return Primitive{PrimitiveString, v} }

// readPrimitive reads one unframed primitive value of the given type.
func readPrimitive(r *reader, pt PrimitiveType) (Primitive, error) {
	switch pt {
	case PrimitiveBoolean:
		v, err := r.ReadBool()
		return Boolean(v), err
	case PrimitiveByte:
		v, err := r.ReadU8()
		return Byte(v), err
	case PrimitiveChar:
		v, err := r.ReadChar()
		return Char(v), err
	case PrimitiveDecimal:
		v, err := r.ReadString()
		return Decimal(v), err
	case PrimitiveDouble:
		v, err := r.ReadFloat64()
		return Double(v), err
	case PrimitiveInt16:
		v, err := r.ReadI16()
		return Int16(v), err
	case PrimitiveInt32:
		v, err := r.ReadI32()
		return Int32(v), err
	case PrimitiveInt64:
		v, err := r.ReadI64()
		return Int64(v), err
	case PrimitiveSByte:
		v, err := r.ReadI8()
		return SByte(v), err
	case PrimitiveSingle:
		v, err := r.ReadFloat32()
		return Single(v), err
	case PrimitiveTimeSpan:
		v, err := r.ReadTimeSpan()
		return TimeSpan(v), err
	case PrimitiveDateTime:
		v, err := r.ReadDateTime()
		return Timestamp(v), err
	case PrimitiveUInt16:
		v, err := r.ReadU16()
		return UInt16(v), err
	case PrimitiveUInt32:
		v, err := r.ReadU32()
		return UInt32(v), err
	case PrimitiveUInt64:
		v, err := r.ReadU64()
		return UInt64(v), err
	case PrimitiveNull:
		return Null(), nil
	case PrimitiveString:
		v, err := r.ReadString()
		return String(v), err
	}
	return Primitive{}, fmt.Errorf("%w: %s", ErrInvalidPrimitiveType, pt)
}

// writeTo writes the unframed primitive value. The type tag, when a frame
// requires one, is the caller's business.
func (p Primitive) writeTo(w *writer) error {
	mismatch := func() error {
		return fmt.Errorf("%w: %s carries %T", ErrInvalidPrimitiveType, p.Type, p.Value)
	}

	switch p.Type {
	case PrimitiveBoolean:
		v, ok := p.Value.(bool)
		if !ok {
			return mismatch()
		}
		return w.WriteBool(v)
	case PrimitiveByte:
		v, ok := p.Value.(uint8)
		if !ok {
			return mismatch()
		}
		return w.WriteU8(v)
	case PrimitiveChar:
		v, ok := p.Value.(rune)
		if !ok {
			return mismatch()
		}
		return w.WriteChar(v)
	case PrimitiveDecimal, PrimitiveString:
		v, ok := p.Value.(string)
		if !ok {
			return mismatch()
		}
		return w.WriteString(v)
	case PrimitiveDouble:
		v, ok := p.Value.(float64)
		if !ok {
			return mismatch()
		}
		return w.WriteFloat64(v)
	case PrimitiveInt16:
		v, ok := p.Value.(int16)
		if !ok {
			return mismatch()
		}
		return w.WriteI16(v)
	case PrimitiveInt32:
		v, ok := p.Value.(int32)
		if !ok {
			return mismatch()
		}
		return w.WriteI32(v)
	case PrimitiveInt64:
		v, ok := p.Value.(int64)
		if !ok {
			return mismatch()
		}
		return w.WriteI64(v)
	case PrimitiveSByte:
		v, ok := p.Value.(int8)
		if !ok {
			return mismatch()
		}
		return w.WriteI8(v)
	case PrimitiveSingle:
		v, ok := p.Value.(float32)
		if !ok {
			return mismatch()
		}
		return w.WriteFloat32(v)
	case PrimitiveTimeSpan:
		v, ok := p.Value.(time.Duration)
		if !ok {
			return mismatch()
		}
		return w.WriteTimeSpan(v)
	case PrimitiveDateTime:
		v, ok := p.Value.(DateTime)
		if !ok {
			return mismatch()
		}
		return w.WriteDateTime(v)
	case PrimitiveUInt16:
		v, ok := p.Value.(uint16)
		if !ok {
			return mismatch()
		}
		return w.WriteU16(v)
	case PrimitiveUInt32:
		v, ok := p.Value.(uint32)
		if !ok {
			return mismatch()
		}
		return w.WriteU32(v)
	case PrimitiveUInt64:
		v, ok := p.Value.(uint64)
		if !ok {
			return mismatch()
		}
		return w.WriteU64(v)
	case PrimitiveNull:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidPrimitiveType, p.Type)
}

// PrimitiveArray is a homogeneous sequence of primitive values materialized
// as a typed Go slice. Elements holds the slice matching Type: []bool,
// []uint8, []rune, []string, []float64, []int16, []int32, []int64, []int8,
// []float32, []time.Duration, []DateTime, []uint16, []uint32, []uint64, or
// nil for Null.
type PrimitiveArray struct {
	Type     PrimitiveType `json:"type"`
	Elements interface{}   `json:"elements"`
}

// Len returns the element count.
func (a PrimitiveArray) Len() int {
	return len(a.primitives())
}

// newPrimitiveArray projects a parsed member list into the typed sequence
// matching the declared element type.
func newPrimitiveArray(pt PrimitiveType, members []Primitive) (PrimitiveArray, error) {
	mismatch := func(i int, p Primitive) error {
		return fmt.Errorf("%w: %s array element %d carries %T",
			ErrInvalidPrimitiveType, pt, i, p.Value)
	}

	switch pt {
	case PrimitiveBoolean:
		out := make([]bool, len(members))
		for i, m := range members {
			v, ok := m.Value.(bool)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveByte:
		out := make([]uint8, len(members))
		for i, m := range members {
			v, ok := m.Value.(uint8)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveChar:
		out := make([]rune, len(members))
		for i, m := range members {
			v, ok := m.Value.(rune)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveDecimal, PrimitiveString:
		out := make([]string, len(members))
		for i, m := range members {
			v, ok := m.Value.(string)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveDouble:
		out := make([]float64, len(members))
		for i, m := range members {
			v, ok := m.Value.(float64)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveInt16:
		out := make([]int16, len(members))
		for i, m := range members {
			v, ok := m.Value.(int16)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveInt32:
		out := make([]int32, len(members))
		for i, m := range members {
			v, ok := m.Value.(int32)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveInt64:
		out := make([]int64, len(members))
		for i, m := range members {
			v, ok := m.Value.(int64)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveSByte:
		out := make([]int8, len(members))
		for i, m := range members {
			v, ok := m.Value.(int8)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveSingle:
		out := make([]float32, len(members))
		for i, m := range members {
			v, ok := m.Value.(float32)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveTimeSpan:
		out := make([]time.Duration, len(members))
		for i, m := range members {
			v, ok := m.Value.(time.Duration)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveDateTime:
		out := make([]DateTime, len(members))
		for i, m := range members {
			v, ok := m.Value.(DateTime)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveUInt16:
		out := make([]uint16, len(members))
		for i, m := range members {
			v, ok := m.Value.(uint16)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveUInt32:
		out := make([]uint32, len(members))
		for i, m := range members {
			v, ok := m.Value.(uint32)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveUInt64:
		out := make([]uint64, len(members))
		for i, m := range members {
			v, ok := m.Value.(uint64)
			if !ok {
				return PrimitiveArray{}, mismatch(i, m)
			}
			out[i] = v
		}
		return PrimitiveArray{pt, out}, nil
	case PrimitiveNull:
		return PrimitiveArray{pt, nil}, nil
	}
	return PrimitiveArray{}, fmt.Errorf("%w: %s", ErrInvalidPrimitiveType, pt)
}

// primitives flattens the typed sequence back into tagged values for the
// record codec. Dispatch runs on the declared type: rune aliases int32, so
// the dynamic element type alone cannot tell a Char array from an Int32 one.
func (a PrimitiveArray) primitives() []Primitive {
	switch a.Type {
	case PrimitiveBoolean:
		if v, ok := a.Elements.([]bool); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Boolean(e)
			}
			return out
		}
	case PrimitiveByte:
		if v, ok := a.Elements.([]uint8); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Byte(e)
			}
			return out
		}
	case PrimitiveChar:
		if v, ok := a.Elements.([]rune); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Char(e)
			}
			return out
		}
	case PrimitiveDecimal, PrimitiveString:
		if v, ok := a.Elements.([]string); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Primitive{a.Type, e}
			}
			return out
		}
	case PrimitiveDouble:
		if v, ok := a.Elements.([]float64); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Double(e)
			}
			return out
		}
	case PrimitiveInt16:
		if v, ok := a.Elements.([]int16); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Int16(e)
			}
			return out
		}
	case PrimitiveInt32:
		if v, ok := a.Elements.([]int32); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Int32(e)
			}
			return out
		}
	case PrimitiveInt64:
		if v, ok := a.Elements.([]int64); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Int64(e)
			}
			return out
		}
	case PrimitiveSByte:
		if v, ok := a.Elements.([]int8); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = SByte(e)
			}
			return out
		}
	case PrimitiveSingle:
		if v, ok := a.Elements.([]float32); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Single(e)
			}
			return out
		}
	case PrimitiveTimeSpan:
		if v, ok := a.Elements.([]time.Duration); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = TimeSpan(e)
			}
			return out
		}
	case PrimitiveDateTime:
		if v, ok := a.Elements.([]DateTime); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = Timestamp(e)
			}
			return out
		}
	case PrimitiveUInt16:
		if v, ok := a.Elements.([]uint16); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = UInt16(e)
			}
			return out
		}
	case PrimitiveUInt32:
		if v, ok := a.Elements.([]uint32); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = UInt32(e)
			}
			return out
		}
	case PrimitiveUInt64:
		if v, ok := a.Elements.([]uint64); ok {
			out := make([]Primitive, len(v))
			for i, e := range v {
				out[i] = UInt64(e)
			}
			return out
		}
	}
	return nil
}
