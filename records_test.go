// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"bytes"
	"errors"
	"testing"
)

// roundTripRecord parses one framed record and checks that writing it back
// reproduces the input byte for byte.
func roundTripRecord(t *testing.T, data []byte) Record {
	t.Helper()

	r := testReader(data)
	rt, err := r.ReadRecordType()
	if err != nil {
		t.Fatalf("ReadRecordType failed, reason: %v", err)
	}
	record, err := readRecord(r, rt)
	if err != nil {
		t.Fatalf("readRecord(%v) failed, reason: %v", rt, err)
	}

	var buf bytes.Buffer
	if err := record.writeTo(newWriter(&buf)); err != nil {
		t.Fatalf("writeTo(%v) failed, reason: %v", rt, err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("%v round trip got\n% x\nwant\n% x", rt, buf.Bytes(), data)
	}
	return record
}

func TestSerializationHeaderRoundTrip(t *testing.T) {

	record := roundTripRecord(t, []byte{
		0x00,
		0x01, 0x00, 0x00, 0x00, // root id
		0xFF, 0xFF, 0xFF, 0xFF, // header id
		0x01, 0x00, 0x00, 0x00, // major
		0x00, 0x00, 0x00, 0x00, // minor
	})

	h, ok := record.(*SerializationHeader)
	if !ok {
		t.Fatalf("record is %T, want *SerializationHeader", record)
	}
	if h.RootID != 1 || h.HeaderID != -1 || h.MajorVersion != 1 || h.MinorVersion != 0 {
		t.Errorf("header fields got %+v", h)
	}
}

func TestBinaryLibraryRoundTrip(t *testing.T) {

	record := roundTripRecord(t, []byte{
		0x0C,
		0x02, 0x00, 0x00, 0x00,
		0x07, 'M', 'y', '.', 'D', 'a', 't', 'a',
	})

	l, ok := record.(*BinaryLibrary)
	if !ok {
		t.Fatalf("record is %T, want *BinaryLibrary", record)
	}
	if l.LibraryID != 2 || l.LibraryName != "My.Data" {
		t.Errorf("library fields got %+v", l)
	}
}

func TestClassWithIdRoundTrip(t *testing.T) {

	record := roundTripRecord(t, []byte{
		0x01,
		0x05, 0x00, 0x00, 0x00, // object id
		0x01, 0x00, 0x00, 0x00, // metadata id
	})

	c, ok := record.(*ClassWithId)
	if !ok {
		t.Fatalf("record is %T, want *ClassWithId", record)
	}
	if c.ObjectID != 5 || c.MetadataID != 1 {
		t.Errorf("class with id fields got %+v", c)
	}
}

func TestBinaryObjectStringRoundTrip(t *testing.T) {

	record := roundTripRecord(t, []byte{
		0x06,
		0x03, 0x00, 0x00, 0x00,
		0x05, 'h', 'e', 'l', 'l', 'o',
	})

	s, ok := record.(*BinaryObjectString)
	if !ok {
		t.Fatalf("record is %T, want *BinaryObjectString", record)
	}
	if s.ObjectID != 3 || s.Value != "hello" {
		t.Errorf("string object fields got %+v", s)
	}
}

func TestMemberRecordsRoundTrip(t *testing.T) {

	tests := []struct {
		name string
		in   []byte
	}{
		{"MemberReference", []byte{0x09, 0x04, 0x00, 0x00, 0x00}},
		{"ObjectNull", []byte{0x0A}},
		{"MessageEnd", []byte{0x0B}},
		{"ObjectNullMultiple256", []byte{0x0D, 0x20}},
		{"ObjectNullMultiple", []byte{0x0E, 0x00, 0x01, 0x00, 0x00}},
		{"MemberTypedPrimitive", []byte{0x08, 0x08, 0x2A, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTripRecord(t, tt.in)
		})
	}
}

func TestClassWithMembersAndTypesRoundTrip(t *testing.T) {

	// Class "A" in library 2 with one Int32 member "x" = 42.
	record := roundTripRecord(t, []byte{
		0x05,
		0x01, 0x00, 0x00, 0x00, // object id
		0x01, 'A', // name
		0x01, 0x00, 0x00, 0x00, // member count
		0x01, 'x', // member name
		0x00,                   // member type Primitive
		0x08,                   // additional info Int32
		0x02, 0x00, 0x00, 0x00, // library id
		0x2A, 0x00, 0x00, 0x00, // unframed member value
	})

	c, ok := record.(*ClassWithMembersAndTypes)
	if !ok {
		t.Fatalf("record is %T, want *ClassWithMembersAndTypes", record)
	}
	if c.ClassInfo.Name != "A" || c.LibraryID != 2 {
		t.Errorf("class fields got %+v", c)
	}
	member, ok := c.MemberReferences[0].(*MemberPrimitiveUnTyped)
	if !ok {
		t.Fatalf("member is %T, want *MemberPrimitiveUnTyped", c.MemberReferences[0])
	}
	if member.Value.Value != int32(42) {
		t.Errorf("member value got %v, want 42", member.Value.Value)
	}
}

func TestSystemClassWithMembersAndTypesRoundTrip(t *testing.T) {

	// System class with one Int32 member carried as an unframed primitive.
	record := roundTripRecord(t, []byte{
		0x04,
		0x01, 0x00, 0x00, 0x00, // object id
		0x0B, 'S', 'y', 's', 't', 'e', 'm', '.', 'U', 'r', 'i', '!',
		0x01, 0x00, 0x00, 0x00, // member count
		0x03, 'u', 'r', 'i', // member name
		0x00, // member type Primitive
		0x08, // additional info Int32
		0x07, 0x00, 0x00, 0x00, // unframed member value
	})

	if _, ok := record.(*SystemClassWithMembersAndTypes); !ok {
		t.Fatalf("record is %T, want *SystemClassWithMembersAndTypes", record)
	}
}

func TestArraySinglePrimitiveRoundTrip(t *testing.T) {

	record := roundTripRecord(t, []byte{
		0x0F,
		0x02, 0x00, 0x00, 0x00, // object id
		0x03, 0x00, 0x00, 0x00, // length
		0x08,                   // element type Int32
		0x01, 0x00, 0x00, 0x00, // 1
		0x02, 0x00, 0x00, 0x00, // 2
		0x03, 0x00, 0x00, 0x00, // 3
	})

	a, ok := record.(*ArraySinglePrimitive)
	if !ok {
		t.Fatalf("record is %T, want *ArraySinglePrimitive", record)
	}
	if a.ArrayInfo.Length != 3 || len(a.Members) != 3 {
		t.Errorf("array fields got %+v", a)
	}
}

func TestArraySingleStringRoundTrip(t *testing.T) {

	record := roundTripRecord(t, []byte{
		0x11,
		0x04, 0x00, 0x00, 0x00, // object id
		0x02, 0x00, 0x00, 0x00, // length
		0x02, 'h', 'i',
		0x00,
	})

	a, ok := record.(*ArraySingleString)
	if !ok {
		t.Fatalf("record is %T, want *ArraySingleString", record)
	}
	if a.Members[0] != "hi" || a.Members[1] != "" {
		t.Errorf("string array members got %v", a.Members)
	}
}

func TestBinaryArrayRoundTrip(t *testing.T) {

	// Single-dimensional array of one Int32, no lower bounds.
	roundTripRecord(t, []byte{
		0x07,
		0x06, 0x00, 0x00, 0x00, // object id
		0x00,                   // array type Single
		0x01, 0x00, 0x00, 0x00, // rank
		0x04, 0x00, 0x00, 0x00, // length
		0x00,                   // element binary type Primitive
		0x08,                   // additional info Int32
		0x2A, 0x00, 0x00, 0x00, // unframed member value
	})

	// Offset shape carries lower bounds.
	roundTripRecord(t, []byte{
		0x07,
		0x07, 0x00, 0x00, 0x00, // object id
		0x03,                   // array type SingleOffset
		0x01, 0x00, 0x00, 0x00, // rank
		0x02, 0x00, 0x00, 0x00, // length
		0x05, 0x00, 0x00, 0x00, // lower bound
		0x00,                   // element binary type Primitive
		0x02,                   // additional info Byte
		0x7F, // unframed member value
	})
}

func TestBinaryMethodCallRoundTrip(t *testing.T) {

	// ArgsInline and ContextInline set: both tail fields present.
	record := roundTripRecord(t, []byte{
		0x15,
		0x22, 0x00, 0x00, 0x00, // message flags
		0x01, 0x03, 'S', 'u', 'm', // method name
		0x01, 0x03, 'L', 'i', 'b', // type name
		0x01, 0x02, 'c', 'x', // call context
		0x02, 0x00, 0x00, 0x00, // args length
		0x08, 0x2A, 0x00, 0x00, 0x00, // Int32 42
		0x12, 0x02, 'h', 'i', // String "hi"
	})

	c, ok := record.(*BinaryMethodCall)
	if !ok {
		t.Fatalf("record is %T, want *BinaryMethodCall", record)
	}
	if c.MethodName.Value != "Sum" || c.TypeName.Value != "Lib" {
		t.Errorf("method call names got %+v", c)
	}
	if c.CallContext == nil || c.CallContext.Value != "cx" {
		t.Errorf("method call context got %+v", c.CallContext)
	}
	if c.Args == nil || len(c.Args.Values) != 2 {
		t.Fatalf("method call args got %+v", c.Args)
	}

	// Neither flag set: no tail fields.
	record = roundTripRecord(t, []byte{
		0x15,
		0x11, 0x00, 0x00, 0x00, // NoArgs | NoContext
		0x01, 0x04, 'P', 'i', 'n', 'g',
		0x01, 0x03, 'L', 'i', 'b',
	})
	c = record.(*BinaryMethodCall)
	if c.CallContext != nil || c.Args != nil {
		t.Errorf("method call tail fields present without flags: %+v", c)
	}
}

func TestBinaryMethodReturnRoundTrip(t *testing.T) {

	record := roundTripRecord(t, []byte{
		0x16,
		0x00, 0x08, 0x00, 0x00, // ReturnValueInline
		0x08, 0x07, 0x00, 0x00, 0x00, // Int32 7
	})

	m, ok := record.(*BinaryMethodReturn)
	if !ok {
		t.Fatalf("record is %T, want *BinaryMethodReturn", record)
	}
	if m.ReturnValue == nil || m.ReturnValue.Value.Value != int32(7) {
		t.Errorf("method return value got %+v", m.ReturnValue)
	}
	if m.CallContext != nil || m.Args != nil {
		t.Errorf("method return tail fields present without flags: %+v", m)
	}
}

func TestReadRecordsTerminatesOnMessageEnd(t *testing.T) {

	data := []byte{
		0x00,
		0x01, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x0B,
		0xDE, 0xAD, // trailing bytes stay untouched
	}

	records, err := readRecords(testReader(data))
	if err != nil {
		t.Fatalf("readRecords failed, reason: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("readRecords got %d records, want 2", len(records))
	}
	if _, ok := records[1].(MessageEnd); !ok {
		t.Errorf("last record is %T, want MessageEnd", records[1])
	}
}

func TestReadRecordInvalidTag(t *testing.T) {

	_, err := readRecords(testReader([]byte{99}))
	if !errors.Is(err, ErrInvalidRecordType) {
		t.Errorf("tag 99 got %v, want ErrInvalidRecordType", err)
	}
}

func TestReadRecordNotEnoughInfo(t *testing.T) {

	// ClassWithMembers is externally sized: the tag dispatch cannot frame it.
	tests := []uint8{0x02, 0x03, 0x10}

	for _, tag := range tests {
		r := testReader([]byte{tag})
		rt, err := r.ReadRecordType()
		if err != nil {
			t.Fatalf("ReadRecordType(%d) failed, reason: %v", tag, err)
		}
		if _, err := readRecord(r, rt); !errors.Is(err, ErrNotEnoughInfo) {
			t.Errorf("readRecord(%v) got %v, want ErrNotEnoughInfo", rt, err)
		}
	}
}

func TestSizedRecordsRoundTrip(t *testing.T) {

	// The externally sized record kinds still round-trip when the caller
	// supplies the per-member width.
	t.Run("SystemClassWithMembers", func(t *testing.T) {
		data := []byte{
			0x02, 0x00, 0x00, 0x00, // object id
			0x01, 'S',
			0x02, 0x00, 0x00, 0x00, // member count
			0x01, 'a',
			0x01, 'b',
			0xAA, 0xBB, 0xCC, 0xDD, // two opaque 2-byte members
		}
		c, err := readSystemClassWithMembers(testReader(data), 2)
		if err != nil {
			t.Fatalf("readSystemClassWithMembers failed, reason: %v", err)
		}
		if len(c.Data) != 2 || !bytes.Equal(c.Data[1], []byte{0xCC, 0xDD}) {
			t.Errorf("opaque members got %v", c.Data)
		}

		var buf bytes.Buffer
		if err := c.writeTo(newWriter(&buf)); err != nil {
			t.Fatalf("SystemClassWithMembers write failed, reason: %v", err)
		}
		want := append([]byte{0x02}, data...)
		if !bytes.Equal(buf.Bytes(), want) {
			t.Errorf("SystemClassWithMembers round trip got\n% x\nwant\n% x",
				buf.Bytes(), want)
		}
	})

	t.Run("ClassWithMembers", func(t *testing.T) {
		data := []byte{
			0x04, 0x00, 0x00, 0x00, // object id
			0x01, 'C',
			0x02, 0x00, 0x00, 0x00, // member count
			0x01, 'a',
			0x01, 'b',
			0x03, 0x00, 0x00, 0x00, // library id
			0x10, 0x20, 0x30, 0x40, // two opaque 2-byte members
		}
		c, err := readClassWithMembers(testReader(data), 2)
		if err != nil {
			t.Fatalf("readClassWithMembers failed, reason: %v", err)
		}
		if c.LibraryID != 3 || len(c.Data) != 2 ||
			!bytes.Equal(c.Data[0], []byte{0x10, 0x20}) {
			t.Errorf("class with members got %+v", c)
		}

		var buf bytes.Buffer
		if err := c.writeTo(newWriter(&buf)); err != nil {
			t.Fatalf("ClassWithMembers write failed, reason: %v", err)
		}
		want := append([]byte{0x03}, data...)
		if !bytes.Equal(buf.Bytes(), want) {
			t.Errorf("ClassWithMembers round trip got\n% x\nwant\n% x",
				buf.Bytes(), want)
		}
	})

	t.Run("ArraySingleObject", func(t *testing.T) {
		data := []byte{
			0x09, 0x00, 0x00, 0x00, // object id
			0x02, 0x00, 0x00, 0x00, // length
			0x01, 0x02, 0x03, // two opaque 3-byte members
			0x04, 0x05, 0x06,
		}
		a, err := readArraySingleObject(testReader(data), 3)
		if err != nil {
			t.Fatalf("readArraySingleObject failed, reason: %v", err)
		}
		if len(a.Members) != 2 || !bytes.Equal(a.Members[1], []byte{0x04, 0x05, 0x06}) {
			t.Errorf("opaque members got %v", a.Members)
		}

		var buf bytes.Buffer
		if err := a.writeTo(newWriter(&buf)); err != nil {
			t.Fatalf("ArraySingleObject write failed, reason: %v", err)
		}
		want := append([]byte{0x10}, data...)
		if !bytes.Equal(buf.Bytes(), want) {
			t.Errorf("ArraySingleObject round trip got\n% x\nwant\n% x",
				buf.Bytes(), want)
		}
	})
}

func TestReadRecordsWithOffsets(t *testing.T) {

	data := []byte{
		0x00,
		0x01, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x0C, 0x02, 0x00, 0x00, 0x00, 0x01, 'L',
		0x0B,
	}

	records, offsets, err := readRecordsWithOffsets(testReader(data))
	if err != nil {
		t.Fatalf("readRecordsWithOffsets failed, reason: %v", err)
	}
	if len(offsets) != len(records)+1 {
		t.Fatalf("offsets got %d entries for %d records", len(offsets),
			len(records))
	}
	want := []int64{0, 17, 24, 25}
	for i, off := range want {
		if offsets[i] != off {
			t.Errorf("offset %d got %d, want %d", i, offsets[i], off)
		}
	}
}
