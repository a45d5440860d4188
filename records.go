// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"fmt"
	"io"
)

// Record is a tagged unit of the serialization stream. Each record writes
// its own leading type byte; MemberPrimitiveUnTyped, which has no tag at
// all, is the exception.
type Record interface {
	writeTo(w *writer) error
}

// SerializationHeader is the stream header record. It MUST be the first
// record of a stream.
type SerializationHeader struct {
	RootID       int32 `json:"root_id"`
	HeaderID     int32 `json:"header_id"`
	MajorVersion int32 `json:"major_version"`
	MinorVersion int32 `json:"minor_version"`
}

func readSerializationHeader(r *reader) (*SerializationHeader, error) {
	var h SerializationHeader
	var err error

	if h.RootID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if h.HeaderID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if h.MajorVersion, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if h.MinorVersion, err = r.ReadI32(); err != nil {
		return nil, err
	}
	return &h, nil
}

func (h *SerializationHeader) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordSerializedStreamHeader); err != nil {
		return err
	}
	if err := w.WriteI32(h.RootID); err != nil {
		return err
	}
	if err := w.WriteI32(h.HeaderID); err != nil {
		return err
	}
	if err := w.WriteI32(h.MajorVersion); err != nil {
		return err
	}
	return w.WriteI32(h.MinorVersion)
}

// BinaryLibrary declares a library name and assigns it an id.
type BinaryLibrary struct {
	LibraryID   int32  `json:"library_id"`
	LibraryName string `json:"library_name"`
}

func readBinaryLibrary(r *reader) (*BinaryLibrary, error) {
	var l BinaryLibrary
	var err error

	if l.LibraryID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if l.LibraryName, err = r.ReadString(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *BinaryLibrary) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordBinaryLibrary); err != nil {
		return err
	}
	if err := w.WriteI32(l.LibraryID); err != nil {
		return err
	}
	return w.WriteString(l.LibraryName)
}

// ClassWithId is a class instance reusing metadata declared by an earlier
// record.
type ClassWithId struct {
	ObjectID   int32 `json:"object_id"`
	MetadataID int32 `json:"metadata_id"`
}

func readClassWithId(r *reader) (*ClassWithId, error) {
	var c ClassWithId
	var err error

	if c.ObjectID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if c.MetadataID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *ClassWithId) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordClassWithId); err != nil {
		return err
	}
	if err := w.WriteI32(c.ObjectID); err != nil {
		return err
	}
	return w.WriteI32(c.MetadataID)
}

// ClassWithMembersAndTypes is a class instance with member type descriptors,
// a library id and inline member values.
type ClassWithMembersAndTypes struct {
	ClassInfo        ClassInfo      `json:"class_info"`
	MemberTypeInfo   MemberTypeInfo `json:"member_type_info"`
	LibraryID        int32          `json:"library_id"`
	MemberReferences []Record       `json:"member_references"`
}

func readClassWithMembersAndTypes(r *reader) (*ClassWithMembersAndTypes, error) {
	var c ClassWithMembersAndTypes
	var err error

	if c.ClassInfo, err = readClassInfo(r); err != nil {
		return nil, err
	}
	if c.MemberTypeInfo, err = readMemberTypeInfo(r, c.ClassInfo.MemberCount); err != nil {
		return nil, err
	}
	if c.LibraryID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if c.MemberReferences, err = readMemberReferences(r, c.MemberTypeInfo.AdditionalInfo); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *ClassWithMembersAndTypes) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordClassWithMembersAndTypes); err != nil {
		return err
	}
	if err := c.ClassInfo.writeTo(w); err != nil {
		return err
	}
	if err := c.MemberTypeInfo.writeTo(w); err != nil {
		return err
	}
	if err := w.WriteI32(c.LibraryID); err != nil {
		return err
	}
	return writeRecords(w, c.MemberReferences)
}

// SystemClassWithMembersAndTypes is a system class instance with member type
// descriptors and inline member values; system classes carry no library id.
type SystemClassWithMembersAndTypes struct {
	ClassInfo        ClassInfo      `json:"class_info"`
	MemberTypeInfo   MemberTypeInfo `json:"member_type_info"`
	MemberReferences []Record       `json:"member_references"`
}

func readSystemClassWithMembersAndTypes(r *reader) (*SystemClassWithMembersAndTypes, error) {
	var c SystemClassWithMembersAndTypes
	var err error

	if c.ClassInfo, err = readClassInfo(r); err != nil {
		return nil, err
	}
	if c.MemberTypeInfo, err = readMemberTypeInfo(r, c.ClassInfo.MemberCount); err != nil {
		return nil, err
	}
	if c.MemberReferences, err = readMemberReferences(r, c.MemberTypeInfo.AdditionalInfo); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *SystemClassWithMembersAndTypes) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordSystemClassWithMembersAndTypes); err != nil {
		return err
	}
	if err := c.ClassInfo.writeTo(w); err != nil {
		return err
	}
	if err := c.MemberTypeInfo.writeTo(w); err != nil {
		return err
	}
	return writeRecords(w, c.MemberReferences)
}

// ClassWithMembers is a class instance without member type descriptors. Its
// member payloads are opaque and externally sized, so the tag dispatch
// cannot frame it; readClassWithMembers needs the per-member width from out
// of band.
type ClassWithMembers struct {
	ClassInfo ClassInfo `json:"class_info"`
	LibraryID int32     `json:"library_id"`
	Data      [][]byte  `json:"data"`
}

func readClassWithMembers(r *reader, memberSize int) (*ClassWithMembers, error) {
	var c ClassWithMembers
	var err error

	if c.ClassInfo, err = readClassInfo(r); err != nil {
		return nil, err
	}
	if c.LibraryID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	for i := int32(0); i < c.ClassInfo.MemberCount; i++ {
		data := make([]byte, memberSize)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, err
		}
		c.Data = append(c.Data, data)
	}
	return &c, nil
}

func (c *ClassWithMembers) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordClassWithMembers); err != nil {
		return err
	}
	if err := c.ClassInfo.writeTo(w); err != nil {
		return err
	}
	if err := w.WriteI32(c.LibraryID); err != nil {
		return err
	}
	for _, data := range c.Data {
		if _, err := w.w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// SystemClassWithMembers is a system class instance without member type
// descriptors; like ClassWithMembers its member payloads are externally
// sized.
type SystemClassWithMembers struct {
	ClassInfo ClassInfo `json:"class_info"`
	Data      [][]byte  `json:"data"`
}

func readSystemClassWithMembers(r *reader, memberSize int) (*SystemClassWithMembers, error) {
	var c SystemClassWithMembers
	var err error

	if c.ClassInfo, err = readClassInfo(r); err != nil {
		return nil, err
	}
	for i := int32(0); i < c.ClassInfo.MemberCount; i++ {
		data := make([]byte, memberSize)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, err
		}
		c.Data = append(c.Data, data)
	}
	return &c, nil
}

func (c *SystemClassWithMembers) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordSystemClassWithMembers); err != nil {
		return err
	}
	if err := c.ClassInfo.writeTo(w); err != nil {
		return err
	}
	for _, data := range c.Data {
		if _, err := w.w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// BinaryObjectString is a string object.
type BinaryObjectString struct {
	ObjectID int32  `json:"object_id"`
	Value    string `json:"value"`
}

func readBinaryObjectString(r *reader) (*BinaryObjectString, error) {
	var s BinaryObjectString
	var err error

	if s.ObjectID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if s.Value, err = r.ReadString(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *BinaryObjectString) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordBinaryObjectString); err != nil {
		return err
	}
	if err := w.WriteI32(s.ObjectID); err != nil {
		return err
	}
	return w.WriteString(s.Value)
}

// BinaryArray is the general array record covering single, jagged and
// rectangular shapes with optional lower bounds.
type BinaryArray struct {
	ObjectID       int32            `json:"object_id"`
	ArrayType      BinaryArrayType  `json:"array_type"`
	Rank           int32            `json:"rank"`
	Lengths        []int32          `json:"lengths"`
	LowerBounds    []int32          `json:"lower_bounds,omitempty"`
	BinaryType     BinaryType       `json:"binary_type"`
	AdditionalInfo []AdditionalInfo `json:"additional_info"`
	Members        []Record         `json:"members"`
}

func readBinaryArray(r *reader) (*BinaryArray, error) {
	var a BinaryArray
	var err error

	if a.ObjectID, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if a.ArrayType, err = r.ReadBinaryArrayType(); err != nil {
		return nil, err
	}
	if a.Rank, err = r.ReadCount(); err != nil {
		return nil, err
	}
	for i := int32(0); i < a.Rank; i++ {
		length, err := r.ReadArrayLength()
		if err != nil {
			return nil, err
		}
		a.Lengths = append(a.Lengths, length)
	}
	if a.ArrayType.HasLowerBounds() {
		for i := int32(0); i < a.Rank; i++ {
			bound, err := r.ReadI32()
			if err != nil {
				return nil, err
			}
			a.LowerBounds = append(a.LowerBounds, bound)
		}
	}
	if a.BinaryType, err = r.ReadBinaryType(); err != nil {
		return nil, err
	}
	for i := int32(0); i < a.Rank; i++ {
		info, err := readAdditionalInfo(r, a.BinaryType)
		if err != nil {
			return nil, err
		}
		if info != nil {
			a.AdditionalInfo = append(a.AdditionalInfo, *info)
		}
	}
	if a.Members, err = readMemberReferences(r, a.AdditionalInfo); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *BinaryArray) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordBinaryArray); err != nil {
		return err
	}
	if err := w.WriteI32(a.ObjectID); err != nil {
		return err
	}
	if err := w.WriteBinaryArrayType(a.ArrayType); err != nil {
		return err
	}
	if err := w.WriteI32(a.Rank); err != nil {
		return err
	}
	for _, length := range a.Lengths {
		if err := w.WriteI32(length); err != nil {
			return err
		}
	}
	for _, bound := range a.LowerBounds {
		if err := w.WriteI32(bound); err != nil {
			return err
		}
	}
	if err := w.WriteBinaryType(a.BinaryType); err != nil {
		return err
	}
	for _, info := range a.AdditionalInfo {
		if err := info.writeTo(w); err != nil {
			return err
		}
	}
	return writeRecords(w, a.Members)
}

// MemberPrimitiveUnTyped is an unframed primitive member value. It carries
// no record tag; the parent's type descriptor governs its layout.
type MemberPrimitiveUnTyped struct {
	Value Primitive `json:"value"`
}

func (m *MemberPrimitiveUnTyped) writeTo(w *writer) error {
	return m.Value.writeTo(w)
}

// MemberTypedPrimitive is a primitive member value framed by its own record
// tag and primitive type.
type MemberTypedPrimitive struct {
	Value Primitive `json:"value"`
}

func readMemberTypedPrimitive(r *reader) (*MemberTypedPrimitive, error) {
	pt, err := r.ReadPrimitiveType()
	if err != nil {
		return nil, err
	}
	value, err := readPrimitive(r, pt)
	if err != nil {
		return nil, err
	}
	return &MemberTypedPrimitive{Value: value}, nil
}

func (m *MemberTypedPrimitive) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordMemberTypedPrimitive); err != nil {
		return err
	}
	if err := w.WritePrimitiveType(m.Value.Type); err != nil {
		return err
	}
	return m.Value.writeTo(w)
}

// MemberReference points to an object defined elsewhere in the stream.
type MemberReference struct {
	ID int32 `json:"id"`
}

func readMemberReference(r *reader) (*MemberReference, error) {
	id, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	return &MemberReference{ID: id}, nil
}

func (m *MemberReference) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordMemberReference); err != nil {
		return err
	}
	return w.WriteI32(m.ID)
}

// ObjectNull is a single null object.
type ObjectNull struct{}

func (ObjectNull) writeTo(w *writer) error {
	return w.WriteRecordType(RecordObjectNull)
}

// MessageEnd terminates the stream.
type MessageEnd struct{}

func (MessageEnd) writeTo(w *writer) error {
	return w.WriteRecordType(RecordMessageEnd)
}

// ObjectNullMultiple256 is a run of up to 255 nulls.
type ObjectNullMultiple256 struct {
	NullCount uint8 `json:"null_count"`
}

func readObjectNullMultiple256(r *reader) (*ObjectNullMultiple256, error) {
	count, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	return &ObjectNullMultiple256{NullCount: count}, nil
}

func (o *ObjectNullMultiple256) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordObjectNullMultiple256); err != nil {
		return err
	}
	return w.WriteU8(o.NullCount)
}

// ObjectNullMultiple is a 32-bit run of nulls.
type ObjectNullMultiple struct {
	NullCount int32 `json:"null_count"`
}

func readObjectNullMultiple(r *reader) (*ObjectNullMultiple, error) {
	count, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	return &ObjectNullMultiple{NullCount: count}, nil
}

func (o *ObjectNullMultiple) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordObjectNullMultiple); err != nil {
		return err
	}
	return w.WriteI32(o.NullCount)
}

// ArraySinglePrimitive is a single-dimensional array of one primitive type.
type ArraySinglePrimitive struct {
	ArrayInfo     ArrayInfo     `json:"array_info"`
	PrimitiveType PrimitiveType `json:"primitive_type"`
	Members       []Primitive   `json:"members"`
}

func readArraySinglePrimitive(r *reader) (*ArraySinglePrimitive, error) {
	var a ArraySinglePrimitive
	var err error

	if a.ArrayInfo, err = readArrayInfo(r); err != nil {
		return nil, err
	}
	if a.PrimitiveType, err = r.ReadPrimitiveType(); err != nil {
		return nil, err
	}
	a.Members = make([]Primitive, 0, a.ArrayInfo.Length)
	for i := int32(0); i < a.ArrayInfo.Length; i++ {
		member, err := readPrimitive(r, a.PrimitiveType)
		if err != nil {
			return nil, err
		}
		a.Members = append(a.Members, member)
	}
	return &a, nil
}

func (a *ArraySinglePrimitive) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordArraySinglePrimitive); err != nil {
		return err
	}
	if err := a.ArrayInfo.writeTo(w); err != nil {
		return err
	}
	if err := w.WritePrimitiveType(a.PrimitiveType); err != nil {
		return err
	}
	for _, member := range a.Members {
		if err := member.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// ArraySingleObject is a single-dimensional object array; its member
// payloads are externally sized.
type ArraySingleObject struct {
	ArrayInfo ArrayInfo `json:"array_info"`
	Members   [][]byte  `json:"members"`
}

func readArraySingleObject(r *reader, memberSize int) (*ArraySingleObject, error) {
	var a ArraySingleObject
	var err error

	if a.ArrayInfo, err = readArrayInfo(r); err != nil {
		return nil, err
	}
	for i := int32(0); i < a.ArrayInfo.Length; i++ {
		member := make([]byte, memberSize)
		if _, err := io.ReadFull(r.r, member); err != nil {
			return nil, err
		}
		a.Members = append(a.Members, member)
	}
	return &a, nil
}

func (a *ArraySingleObject) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordArraySingleObject); err != nil {
		return err
	}
	if err := a.ArrayInfo.writeTo(w); err != nil {
		return err
	}
	for _, member := range a.Members {
		if _, err := w.w.Write(member); err != nil {
			return err
		}
	}
	return nil
}

// ArraySingleString is a single-dimensional string array.
type ArraySingleString struct {
	ArrayInfo ArrayInfo `json:"array_info"`
	Members   []string  `json:"members"`
}

func readArraySingleString(r *reader) (*ArraySingleString, error) {
	var a ArraySingleString
	var err error

	if a.ArrayInfo, err = readArrayInfo(r); err != nil {
		return nil, err
	}
	a.Members = make([]string, 0, a.ArrayInfo.Length)
	for i := int32(0); i < a.ArrayInfo.Length; i++ {
		member, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		a.Members = append(a.Members, member)
	}
	return &a, nil
}

func (a *ArraySingleString) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordArraySingleString); err != nil {
		return err
	}
	if err := a.ArrayInfo.writeTo(w); err != nil {
		return err
	}
	for _, member := range a.Members {
		if err := w.WriteString(member); err != nil {
			return err
		}
	}
	return nil
}

// BinaryMethodCall is a remote method call message. The tail fields are
// present iff the matching MessageFlags bits are set.
type BinaryMethodCall struct {
	MessageFlags MessageFlags          `json:"message_flags"`
	MethodName   StringValueWithCode   `json:"method_name"`
	TypeName     StringValueWithCode   `json:"type_name"`
	CallContext  *StringValueWithCode  `json:"call_context,omitempty"`
	Args         *ArrayOfValueWithCode `json:"args,omitempty"`
}

func readBinaryMethodCall(r *reader) (*BinaryMethodCall, error) {
	var c BinaryMethodCall
	var err error

	if c.MessageFlags, err = readMessageFlags(r); err != nil {
		return nil, err
	}
	if c.MethodName, err = readStringValueWithCode(r); err != nil {
		return nil, err
	}
	if c.TypeName, err = readStringValueWithCode(r); err != nil {
		return nil, err
	}
	if c.MessageFlags.ContextInline {
		ctx, err := readStringValueWithCode(r)
		if err != nil {
			return nil, err
		}
		c.CallContext = &ctx
	}
	if c.MessageFlags.ArgsInline {
		args, err := readArrayOfValueWithCode(r)
		if err != nil {
			return nil, err
		}
		c.Args = &args
	}
	return &c, nil
}

func (c *BinaryMethodCall) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordMethodCall); err != nil {
		return err
	}
	if err := c.MessageFlags.writeTo(w); err != nil {
		return err
	}
	if err := c.MethodName.writeTo(w); err != nil {
		return err
	}
	if err := c.TypeName.writeTo(w); err != nil {
		return err
	}
	if c.CallContext != nil {
		if err := c.CallContext.writeTo(w); err != nil {
			return err
		}
	}
	if c.Args != nil {
		if err := c.Args.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// BinaryMethodReturn is a remote method return message. The tail fields are
// present iff the matching MessageFlags bits are set.
type BinaryMethodReturn struct {
	MessageFlags MessageFlags          `json:"message_flags"`
	ReturnValue  *ValueWithCode        `json:"return_value,omitempty"`
	CallContext  *StringValueWithCode  `json:"call_context,omitempty"`
	Args         *ArrayOfValueWithCode `json:"args,omitempty"`
}

func readBinaryMethodReturn(r *reader) (*BinaryMethodReturn, error) {
	var m BinaryMethodReturn
	var err error

	if m.MessageFlags, err = readMessageFlags(r); err != nil {
		return nil, err
	}
	if m.MessageFlags.ReturnValueInline {
		rv, err := readValueWithCode(r)
		if err != nil {
			return nil, err
		}
		m.ReturnValue = &rv
	}
	if m.MessageFlags.ContextInline {
		ctx, err := readStringValueWithCode(r)
		if err != nil {
			return nil, err
		}
		m.CallContext = &ctx
	}
	if m.MessageFlags.ArgsInline {
		args, err := readArrayOfValueWithCode(r)
		if err != nil {
			return nil, err
		}
		m.Args = &args
	}
	return &m, nil
}

func (m *BinaryMethodReturn) writeTo(w *writer) error {
	if err := w.WriteRecordType(RecordMethodReturn); err != nil {
		return err
	}
	if err := m.MessageFlags.writeTo(w); err != nil {
		return err
	}
	if m.ReturnValue != nil {
		if err := m.ReturnValue.writeTo(w); err != nil {
			return err
		}
	}
	if m.CallContext != nil {
		if err := m.CallContext.writeTo(w); err != nil {
			return err
		}
	}
	if m.Args != nil {
		if err := m.Args.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// readMemberReferences reads one member value per descriptor. A Primitive
// descriptor yields an unframed primitive; anything else starts with a fresh
// record tag.
func readMemberReferences(r *reader, infos []AdditionalInfo) ([]Record, error) {
	var members []Record

	for _, info := range infos {
		if info.BinaryType == BinaryTypePrimitive {
			value, err := readPrimitive(r, info.PrimitiveType)
			if err != nil {
				return nil, err
			}
			members = append(members, &MemberPrimitiveUnTyped{Value: value})
			continue
		}

		rt, err := r.ReadRecordType()
		if err != nil {
			return nil, err
		}
		record, err := readRecord(r, rt)
		if err != nil {
			return nil, err
		}
		members = append(members, record)
	}
	return members, nil
}

// readRecord dispatches on the record type read by the caller. Record kinds
// whose member payloads are externally sized cannot be framed from the tag
// alone and fail with NotEnoughInfo.
func readRecord(r *reader, rt RecordType) (Record, error) {
	switch rt {
	case RecordSerializedStreamHeader:
		return readSerializationHeader(r)
	case RecordClassWithId:
		return readClassWithId(r)
	case RecordSystemClassWithMembersAndTypes:
		return readSystemClassWithMembersAndTypes(r)
	case RecordClassWithMembersAndTypes:
		return readClassWithMembersAndTypes(r)
	case RecordBinaryObjectString:
		return readBinaryObjectString(r)
	case RecordBinaryArray:
		return readBinaryArray(r)
	case RecordMemberTypedPrimitive:
		return readMemberTypedPrimitive(r)
	case RecordMemberReference:
		return readMemberReference(r)
	case RecordObjectNull:
		return ObjectNull{}, nil
	case RecordMessageEnd:
		return MessageEnd{}, nil
	case RecordBinaryLibrary:
		return readBinaryLibrary(r)
	case RecordObjectNullMultiple256:
		return readObjectNullMultiple256(r)
	case RecordObjectNullMultiple:
		return readObjectNullMultiple(r)
	case RecordArraySinglePrimitive:
		return readArraySinglePrimitive(r)
	case RecordArraySingleString:
		return readArraySingleString(r)
	case RecordMethodCall:
		return readBinaryMethodCall(r)
	case RecordMethodReturn:
		return readBinaryMethodReturn(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotEnoughInfo, rt)
}

// readRecords reads the flat record stream: one tag plus payload at a time,
// terminating on MessageEnd.
func readRecords(r *reader) ([]Record, error) {
	records, _, err := readRecordsWithOffsets(r)
	return records, err
}

// readRecordsWithOffsets additionally reports the byte offset each record
// starts at, plus one final entry for the offset past MessageEnd.
func readRecordsWithOffsets(r *reader) ([]Record, []int64, error) {
	var records []Record
	var offsets []int64

	for {
		offsets = append(offsets, r.Offset())
		rt, err := r.ReadRecordType()
		if err != nil {
			return nil, nil, err
		}
		record, err := readRecord(r, rt)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)

		if _, done := record.(MessageEnd); done {
			offsets = append(offsets, r.Offset())
			return records, offsets, nil
		}
	}
}

func writeRecords(w *writer, records []Record) error {
	for _, record := range records {
		if err := record.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}
