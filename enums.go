// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import "fmt"

// RecordType is the one-byte discriminant that leads each record in the
// serialization stream.
type RecordType uint8

const (
	// RecordSerializedStreamHeader identifies the stream header record.
	RecordSerializedStreamHeader RecordType = 0
	// RecordClassWithId identifies a class instance that reuses metadata
	// declared by an earlier record.
	RecordClassWithId RecordType = 1
	// RecordSystemClassWithMembers identifies a system class without member
	// type information.
	RecordSystemClassWithMembers RecordType = 2
	// RecordClassWithMembers identifies a class without member type
	// information.
	RecordClassWithMembers RecordType = 3
	// RecordSystemClassWithMembersAndTypes identifies a system class with
	// member type descriptors and inline values.
	RecordSystemClassWithMembersAndTypes RecordType = 4
	// RecordClassWithMembersAndTypes identifies a class with member type
	// descriptors, a library id and inline values.
	RecordClassWithMembersAndTypes RecordType = 5
	// RecordBinaryObjectString identifies a length-prefixed UTF-8 string
	// object.
	RecordBinaryObjectString RecordType = 6
	// RecordBinaryArray identifies the general array record.
	RecordBinaryArray RecordType = 7
	// RecordMemberTypedPrimitive identifies a primitive value carrying its
	// own type tag.
	RecordMemberTypedPrimitive RecordType = 8
	// RecordMemberReference identifies a reference to an object defined
	// elsewhere in the stream.
	RecordMemberReference RecordType = 9
	// RecordObjectNull identifies a single null object.
	RecordObjectNull RecordType = 10
	// RecordMessageEnd terminates the stream.
	RecordMessageEnd RecordType = 11
	// RecordBinaryLibrary declares a library name and assigns it an id.
	RecordBinaryLibrary RecordType = 12
	// RecordObjectNullMultiple256 identifies up to 255 consecutive nulls.
	RecordObjectNullMultiple256 RecordType = 13
	// RecordObjectNullMultiple identifies a 32-bit run of consecutive nulls.
	RecordObjectNullMultiple RecordType = 14
	// RecordArraySinglePrimitive identifies a single-dimensional array of a
	// primitive type.
	RecordArraySinglePrimitive RecordType = 15
	// RecordArraySingleObject identifies a single-dimensional array of
	// objects.
	RecordArraySingleObject RecordType = 16
	// RecordArraySingleString identifies a single-dimensional array of
	// strings.
	RecordArraySingleString RecordType = 17
	// RecordMethodCall identifies a remote method call message.
	RecordMethodCall RecordType = 21
	// RecordMethodReturn identifies a remote method return message.
	RecordMethodReturn RecordType = 22
)

var recordTypeMap = map[RecordType]string{
	RecordSerializedStreamHeader:         "SerializedStreamHeader",
	RecordClassWithId:                    "ClassWithId",
	RecordSystemClassWithMembers:         "SystemClassWithMembers",
	RecordClassWithMembers:               "ClassWithMembers",
	RecordSystemClassWithMembersAndTypes: "SystemClassWithMembersAndTypes",
	RecordClassWithMembersAndTypes:       "ClassWithMembersAndTypes",
	RecordBinaryObjectString:             "BinaryObjectString",
	RecordBinaryArray:                    "BinaryArray",
	RecordMemberTypedPrimitive:           "MemberTypedPrimitive",
	RecordMemberReference:                "MemberReference",
	RecordObjectNull:                     "ObjectNull",
	RecordMessageEnd:                     "MessageEnd",
	RecordBinaryLibrary:                  "BinaryLibrary",
	RecordObjectNullMultiple256:          "ObjectNullMultiple256",
	RecordObjectNullMultiple:             "ObjectNullMultiple",
	RecordArraySinglePrimitive:           "ArraySinglePrimitive",
	RecordArraySingleObject:              "ArraySingleObject",
	RecordArraySingleString:              "ArraySingleString",
	RecordMethodCall:                     "MethodCall",
	RecordMethodReturn:                   "MethodReturn",
}

// String stringify the record type.
func (rt RecordType) String() string {
	if name, ok := recordTypeMap[rt]; ok {
		return name
	}
	return fmt.Sprintf("RecordType(%d)", uint8(rt))
}

func recordTypeFromByte(b uint8) (RecordType, error) {
	rt := RecordType(b)
	if _, ok := recordTypeMap[rt]; !ok {
		return 0, fmt.Errorf("%w: 0x%02x", ErrInvalidRecordType, b)
	}
	return rt, nil
}

// PrimitiveType is the one-byte classification of a scalar value.
type PrimitiveType uint8

const (
	// PrimitiveBoolean is a one byte boolean.
	PrimitiveBoolean PrimitiveType = 1
	// PrimitiveByte is an unsigned 8-bit integer.
	PrimitiveByte PrimitiveType = 2
	// PrimitiveChar is a single UTF-8 encoded code point.
	PrimitiveChar PrimitiveType = 3
	// PrimitiveDecimal is a decimal number carried as a string.
	PrimitiveDecimal PrimitiveType = 5
	// PrimitiveDouble is a 64-bit IEEE-754 float.
	PrimitiveDouble PrimitiveType = 6
	// PrimitiveInt16 is a signed 16-bit integer.
	PrimitiveInt16 PrimitiveType = 7
	// PrimitiveInt32 is a signed 32-bit integer.
	PrimitiveInt32 PrimitiveType = 8
	// PrimitiveInt64 is a signed 64-bit integer.
	PrimitiveInt64 PrimitiveType = 9
	// PrimitiveSByte is a signed 8-bit integer.
	PrimitiveSByte PrimitiveType = 10
	// PrimitiveSingle is a 32-bit IEEE-754 float.
	PrimitiveSingle PrimitiveType = 11
	// PrimitiveTimeSpan is a signed 100 ns tick count.
	PrimitiveTimeSpan PrimitiveType = 12
	// PrimitiveDateTime is a 100 ns tick count with a kind field in the low
	// two bits.
	PrimitiveDateTime PrimitiveType = 13
	// PrimitiveUInt16 is an unsigned 16-bit integer.
	PrimitiveUInt16 PrimitiveType = 14
	// PrimitiveUInt32 is an unsigned 32-bit integer.
	PrimitiveUInt32 PrimitiveType = 15
	// PrimitiveUInt64 is an unsigned 64-bit integer.
	PrimitiveUInt64 PrimitiveType = 16
	// PrimitiveNull carries no payload.
	PrimitiveNull PrimitiveType = 17
	// PrimitiveString is a length-prefixed UTF-8 string.
	PrimitiveString PrimitiveType = 18
)

var primitiveTypeMap = map[PrimitiveType]string{
	PrimitiveBoolean:  "Boolean",
	PrimitiveByte:     "Byte",
	PrimitiveChar:     "Char",
	PrimitiveDecimal:  "Decimal",
	PrimitiveDouble:   "Double",
	PrimitiveInt16:    "Int16",
	PrimitiveInt32:    "Int32",
	PrimitiveInt64:    "Int64",
	PrimitiveSByte:    "SByte",
	PrimitiveSingle:   "Single",
	PrimitiveTimeSpan: "TimeSpan",
	PrimitiveDateTime: "DateTime",
	PrimitiveUInt16:   "UInt16",
	PrimitiveUInt32:   "UInt32",
	PrimitiveUInt64:   "UInt64",
	PrimitiveNull:     "Null",
	PrimitiveString:   "String",
}

// String stringify the primitive type.
func (pt PrimitiveType) String() string {
	if name, ok := primitiveTypeMap[pt]; ok {
		return name
	}
	return fmt.Sprintf("PrimitiveType(%d)", uint8(pt))
}

func primitiveTypeFromByte(b uint8) (PrimitiveType, error) {
	pt := PrimitiveType(b)
	if _, ok := primitiveTypeMap[pt]; !ok {
		return 0, fmt.Errorf("%w: 0x%02x", ErrInvalidPrimitiveType, b)
	}
	return pt, nil
}

// BinaryType classifies the declared type of a class member.
type BinaryType uint8

const (
	// BinaryTypePrimitive declares an inline primitive member.
	BinaryTypePrimitive BinaryType = 0
	// BinaryTypeString declares a string object member.
	BinaryTypeString BinaryType = 1
	// BinaryTypeObject declares an untyped object member.
	BinaryTypeObject BinaryType = 2
	// BinaryTypeSystemClass declares a system class member.
	BinaryTypeSystemClass BinaryType = 3
	// BinaryTypeClass declares a class member qualified by a library.
	BinaryTypeClass BinaryType = 4
	// BinaryTypeObjectArray declares an object array member.
	BinaryTypeObjectArray BinaryType = 5
	// BinaryTypeStringArray declares a string array member.
	BinaryTypeStringArray BinaryType = 6
	// BinaryTypePrimitiveArray declares a primitive array member.
	BinaryTypePrimitiveArray BinaryType = 7
)

var binaryTypeMap = map[BinaryType]string{
	BinaryTypePrimitive:      "Primitive",
	BinaryTypeString:         "String",
	BinaryTypeObject:         "Object",
	BinaryTypeSystemClass:    "SystemClass",
	BinaryTypeClass:          "Class",
	BinaryTypeObjectArray:    "ObjectArray",
	BinaryTypeStringArray:    "StringArray",
	BinaryTypePrimitiveArray: "PrimitiveArray",
}

// String stringify the binary type.
func (bt BinaryType) String() string {
	if name, ok := binaryTypeMap[bt]; ok {
		return name
	}
	return fmt.Sprintf("BinaryType(%d)", uint8(bt))
}

func binaryTypeFromByte(b uint8) (BinaryType, error) {
	bt := BinaryType(b)
	if _, ok := binaryTypeMap[bt]; !ok {
		return 0, fmt.Errorf("%w: 0x%02x", ErrInvalidBinaryType, b)
	}
	return bt, nil
}

// BinaryArrayType classifies the shape of a BinaryArray record.
type BinaryArrayType uint8

const (
	// ArrayTypeSingle is a single-dimensional array.
	ArrayTypeSingle BinaryArrayType = 0
	// ArrayTypeJagged is an array of arrays.
	ArrayTypeJagged BinaryArrayType = 1
	// ArrayTypeRectangular is a multi-dimensional array.
	ArrayTypeRectangular BinaryArrayType = 2
	// ArrayTypeSingleOffset is a single-dimensional array with a lower bound.
	ArrayTypeSingleOffset BinaryArrayType = 3
	// ArrayTypeJaggedOffset is a jagged array with lower bounds.
	ArrayTypeJaggedOffset BinaryArrayType = 4
	// ArrayTypeRectangularOffset is a rectangular array with lower bounds.
	ArrayTypeRectangularOffset BinaryArrayType = 5
)

var binaryArrayTypeMap = map[BinaryArrayType]string{
	ArrayTypeSingle:            "Single",
	ArrayTypeJagged:            "Jagged",
	ArrayTypeRectangular:       "Rectangular",
	ArrayTypeSingleOffset:      "SingleOffset",
	ArrayTypeJaggedOffset:      "JaggedOffset",
	ArrayTypeRectangularOffset: "RectangularOffset",
}

// String stringify the binary array type.
func (at BinaryArrayType) String() string {
	if name, ok := binaryArrayTypeMap[at]; ok {
		return name
	}
	return fmt.Sprintf("BinaryArrayType(%d)", uint8(at))
}

func binaryArrayTypeFromByte(b uint8) (BinaryArrayType, error) {
	at := BinaryArrayType(b)
	if _, ok := binaryArrayTypeMap[at]; !ok {
		return 0, fmt.Errorf("%w: 0x%02x", ErrInvalidBinaryArrayType, b)
	}
	return at, nil
}

// HasLowerBounds reports whether the array shape carries per-rank lower
// bounds on the wire.
func (at BinaryArrayType) HasLowerBounds() bool {
	switch at {
	case ArrayTypeSingleOffset, ArrayTypeJaggedOffset, ArrayTypeRectangularOffset:
		return true
	}
	return false
}

// DateTimeKind is the two-bit kind field packed into the low bits of a
// DateTime tick value.
type DateTimeKind uint8

const (
	// KindUnspecified means the time carries no zone information.
	KindUnspecified DateTimeKind = 0
	// KindUTC means the time is in Coordinated Universal Time.
	KindUTC DateTimeKind = 1
	// KindLocal means the time is in the serializer's local zone.
	KindLocal DateTimeKind = 2
)

// Message flag bits of the MessageFlags bit field carried by method call and
// method return records.
const (
	MessageFlagNoArgs                 uint32 = 0x0001
	MessageFlagArgsInline             uint32 = 0x0002
	MessageFlagArgsIsArray            uint32 = 0x0004
	MessageFlagArgsInArray            uint32 = 0x0008
	MessageFlagNoContext              uint32 = 0x0010
	MessageFlagContextInline          uint32 = 0x0020
	MessageFlagContextInArray         uint32 = 0x0040
	MessageFlagMethodSignatureInArray uint32 = 0x0080
	MessageFlagPropertiesInArray      uint32 = 0x0100
	MessageFlagNoReturnValue          uint32 = 0x0200
	MessageFlagReturnValueVoid        uint32 = 0x0400
	MessageFlagReturnValueInline      uint32 = 0x0800
	MessageFlagReturnValueInArray     uint32 = 0x1000
	MessageFlagExceptionInArray       uint32 = 0x2000
	MessageFlagGenericMethod          uint32 = 0x8000
)
