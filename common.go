// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import "fmt"

// ClassInfo names a class instance, assigns its object id and lists its
// member names in declaration order.
type ClassInfo struct {
	ObjectID    int32    `json:"object_id"`
	Name        string   `json:"name"`
	MemberCount int32    `json:"member_count"`
	MemberNames []string `json:"member_names"`
}

func readClassInfo(r *reader) (ClassInfo, error) {
	var ci ClassInfo
	var err error

	if ci.ObjectID, err = r.ReadI32(); err != nil {
		return ci, err
	}
	if ci.Name, err = r.ReadString(); err != nil {
		return ci, err
	}
	if ci.MemberCount, err = r.ReadCount(); err != nil {
		return ci, err
	}

	ci.MemberNames = make([]string, 0, ci.MemberCount)
	for i := int32(0); i < ci.MemberCount; i++ {
		name, err := r.ReadString()
		if err != nil {
			return ci, err
		}
		ci.MemberNames = append(ci.MemberNames, name)
	}
	return ci, nil
}

func (ci ClassInfo) writeTo(w *writer) error {
	if err := w.WriteI32(ci.ObjectID); err != nil {
		return err
	}
	if err := w.WriteString(ci.Name); err != nil {
		return err
	}
	if err := w.WriteI32(ci.MemberCount); err != nil {
		return err
	}
	for _, name := range ci.MemberNames {
		if err := w.WriteString(name); err != nil {
			return err
		}
	}
	return nil
}

// ClassTypeInfo qualifies a class type name with the id of its declaring
// library.
type ClassTypeInfo struct {
	TypeName  string `json:"type_name"`
	LibraryID int32  `json:"library_id"`
}

func readClassTypeInfo(r *reader) (ClassTypeInfo, error) {
	var cti ClassTypeInfo
	var err error

	if cti.TypeName, err = r.ReadString(); err != nil {
		return cti, err
	}
	cti.LibraryID, err = r.ReadI32()
	return cti, err
}

func (cti ClassTypeInfo) writeTo(w *writer) error {
	if err := w.WriteString(cti.TypeName); err != nil {
		return err
	}
	return w.WriteI32(cti.LibraryID)
}

// AdditionalInfo is the per-member descriptor that follows the member type
// list for members typed Primitive, PrimitiveArray, SystemClass or Class.
type AdditionalInfo struct {
	BinaryType    BinaryType     `json:"binary_type"`
	PrimitiveType PrimitiveType  `json:"primitive_type,omitempty"`
	TypeName      string         `json:"type_name,omitempty"`
	ClassInfo     *ClassTypeInfo `json:"class_info,omitempty"`
}

// readAdditionalInfo reads the descriptor matching the given member type, or
// nothing when the member type carries none.
func readAdditionalInfo(r *reader, bt BinaryType) (*AdditionalInfo, error) {
	switch bt {
	case BinaryTypePrimitive, BinaryTypePrimitiveArray:
		pt, err := r.ReadPrimitiveType()
		if err != nil {
			return nil, err
		}
		return &AdditionalInfo{BinaryType: bt, PrimitiveType: pt}, nil
	case BinaryTypeSystemClass:
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &AdditionalInfo{BinaryType: bt, TypeName: name}, nil
	case BinaryTypeClass:
		cti, err := readClassTypeInfo(r)
		if err != nil {
			return nil, err
		}
		return &AdditionalInfo{BinaryType: bt, ClassInfo: &cti}, nil
	}
	return nil, nil
}

func (ai AdditionalInfo) writeTo(w *writer) error {
	switch ai.BinaryType {
	case BinaryTypePrimitive, BinaryTypePrimitiveArray:
		return w.WritePrimitiveType(ai.PrimitiveType)
	case BinaryTypeSystemClass:
		return w.WriteString(ai.TypeName)
	case BinaryTypeClass:
		if ai.ClassInfo == nil {
			return fmt.Errorf("%w: class info missing", ErrInvalidBinaryType)
		}
		return ai.ClassInfo.writeTo(w)
	}
	return fmt.Errorf("%w: %s carries no additional info", ErrInvalidBinaryType,
		ai.BinaryType)
}

// MemberTypeInfo carries one binary type per member plus the descriptors of
// the members whose binary type requires one.
type MemberTypeInfo struct {
	MemberTypes    []BinaryType     `json:"member_types"`
	AdditionalInfo []AdditionalInfo `json:"additional_info"`
}

func readMemberTypeInfo(r *reader, memberCount int32) (MemberTypeInfo, error) {
	var mti MemberTypeInfo

	mti.MemberTypes = make([]BinaryType, 0, memberCount)
	for i := int32(0); i < memberCount; i++ {
		bt, err := r.ReadBinaryType()
		if err != nil {
			return mti, err
		}
		mti.MemberTypes = append(mti.MemberTypes, bt)
	}

	for _, bt := range mti.MemberTypes {
		info, err := readAdditionalInfo(r, bt)
		if err != nil {
			return mti, err
		}
		if info != nil {
			mti.AdditionalInfo = append(mti.AdditionalInfo, *info)
		}
	}
	return mti, nil
}

func (mti MemberTypeInfo) writeTo(w *writer) error {
	for _, bt := range mti.MemberTypes {
		if err := w.WriteBinaryType(bt); err != nil {
			return err
		}
	}
	for _, info := range mti.AdditionalInfo {
		if err := info.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// ArrayInfo assigns an array its object id and element count.
type ArrayInfo struct {
	ObjectID int32 `json:"object_id"`
	Length   int32 `json:"length"`
}

func readArrayInfo(r *reader) (ArrayInfo, error) {
	var ai ArrayInfo
	var err error

	if ai.ObjectID, err = r.ReadI32(); err != nil {
		return ai, err
	}
	ai.Length, err = r.ReadArrayLength()
	return ai, err
}

func (ai ArrayInfo) writeTo(w *writer) error {
	if err := w.WriteI32(ai.ObjectID); err != nil {
		return err
	}
	return w.WriteI32(ai.Length)
}

// ValueWithCode is a primitive value preceded by its type tag.
type ValueWithCode struct {
	Value Primitive `json:"value"`
}

func readValueWithCode(r *reader) (ValueWithCode, error) {
	pt, err := r.ReadPrimitiveType()
	if err != nil {
		return ValueWithCode{}, err
	}
	value, err := readPrimitive(r, pt)
	return ValueWithCode{Value: value}, err
}

func (v ValueWithCode) writeTo(w *writer) error {
	if err := w.WritePrimitiveType(v.Value.Type); err != nil {
		return err
	}
	return v.Value.writeTo(w)
}

// StringValueWithCode is a string preceded by the String binary type tag.
// The tag MUST equal BinaryTypeString; anything else fails loudly.
type StringValueWithCode struct {
	Value string `json:"value"`
}

func readStringValueWithCode(r *reader) (StringValueWithCode, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return StringValueWithCode{}, err
	}
	if tag != uint8(BinaryTypeString) {
		return StringValueWithCode{}, fmt.Errorf("%w: got 0x%02x",
			ErrStringValueTag, tag)
	}
	value, err := r.ReadString()
	return StringValueWithCode{Value: value}, err
}

func (v StringValueWithCode) writeTo(w *writer) error {
	if err := w.WriteBinaryType(BinaryTypeString); err != nil {
		return err
	}
	return w.WriteString(v.Value)
}

// ArrayOfValueWithCode is a length-prefixed sequence of tagged primitives.
type ArrayOfValueWithCode struct {
	Values []ValueWithCode `json:"values"`
}

func readArrayOfValueWithCode(r *reader) (ArrayOfValueWithCode, error) {
	length, err := r.ReadArrayLength()
	if err != nil {
		return ArrayOfValueWithCode{}, err
	}

	values := make([]ValueWithCode, 0, length)
	for i := int32(0); i < length; i++ {
		v, err := readValueWithCode(r)
		if err != nil {
			return ArrayOfValueWithCode{}, err
		}
		values = append(values, v)
	}
	return ArrayOfValueWithCode{Values: values}, nil
}

func (a ArrayOfValueWithCode) writeTo(w *writer) error {
	if err := w.WriteI32(int32(len(a.Values))); err != nil {
		return err
	}
	for _, v := range a.Values {
		if err := v.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// MessageFlags is the u32 bit field of a method call or return message,
// represented as named booleans.
type MessageFlags struct {
	NoArgs                 bool `json:"no_args"`
	ArgsInline             bool `json:"args_inline"`
	ArgsIsArray            bool `json:"args_is_array"`
	ArgsInArray            bool `json:"args_in_array"`
	NoContext              bool `json:"no_context"`
	ContextInline          bool `json:"context_inline"`
	ContextInArray         bool `json:"context_in_array"`
	MethodSignatureInArray bool `json:"method_signature_in_array"`
	PropertiesInArray      bool `json:"properties_in_array"`
	NoReturnValue          bool `json:"no_return_value"`
	ReturnValueVoid        bool `json:"return_value_void"`
	ReturnValueInline      bool `json:"return_value_inline"`
	ReturnValueInArray     bool `json:"return_value_in_array"`
	ExceptionInArray       bool `json:"exception_in_array"`
	GenericMethod          bool `json:"generic_method"`
}

// messageFlagsFromBits expands the wire bit field into named booleans.
func messageFlagsFromBits(bits uint32) MessageFlags {
	return MessageFlags{
		NoArgs:                 bits&MessageFlagNoArgs != 0,
		ArgsInline:             bits&MessageFlagArgsInline != 0,
		ArgsIsArray:            bits&MessageFlagArgsIsArray != 0,
		ArgsInArray:            bits&MessageFlagArgsInArray != 0,
		NoContext:              bits&MessageFlagNoContext != 0,
		ContextInline:          bits&MessageFlagContextInline != 0,
		ContextInArray:         bits&MessageFlagContextInArray != 0,
		MethodSignatureInArray: bits&MessageFlagMethodSignatureInArray != 0,
		PropertiesInArray:      bits&MessageFlagPropertiesInArray != 0,
		NoReturnValue:          bits&MessageFlagNoReturnValue != 0,
		ReturnValueVoid:        bits&MessageFlagReturnValueVoid != 0,
		ReturnValueInline:      bits&MessageFlagReturnValueInline != 0,
		ReturnValueInArray:     bits&MessageFlagReturnValueInArray != 0,
		ExceptionInArray:       bits&MessageFlagExceptionInArray != 0,
		GenericMethod:          bits&MessageFlagGenericMethod != 0,
	}
}

// Bits packs the named booleans back into the wire bit field.
func (mf MessageFlags) Bits() uint32 {
	var bits uint32
	if mf.NoArgs {
		bits |= MessageFlagNoArgs
	}
	if mf.ArgsInline {
		bits |= MessageFlagArgsInline
	}
	if mf.ArgsIsArray {
		bits |= MessageFlagArgsIsArray
	}
	if mf.ArgsInArray {
		bits |= MessageFlagArgsInArray
	}
	if mf.NoContext {
		bits |= MessageFlagNoContext
	}
	if mf.ContextInline {
		bits |= MessageFlagContextInline
	}
	if mf.ContextInArray {
		bits |= MessageFlagContextInArray
	}
	if mf.MethodSignatureInArray {
		bits |= MessageFlagMethodSignatureInArray
	}
	if mf.PropertiesInArray {
		bits |= MessageFlagPropertiesInArray
	}
	if mf.NoReturnValue {
		bits |= MessageFlagNoReturnValue
	}
	if mf.ReturnValueVoid {
		bits |= MessageFlagReturnValueVoid
	}
	if mf.ReturnValueInline {
		bits |= MessageFlagReturnValueInline
	}
	if mf.ReturnValueInArray {
		bits |= MessageFlagReturnValueInArray
	}
	if mf.ExceptionInArray {
		bits |= MessageFlagExceptionInArray
	}
	if mf.GenericMethod {
		bits |= MessageFlagGenericMethod
	}
	return bits
}

func readMessageFlags(r *reader) (MessageFlags, error) {
	bits, err := r.ReadU32()
	if err != nil {
		return MessageFlags{}, err
	}
	return messageFlagsFromBits(bits), nil
}

func (mf MessageFlags) writeTo(w *writer) error {
	return w.WriteU32(mf.Bits())
}
