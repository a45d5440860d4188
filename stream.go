// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"fmt"
	"io"
)

// Stream is a decoded serialization stream: a single rooted class tree.
type Stream struct {
	Root Class `json:"root"`
}

// Class is a user-facing class instance. Fields keep declaration order;
// emission order on encode follows it.
type Class struct {
	LibraryName string  `json:"library_name"`
	Name        string  `json:"name"`
	Fields      []Field `json:"fields"`
}

// Field is one named member of a Class. Exactly one of Primitive, Array and
// Class is set.
type Field struct {
	Name      string          `json:"name"`
	Primitive *Primitive      `json:"primitive,omitempty"`
	Array     *PrimitiveArray `json:"array,omitempty"`
	Class     *Class          `json:"class,omitempty"`
}

// PrimitiveField builds a primitive-valued field.
func PrimitiveField(name string, value Primitive) Field {
	return Field{Name: name, Primitive: &value}
}

// ArrayField builds a primitive-array-valued field.
func ArrayField(name string, value PrimitiveArray) Field {
	return Field{Name: name, Array: &value}
}

// ClassField builds a class-valued field.
func ClassField(name string, value Class) Field {
	return Field{Name: name, Class: &value}
}

// Decode consumes records from the byte source until MessageEnd and links
// them into a Stream holding the root class tree.
func Decode(r io.Reader, opts *Options) (*Stream, error) {
	records, err := readRecords(newReader(r, opts))
	if err != nil {
		return nil, err
	}
	return newDecoder().link(records)
}

// Encode serializes the stream into the writer. It does not flush.
func (s *Stream) Encode(w io.Writer) error {
	records, err := s.records()
	if err != nil {
		return err
	}
	return writeRecords(newWriter(w), records)
}

// decoder links a flat record list into a rooted class tree. All tables are
// per call.
type decoder struct {
	objects   map[int32]Record
	libraries map[int32]string
	visiting  map[int32]bool
	anomalies []string
}

func newDecoder() *decoder {
	return &decoder{
		objects:   make(map[int32]Record),
		libraries: make(map[int32]string),
		visiting:  make(map[int32]bool),
	}
}

// link is the two-pass graph link: index every object and library by id,
// then walk the root record resolving member references.
func (d *decoder) link(records []Record) (*Stream, error) {
	if len(records) == 0 {
		return nil, ErrMissingHeader
	}

	header, ok := records[0].(*SerializationHeader)
	if !ok {
		return nil, ErrMissingHeader
	}
	if header.MajorVersion != 1 || header.MinorVersion != 0 {
		d.anomalies = append(d.anomalies, AnoUnexpectedVersion)
	}
	if header.HeaderID != -1 {
		d.anomalies = append(d.anomalies, AnoNonCanonicalHeaderID)
	}

	for _, record := range records[1:] {
		if err := d.index(record); err != nil {
			return nil, err
		}
	}

	root, err := d.resolveClass(header.RootID)
	if err != nil {
		if _, found := d.objects[header.RootID]; !found {
			return nil, fmt.Errorf("%w: object id %d", ErrMissingRoot, header.RootID)
		}
		return nil, err
	}

	class, err := d.decodeClass(root)
	if err != nil {
		return nil, err
	}
	return &Stream{Root: *class}, nil
}

// index registers a record and, for class records, any records nested in
// its member list, so that references resolve no matter where the target
// was serialized.
func (d *decoder) index(record Record) error {
	switch rec := record.(type) {
	case *ClassWithMembersAndTypes:
		d.objects[rec.ClassInfo.ObjectID] = rec
		return d.indexAll(rec.MemberReferences)
	case *ClassWithId:
		d.objects[rec.ObjectID] = rec
	case *ArraySinglePrimitive:
		d.objects[rec.ArrayInfo.ObjectID] = rec
	case *BinaryLibrary:
		d.libraries[rec.LibraryID] = rec.LibraryName
	case MessageEnd:
	case *MemberPrimitiveUnTyped, *MemberTypedPrimitive, *MemberReference,
		ObjectNull, *ObjectNullMultiple, *ObjectNullMultiple256:
		// Member-position records carry no object id of their own.
	default:
		return fmt.Errorf("%w: %T at stream level", ErrNotEnoughInfo, record)
	}
	return nil
}

func (d *decoder) indexAll(records []Record) error {
	for _, record := range records {
		if err := d.index(record); err != nil {
			return err
		}
	}
	return nil
}

// resolveClass chases an object id through ClassWithId metadata links until
// it lands on class metadata. A revisited id means the stream is cyclic.
func (d *decoder) resolveClass(id int32) (*ClassWithMembersAndTypes, error) {
	if d.visiting[id] {
		return nil, fmt.Errorf("%w: object id %d", ErrCyclicReference, id)
	}
	d.visiting[id] = true
	defer delete(d.visiting, id)

	record, ok := d.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: object id %d", ErrMissingObject, id)
	}

	switch rec := record.(type) {
	case *ClassWithMembersAndTypes:
		return rec, nil
	case *ClassWithId:
		return d.resolveClass(rec.MetadataID)
	}
	return nil, fmt.Errorf("%w: object id %d is %T, not a class",
		ErrNotEnoughInfo, id, record)
}

// decodeClass materializes one class record into the user model, resolving
// member references through the object table. A single cursor advances over
// the member reference list, because primitive slots carry no reference.
func (d *decoder) decodeClass(c *ClassWithMembersAndTypes) (*Class, error) {
	objectID := c.ClassInfo.ObjectID
	if d.visiting[objectID] {
		return nil, fmt.Errorf("%w: object id %d", ErrCyclicReference, objectID)
	}
	d.visiting[objectID] = true
	defer delete(d.visiting, objectID)

	libraryName, ok := d.libraries[c.LibraryID]
	if !ok {
		return nil, fmt.Errorf("%w: library id %d", ErrMissingLibrary, c.LibraryID)
	}

	class := Class{
		LibraryName: libraryName,
		Name:        c.ClassInfo.Name,
	}

	ai := 0
	for i, fieldName := range c.ClassInfo.MemberNames {
		if i >= len(c.MemberTypeInfo.MemberTypes) {
			return nil, fmt.Errorf("%w: member %q has no type", ErrNotEnoughInfo,
				fieldName)
		}
		fieldType := c.MemberTypeInfo.MemberTypes[i]

		switch fieldType {
		case BinaryTypePrimitive, BinaryTypePrimitiveArray, BinaryTypeClass:
		default:
			return nil, fmt.Errorf("%w: member type %s", ErrNotEnoughInfo, fieldType)
		}

		if ai >= len(c.MemberReferences) {
			return nil, fmt.Errorf("%w: member %q has no value", ErrNotEnoughInfo,
				fieldName)
		}
		member := c.MemberReferences[ai]
		ai++

		field, err := d.decodeMember(fieldName, fieldType, member)
		if err != nil {
			return nil, err
		}
		class.Fields = append(class.Fields, *field)
	}

	return &class, nil
}

func (d *decoder) decodeMember(name string, bt BinaryType, member Record) (*Field, error) {
	// A null in any non-primitive slot becomes a null primitive field.
	if _, isNull := member.(ObjectNull); isNull && bt != BinaryTypePrimitive {
		null := Null()
		return &Field{Name: name, Primitive: &null}, nil
	}

	switch bt {
	case BinaryTypePrimitive:
		switch rec := member.(type) {
		case *MemberPrimitiveUnTyped:
			value := rec.Value
			return &Field{Name: name, Primitive: &value}, nil
		case *MemberTypedPrimitive:
			value := rec.Value
			return &Field{Name: name, Primitive: &value}, nil
		}
		return nil, fmt.Errorf("%w: %T in primitive slot %q", ErrNotEnoughInfo,
			member, name)

	case BinaryTypePrimitiveArray:
		ref, ok := member.(*MemberReference)
		if !ok {
			return nil, fmt.Errorf("%w: %T in array slot %q", ErrNotEnoughInfo,
				member, name)
		}
		target, found := d.objects[ref.ID]
		if !found {
			return nil, fmt.Errorf("%w: object id %d", ErrMissingObject, ref.ID)
		}
		array, ok := target.(*ArraySinglePrimitive)
		if !ok {
			return nil, fmt.Errorf("%w: object id %d is %T, not a primitive array",
				ErrNotEnoughInfo, ref.ID, target)
		}
		projected, err := newPrimitiveArray(array.PrimitiveType, array.Members)
		if err != nil {
			return nil, err
		}
		return &Field{Name: name, Array: &projected}, nil

	case BinaryTypeClass:
		var target *ClassWithMembersAndTypes
		switch rec := member.(type) {
		case *MemberReference:
			resolved, err := d.resolveClass(rec.ID)
			if err != nil {
				return nil, err
			}
			target = resolved
		case *ClassWithMembersAndTypes:
			// Serialized inline at first occurrence.
			target = rec
		default:
			return nil, fmt.Errorf("%w: %T in class slot %q", ErrNotEnoughInfo,
				member, name)
		}
		nested, err := d.decodeClass(target)
		if err != nil {
			return nil, err
		}
		return &Field{Name: name, Class: nested}, nil
	}

	return nil, fmt.Errorf("%w: member type %s", ErrNotEnoughInfo, bt)
}

// encoder assigns object and library ids and flattens a class tree into
// records. Ids come from one monotone sequence starting at 1; a first-seen
// library reserves the successor of the class that introduced it.
type encoder struct {
	counter      int32
	libraryIDs   map[string]int32
	libraryNames []string
}

func newEncoder() *encoder {
	return &encoder{
		counter:    1,
		libraryIDs: make(map[string]int32),
	}
}

func (e *encoder) libraryID(name string) int32 {
	if id, seen := e.libraryIDs[name]; seen {
		return id
	}
	id := e.counter
	e.counter++
	e.libraryIDs[name] = id
	e.libraryNames = append(e.libraryNames, name)
	return id
}

// encodeClass flattens one class. The class record leads the returned list
// so that a definition precedes the records it references; the assigned
// object id is returned for the caller's member reference.
func (e *encoder) encodeClass(class *Class) (int32, []Record, error) {
	objectID := e.counter
	e.counter++
	libraryID := e.libraryID(class.LibraryName)

	memberNames := make([]string, 0, len(class.Fields))
	var memberTypes []BinaryType
	var additionalInfo []AdditionalInfo
	var memberReferences []Record
	var records []Record

	for _, field := range class.Fields {
		memberNames = append(memberNames, field.Name)

		switch {
		case field.Primitive != nil:
			memberTypes = append(memberTypes, BinaryTypePrimitive)
			additionalInfo = append(additionalInfo, AdditionalInfo{
				BinaryType:    BinaryTypePrimitive,
				PrimitiveType: field.Primitive.Type,
			})
			memberReferences = append(memberReferences,
				&MemberPrimitiveUnTyped{Value: *field.Primitive})

		case field.Array != nil:
			arrayID := e.counter
			e.counter++
			members := field.Array.primitives()

			memberTypes = append(memberTypes, BinaryTypePrimitiveArray)
			additionalInfo = append(additionalInfo, AdditionalInfo{
				BinaryType:    BinaryTypePrimitiveArray,
				PrimitiveType: field.Array.Type,
			})
			memberReferences = append(memberReferences, &MemberReference{ID: arrayID})
			records = append(records, &ArraySinglePrimitive{
				ArrayInfo: ArrayInfo{
					ObjectID: arrayID,
					Length:   int32(len(members)),
				},
				PrimitiveType: field.Array.Type,
				Members:       members,
			})

		case field.Class != nil:
			childID, childRecords, err := e.encodeClass(field.Class)
			if err != nil {
				return 0, nil, err
			}
			memberTypes = append(memberTypes, BinaryTypeClass)
			additionalInfo = append(additionalInfo, AdditionalInfo{
				BinaryType: BinaryTypeClass,
				ClassInfo: &ClassTypeInfo{
					TypeName:  field.Class.Name,
					LibraryID: e.libraryIDs[field.Class.LibraryName],
				},
			})
			memberReferences = append(memberReferences, &MemberReference{ID: childID})
			records = append(records, childRecords...)

		default:
			return 0, nil, fmt.Errorf("%w: %q", ErrEmptyField, field.Name)
		}
	}

	head := &ClassWithMembersAndTypes{
		ClassInfo: ClassInfo{
			ObjectID:    objectID,
			Name:        class.Name,
			MemberCount: int32(len(memberNames)),
			MemberNames: memberNames,
		},
		MemberTypeInfo: MemberTypeInfo{
			MemberTypes:    memberTypes,
			AdditionalInfo: additionalInfo,
		},
		LibraryID:        libraryID,
		MemberReferences: memberReferences,
	}

	return objectID, append([]Record{head}, records...), nil
}

// records flattens the whole stream: header, one BinaryLibrary per distinct
// library in first-seen order, the class walk, MessageEnd.
func (s *Stream) records() ([]Record, error) {
	e := newEncoder()
	_, classRecords, err := e.encodeClass(&s.Root)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(classRecords)+len(e.libraryNames)+2)
	records = append(records, &SerializationHeader{
		RootID:       1,
		HeaderID:     -1,
		MajorVersion: 1,
		MinorVersion: 0,
	})
	for _, name := range e.libraryNames {
		records = append(records, &BinaryLibrary{
			LibraryID:   e.libraryIDs[name],
			LibraryName: name,
		})
	}
	records = append(records, classRecords...)
	records = append(records, MessageEnd{})
	return records, nil
}
