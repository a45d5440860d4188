// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"errors"
	"testing"
)

func TestRecordTypeFromByte(t *testing.T) {

	tests := []struct {
		in      uint8
		out     RecordType
		wantErr bool
	}{
		{0, RecordSerializedStreamHeader, false},
		{5, RecordClassWithMembersAndTypes, false},
		{11, RecordMessageEnd, false},
		{22, RecordMethodReturn, false},
		{18, 0, true},
		{23, 0, true},
		{99, 0, true},
	}

	for _, tt := range tests {
		got, err := recordTypeFromByte(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRecordType) {
				t.Errorf("recordTypeFromByte(%d) got %v, want ErrInvalidRecordType",
					tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("recordTypeFromByte(%d) failed, reason: %v", tt.in, err)
		}
		if got != tt.out {
			t.Errorf("recordTypeFromByte(%d) got %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestPrimitiveTypeFromByte(t *testing.T) {

	tests := []struct {
		in      uint8
		wantErr bool
	}{
		{1, false},
		{2, false},
		{18, false},
		{0, true},
		{4, true},
		{19, true},
	}

	for _, tt := range tests {
		_, err := primitiveTypeFromByte(tt.in)
		if tt.wantErr != (err != nil) {
			t.Errorf("primitiveTypeFromByte(%d) err = %v, want error %v",
				tt.in, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidPrimitiveType) {
			t.Errorf("primitiveTypeFromByte(%d) got %v, want ErrInvalidPrimitiveType",
				tt.in, err)
		}
	}
}

func TestBinaryTypeFromByte(t *testing.T) {

	for b := uint8(0); b <= 7; b++ {
		if _, err := binaryTypeFromByte(b); err != nil {
			t.Errorf("binaryTypeFromByte(%d) failed, reason: %v", b, err)
		}
	}
	if _, err := binaryTypeFromByte(8); !errors.Is(err, ErrInvalidBinaryType) {
		t.Errorf("binaryTypeFromByte(8) got %v, want ErrInvalidBinaryType", err)
	}
}

func TestBinaryArrayTypeFromByte(t *testing.T) {

	for b := uint8(0); b <= 5; b++ {
		if _, err := binaryArrayTypeFromByte(b); err != nil {
			t.Errorf("binaryArrayTypeFromByte(%d) failed, reason: %v", b, err)
		}
	}
	if _, err := binaryArrayTypeFromByte(6); !errors.Is(err, ErrInvalidBinaryArrayType) {
		t.Errorf("binaryArrayTypeFromByte(6) got %v, want ErrInvalidBinaryArrayType",
			err)
	}
}

func TestBinaryArrayTypeHasLowerBounds(t *testing.T) {

	tests := []struct {
		in  BinaryArrayType
		out bool
	}{
		{ArrayTypeSingle, false},
		{ArrayTypeJagged, false},
		{ArrayTypeRectangular, false},
		{ArrayTypeSingleOffset, true},
		{ArrayTypeJaggedOffset, true},
		{ArrayTypeRectangularOffset, true},
	}

	for _, tt := range tests {
		if got := tt.in.HasLowerBounds(); got != tt.out {
			t.Errorf("%v.HasLowerBounds() got %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestEnumStrings(t *testing.T) {

	if got := RecordClassWithMembersAndTypes.String(); got != "ClassWithMembersAndTypes" {
		t.Errorf("RecordType.String() got %q", got)
	}
	if got := PrimitiveInt32.String(); got != "Int32" {
		t.Errorf("PrimitiveType.String() got %q", got)
	}
	if got := BinaryTypePrimitiveArray.String(); got != "PrimitiveArray" {
		t.Errorf("BinaryType.String() got %q", got)
	}
	if got := RecordType(99).String(); got != "RecordType(99)" {
		t.Errorf("unknown RecordType.String() got %q", got)
	}
}
