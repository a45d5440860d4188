// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package nrbf implements a codec for the .NET Remoting Binary Format
// (MS-NRBF). It reads a record-oriented, little-endian byte stream into a
// rooted class tree and writes such a tree back into a byte stream a
// conforming peer would accept.
package nrbf

import (
	"bytes"
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/saferwall/nrbf/log"
)

const (
	// MaxDefaultStringLength is the default cap on a single length-prefixed
	// string, in bytes.
	MaxDefaultStringLength = 0x4000000

	// MaxDefaultArrayLength is the default cap on a single array element
	// count.
	MaxDefaultArrayLength = 0x4000000
)

// Errors
var (

	// ErrInvalidString is returned when a length-prefixed string payload is
	// not valid UTF-8.
	ErrInvalidString = errors.New("nrbf: string payload is not valid UTF-8")

	// ErrInvalidPrimitiveType is returned when a primitive type byte is
	// outside the enumerated set.
	ErrInvalidPrimitiveType = errors.New("nrbf: invalid primitive type")

	// ErrInvalidBinaryType is returned when a binary type byte is outside
	// the enumerated set.
	ErrInvalidBinaryType = errors.New("nrbf: invalid binary type")

	// ErrInvalidRecordType is returned when a record type byte is outside
	// the enumerated set.
	ErrInvalidRecordType = errors.New("nrbf: invalid record type")

	// ErrInvalidBinaryArrayType is returned when a binary array type byte is
	// outside the enumerated set.
	ErrInvalidBinaryArrayType = errors.New("nrbf: invalid binary array type")

	// ErrInvalidChar is returned when a char payload is not a Unicode scalar
	// value.
	ErrInvalidChar = errors.New("nrbf: char is not a Unicode scalar value")

	// ErrInvalidTimeSpan is returned when a time span tick count cannot be
	// represented.
	ErrInvalidTimeSpan = errors.New("nrbf: time span out of range")

	// ErrInvalidDateTime is returned when a date time tick count is outside
	// the representable range.
	ErrInvalidDateTime = errors.New("nrbf: date time out of range")

	// ErrNotEnoughInfo is returned when a record kind appears in a context
	// where the stream carries too little information to interpret it.
	ErrNotEnoughInfo = errors.New("nrbf: not enough info to parse record")

	// ErrNegativeCount is returned when a count field on the wire is
	// negative.
	ErrNegativeCount = errors.New("nrbf: negative count")

	// ErrTooLarge is returned when a length field exceeds the configured
	// allocation cap.
	ErrTooLarge = errors.New("nrbf: length exceeds configured cap")

	// ErrStringValueTag is returned when the leading tag of a string value
	// is not the String binary type.
	ErrStringValueTag = errors.New("nrbf: string value tag mismatch")

	// ErrMissingHeader is returned when the stream does not start with a
	// serialization header.
	ErrMissingHeader = errors.New("nrbf: missing serialization header")

	// ErrMissingRoot is returned when no record carries the root object id
	// announced by the header.
	ErrMissingRoot = errors.New("nrbf: root object not found")

	// ErrMissingObject is returned when a member reference points to an
	// object id declared by no record in the stream.
	ErrMissingObject = errors.New("nrbf: referenced object not found")

	// ErrMissingLibrary is returned when a class names a library id declared
	// by no BinaryLibrary record.
	ErrMissingLibrary = errors.New("nrbf: referenced library not found")

	// ErrCyclicReference is returned when resolving member references
	// revisits an object id already on the resolution path.
	ErrCyclicReference = errors.New("nrbf: cyclic object reference")

	// ErrEmptyField is returned on encode when a field carries no value.
	ErrEmptyField = errors.New("nrbf: field carries no value")
)

// Anomalies
const (
	// AnoUnexpectedVersion is reported when the header major/minor version
	// differs from 1.0.
	AnoUnexpectedVersion = "Header version is not 1.0"

	// AnoNonCanonicalHeaderID is reported when the header id differs from
	// the usual -1.
	AnoNonCanonicalHeaderID = "Header id is not -1"

	// AnoNonMinimalLength is reported when a varint length prefix spends
	// more bytes than its value needs.
	AnoNonMinimalLength = "Non-minimal varint length prefix"
)

// Options for parsing.
type Options struct {

	// Maximum byte length accepted for a single string, by default
	// (MaxDefaultStringLength).
	MaxStringLength uint32

	// Maximum element count accepted for a single array, by default
	// (MaxDefaultArrayLength).
	MaxArrayLength uint32

	// A custom logger.
	Logger log.Logger
}

// A File represents an open NRBF stream. Offsets holds the byte position
// each record starts at, with one final entry past the MessageEnd record.
type File struct {
	Root      *Class   `json:"root,omitempty"`
	Records   []Record `json:"-"`
	Offsets   []int64  `json:"-"`
	Anomalies []string `json:"anomalies,omitempty"`
	data      mmap.MMap
	f         *os.File
	opts      *Options
	logger    *log.Helper
}

func (file *File) applyOptions(opts *Options) {
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}

	if file.opts.MaxStringLength == 0 {
		file.opts.MaxStringLength = MaxDefaultStringLength
	}
	if file.opts.MaxArrayLength == 0 {
		file.opts.MaxArrayLength = MaxDefaultArrayLength
	}

	if file.opts.Logger == nil {
		logger := log.NewStdLogger(os.Stderr)
		file.logger = log.NewHelper(log.NewFilter(logger,
			log.FilterLevel(log.LevelError)))
	} else {
		file.logger = log.NewHelper(file.opts.Logger)
	}
}

// New instantiates a file instance with options given a file name.
func New(name string, opts *Options) (*File, error) {

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of using read/write.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := File{}
	file.applyOptions(opts)
	file.data = data
	file.f = f
	return &file, nil
}

// NewBytes instantiates a file instance with options given a memory buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {
	file := File{}
	file.applyOptions(opts)
	file.data = data
	return &file, nil
}

// Close closes the File.
func (file *File) Close() error {
	if file.f != nil {
		_ = file.data.Unmap()
		return file.f.Close()
	}
	return nil
}

// Parse performs the record pass and the graph link for an NRBF stream.
func (file *File) Parse() error {

	r := newReader(bytes.NewReader(file.data), file.opts)
	records, offsets, err := readRecordsWithOffsets(r)
	if err != nil {
		return err
	}
	file.Records = records
	file.Offsets = offsets

	d := newDecoder()
	stream, err := d.link(records)
	if err != nil {
		return err
	}

	file.Anomalies = append(file.Anomalies, r.anomalies...)
	file.Anomalies = append(file.Anomalies, d.anomalies...)
	for _, ano := range file.Anomalies {
		file.logger.Debugf("stream anomaly: %s", ano)
	}

	file.Root = &stream.Root
	return nil
}
