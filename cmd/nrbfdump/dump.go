// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	nrbfparser "github.com/saferwall/nrbf"
	"github.com/saferwall/nrbf/log"
	"github.com/spf13/cobra"
)

var (
	wantRecords bool
	wantHexDump bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <nrbf-file>",
	Short: "Decode a stream and print its class tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&wantRecords, "records", false,
		"also print the record listing with offsets")
	dumpCmd.Flags().BoolVar(&wantHexDump, "hex", false,
		"also print the stream bytes record by record")
}

func prettyPrint(iface interface{}) string {
	buff, err := json.MarshalIndent(iface, "", "\t")
	if err != nil {
		log.Errorf("JSON encode error: %v", err)
		return ""
	}
	return string(buff)
}

func runDump(cmd *cobra.Command, args []string) error {
	filename := args[0]
	log.Infof("processing %s", filename)

	stream, err := nrbfparser.New(filename, &nrbfparser.Options{})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer stream.Close()

	if err := stream.Parse(); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	fmt.Println(prettyPrint(stream.Root))

	for _, ano := range stream.Anomalies {
		log.Warnf("anomaly: %s", ano)
	}

	if wantRecords {
		for i, record := range stream.Records {
			fmt.Printf("record %3d at 0x%06x: %T\n", i, stream.Offsets[i], record)
		}
	}

	if wantHexDump {
		data, err := ioutil.ReadFile(filename)
		if err != nil {
			return err
		}
		dumpRecordHex(stream.Records, stream.Offsets, data)
	}

	return nil
}

// dumpRecordHex prints the stream bytes segmented along the record
// boundaries the parser reported, eight bytes per row with a printable
// gutter.
func dumpRecordHex(records []nrbfparser.Record, offsets []int64, data []byte) {
	if len(offsets) != len(records)+1 {
		log.Errorf("offset table does not match record list")
		return
	}

	for i, record := range records {
		start, end := offsets[i], offsets[i+1]
		if start < 0 || end > int64(len(data)) || start > end {
			log.Errorf("record %d spans [%d, %d) outside the stream", i, start, end)
			return
		}

		fmt.Printf("%06x %T\n", start, record)
		for row := start; row < end; row += 8 {
			limit := row + 8
			if limit > end {
				limit = end
			}
			chunk := data[row:limit]

			fmt.Printf("      ")
			for _, b := range chunk {
				fmt.Printf(" %02x", b)
			}
			for pad := len(chunk); pad < 8; pad++ {
				fmt.Print("   ")
			}
			fmt.Printf("  |%s|\n", printable(chunk))
		}
	}
}

func printable(chunk []byte) string {
	out := make([]byte, len(chunk))
	for i, b := range chunk {
		if b < 32 || b > 126 {
			out[i] = '.'
		} else {
			out[i] = b
		}
	}
	return string(out)
}
