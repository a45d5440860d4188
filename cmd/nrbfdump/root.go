// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/saferwall/nrbf/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "nrbfdump",
	Short: ".NET Remoting Binary Format stream dumper",
	Long: `nrbfdump is a command-line tool for inspecting streams serialized
in the .NET Remoting Binary Format (MS-NRBF).

It decodes a stream into its rooted class tree and prints the tree,
the raw record listing, or a hex dump of the stream bytes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.LevelError
		if verbose {
			level = log.LevelDebug
		}
		log.SetLogger(log.NewFilter(log.NewStdLogger(os.Stderr),
			log.FilterLevel(level)))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log progress and stream anomalies")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)
}
