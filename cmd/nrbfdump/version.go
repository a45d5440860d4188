// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nrbfdump version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nrbfdump version %s\n", version)
	},
}
