/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/wifi/tdls/stats"
)

func init() {
	RootCmd.AddCommand(peersCmd)
}

func peersRun(server string) error {
	peers, err := stats.FetchStats(server)
	if err != nil {
		return fmt.Errorf("fetching data: %w", err)
	}

	sort.Sort(peers)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetColWidth(20)
	table.SetHeader([]string{
		"address", "connected", "incoming", "rssi(dbm)", "rate(bps)", "fast attempts", "low rssi polls",
	})

	for _, p := range peers {
		table.Append([]string{
			p.Address,
			fmt.Sprintf("%v", p.Connected),
			fmt.Sprintf("%v", p.Incoming),
			fmt.Sprintf("%d", p.RSSI),
			fmt.Sprintf("%d", p.DataRateBPS),
			fmt.Sprintf("%d", p.FastAttempts),
			fmt.Sprintf("%d", p.LowRSSICount),
		})
	}
	table.Render()
	return nil
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the tracked TDLS peers",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := peersRun(rootServerFlag); err != nil {
			log.Fatal(err)
		}
	},
}
