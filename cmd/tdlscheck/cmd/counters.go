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
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/wifi/tdls/stats"
)

func init() {
	RootCmd.AddCommand(countersCmd)
}

func countersRun(server string) error {
	counters, err := stats.FetchCounters(server)
	if err != nil {
		return fmt.Errorf("fetching data: %w", err)
	}

	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %d\n", k, counters[k])
	}
	return nil
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Print the auto-mode controller counters",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := countersRun(rootServerFlag); err != nil {
			log.Fatal(err)
		}
	},
}
