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

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/constraints"

	"github.com/facebook/wifi/tdls/stats"
)

type status int

// possible check results
const (
	OK status = iota
	WARN
	FAIL
)

var okString = color.GreenString("[ OK ]")
var warnString = color.YellowString("[WARN]")
var failString = color.RedString("[FAIL]")

var statusToColor = []string{okString, warnString, failString}

// diagnoser is a function that checks one aspect of a fetched snapshot
type diagnoser func(peers stats.Stats, counters stats.Counters) (status, string)

// generic function to check a counter against some thresholds
func checkAgainstThreshold[T constraints.Ordered](name string, value, warnThreshold, failThreshold T, explanation string) (status, string) {
	msgTemplate := "%s is %s, we expect it to be within %s. %s"
	thresholdStr := color.BlueString("%v", warnThreshold)

	if value > failThreshold {
		return FAIL, fmt.Sprintf(msgTemplate, name, color.RedString("%v", value), thresholdStr, explanation)
	}
	if value > warnThreshold {
		return WARN, fmt.Sprintf(msgTemplate, name, color.YellowString("%v", value), thresholdStr, explanation)
	}
	return OK, fmt.Sprintf("%s is %s, within %s", name, color.GreenString("%v", value), thresholdStr)
}

func checkPeersTracked(peers stats.Stats, _ stats.Counters) (status, string) {
	if len(peers) == 0 {
		return WARN, "no TDLS peers are tracked, auto-mode has nothing to do"
	}
	connected := 0
	for _, p := range peers {
		if p.Connected {
			connected++
		}
	}
	return OK, fmt.Sprintf("%d peers tracked, %d connected", len(peers), connected)
}

func checkStalledCandidates(peers stats.Stats, _ stats.Counters) (status, string) {
	stalled := 0
	for _, p := range peers {
		if !p.Connected && p.FastAttempts > 20 {
			stalled++
		}
	}
	if stalled > 0 {
		return WARN, fmt.Sprintf("%d candidate peers exhausted their fast connect attempts and are on the slow cycle", stalled)
	}
	return OK, "no candidate peer is stuck on the slow connect cycle"
}

func checkSpuriousEvents(_ stats.Stats, counters stats.Counters) (status, string) {
	return checkAgainstThreshold(
		"spurious event count",
		counters["tdls.automode.spurious_events"],
		int64(5),
		int64(50),
		"Many spurious events usually mean the driver and the supplicant disagree about peer state.",
	)
}

func checkDriverErrors(_ stats.Stats, counters stats.Counters) (status, string) {
	return checkAgainstThreshold(
		"driver error count",
		counters["tdls.automode.driver_errors"],
		int64(1),
		int64(10),
		"Repeated driver command failures may end in a hang report.",
	)
}

var diagnosers = []diagnoser{
	checkPeersTracked,
	checkStalledCandidates,
	checkSpuriousEvents,
	checkDriverErrors,
}

func diagRun(server string) error {
	peers, err := stats.FetchStats(server)
	if err != nil {
		return fmt.Errorf("fetching peers: %w", err)
	}
	counters, err := stats.FetchCounters(server)
	if err != nil {
		return fmt.Errorf("fetching counters: %w", err)
	}

	failed := false
	for _, d := range diagnosers {
		st, msg := d(peers, counters)
		fmt.Printf("%s %s\n", statusToColor[st], msg)
		if st == FAIL {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Perform basic diagnosis of the auto-mode controller state",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := diagRun(rootServerFlag); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(diagCmd)
}
