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

package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Stat is a representation of a monitoring record for one tracked TDLS peer
type Stat struct {
	Address      string `json:"address"`
	Connected    bool   `json:"connected"`
	Incoming     bool   `json:"incoming"`
	RSSI         int    `json:"rssi"`
	DataRateBPS  uint64 `json:"data_rate_bps"`
	FastAttempts uint   `json:"fast_attempts"`
	LowRSSICount uint   `json:"low_rssi_count"`
}

// Stats is a list of Stat
type Stats []*Stat

func (s Stats) Len() int { return len(s) }
func (s Stats) Less(i, j int) bool {
	if s[i].Connected != s[j].Connected {
		return s[i].Connected
	}
	return s[i].Address < s[j].Address
}
func (s Stats) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Index returns the index of the e if it's already in s. Otherwise -1
func (s Stats) Index(e *Stat) int {
	for i, a := range s {
		if a.Address == e.Address {
			return i
		}
	}
	return -1
}

// Counters is various counters exported by the auto-mode controller
type Counters map[string]int64

func fetch(url string, dst any) error {
	c := http.Client{
		Timeout: 2 * time.Second,
	}
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%q returned status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// FetchStats returns per-peer stats from a monitoring endpoint of a running supplicant
func FetchStats(url string) (Stats, error) {
	var peers Stats
	if err := fetch(url+"/", &peers); err != nil {
		return nil, err
	}
	return peers, nil
}

// FetchCounters returns counters from a monitoring endpoint of a running supplicant
func FetchCounters(url string) (Counters, error) {
	counters := Counters{}
	if err := fetch(url+"/counters", &counters); err != nil {
		return nil, err
	}
	return counters, nil
}
