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

package automode

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/eclesh/welford"

	tdlsstats "github.com/facebook/wifi/tdls/stats"
)

// StatsServer is a stats server interface
type StatsServer interface {
	SetPeersTotal(peers int)
	SetPeersConnected(peers int)
	IncTXDiscovery()
	IncRXDiscoveryResponse()
	IncConnectRequests()
	IncDataTeardown()
	IncRSSITeardown()
	IncSpurious()
	IncDriverErrors()
	UpdateDataRate(bps uint64)
	SetPeerStats(stat *tdlsstats.Stat)
	RemovePeerStats(addr string)
	SetCounter(key string, val int64)
}

// Stats is an implementation of StatsServer
type Stats struct {
	sync.Mutex

	coreStats
	rates     *welford.Stats
	peerStats map[string]*tdlsstats.Stat
	extra     map[string]int64
}

// coreStats is just a grouping, don't use directly
type coreStats struct {
	peersTotal          int64
	peersConnected      int64
	txDiscovery         int64
	rxDiscoveryResponse int64
	connectRequests     int64
	dataTeardowns       int64
	rssiTeardowns       int64
	spuriousEvents      int64
	driverErrors        int64
}

// NewStats creates a new instance of Stats
func NewStats() *Stats {
	return &Stats{
		rates:     welford.New(),
		peerStats: map[string]*tdlsstats.Stat{},
		extra:     map[string]int64{},
	}
}

// SetPeersTotal atomically sets the tracked peer gauge
func (s *Stats) SetPeersTotal(peers int) {
	atomic.StoreInt64(&s.peersTotal, int64(peers))
}

// SetPeersConnected atomically sets the connected peer gauge
func (s *Stats) SetPeersConnected(peers int) {
	atomic.StoreInt64(&s.peersConnected, int64(peers))
}

// IncTXDiscovery atomically adds 1 to the discovery requests sent
func (s *Stats) IncTXDiscovery() {
	atomic.AddInt64(&s.txDiscovery, 1)
}

// IncRXDiscoveryResponse atomically adds 1 to the discovery responses received
func (s *Stats) IncRXDiscoveryResponse() {
	atomic.AddInt64(&s.rxDiscoveryResponse, 1)
}

// IncConnectRequests atomically adds 1 to the connect requests issued
func (s *Stats) IncConnectRequests() {
	atomic.AddInt64(&s.connectRequests, 1)
}

// IncDataTeardown atomically adds 1 to the low-traffic teardowns
func (s *Stats) IncDataTeardown() {
	atomic.AddInt64(&s.dataTeardowns, 1)
}

// IncRSSITeardown atomically adds 1 to the low-RSSI teardowns
func (s *Stats) IncRSSITeardown() {
	atomic.AddInt64(&s.rssiTeardowns, 1)
}

// IncSpurious atomically adds 1 to the spurious event counter
func (s *Stats) IncSpurious() {
	atomic.AddInt64(&s.spuriousEvents, 1)
}

// IncDriverErrors atomically adds 1 to the driver error counter
func (s *Stats) IncDriverErrors() {
	atomic.AddInt64(&s.driverErrors, 1)
}

// UpdateDataRate adds a sampled peer data rate to the rate distribution
func (s *Stats) UpdateDataRate(bps uint64) {
	s.Lock()
	defer s.Unlock()
	s.rates.Add(float64(bps))
}

// SetPeerStats updates the per-peer monitoring record
func (s *Stats) SetPeerStats(stat *tdlsstats.Stat) {
	s.Lock()
	defer s.Unlock()
	s.peerStats[stat.Address] = stat
}

// RemovePeerStats drops the monitoring record of a removed peer
func (s *Stats) RemovePeerStats(addr string) {
	s.Lock()
	defer s.Unlock()
	delete(s.peerStats, addr)
}

// SetCounter sets an arbitrary extra counter, used by the sys stats collector
func (s *Stats) SetCounter(key string, val int64) {
	s.Lock()
	defer s.Unlock()
	s.extra[key] = val
}

// GetCounters returns the current counter values
func (s *Stats) GetCounters() tdlsstats.Counters {
	s.Lock()
	defer s.Unlock()
	counters := tdlsstats.Counters{
		"tdls.automode.peers.total":           atomic.LoadInt64(&s.peersTotal),
		"tdls.automode.peers.connected":       atomic.LoadInt64(&s.peersConnected),
		"tdls.automode.tx.discovery":          atomic.LoadInt64(&s.txDiscovery),
		"tdls.automode.rx.discovery_response": atomic.LoadInt64(&s.rxDiscoveryResponse),
		"tdls.automode.connect_requests":      atomic.LoadInt64(&s.connectRequests),
		"tdls.automode.teardown.data":         atomic.LoadInt64(&s.dataTeardowns),
		"tdls.automode.teardown.rssi":         atomic.LoadInt64(&s.rssiTeardowns),
		"tdls.automode.spurious_events":       atomic.LoadInt64(&s.spuriousEvents),
		"tdls.automode.driver_errors":         atomic.LoadInt64(&s.driverErrors),
	}
	if s.rates.Count() > 0 {
		counters["tdls.automode.rate.mean"] = int64(s.rates.Mean())
		counters["tdls.automode.rate.stddev"] = int64(s.rates.Stddev())
		counters["tdls.automode.rate.max"] = int64(s.rates.Max())
	}
	for k, v := range s.extra {
		counters[k] = v
	}
	return counters
}

// GetPeerStats returns a sorted snapshot of the per-peer records
func (s *Stats) GetPeerStats() tdlsstats.Stats {
	s.Lock()
	defer s.Unlock()
	peers := make(tdlsstats.Stats, 0, len(s.peerStats))
	for _, stat := range s.peerStats {
		cp := *stat
		peers = append(peers, &cp)
	}
	sort.Sort(peers)
	return peers
}
