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
	"time"

	log "github.com/sirupsen/logrus"

	tdlsstats "github.com/facebook/wifi/tdls/stats"
)

type peer struct {
	addr MAC

	// is connected now as a TDLS sta
	connected bool

	// peer was created by a remote-initiated connection and is not a
	// candidate for outgoing reconnects
	incoming bool

	// latest RSSI, dBm
	rssi int

	// number of consecutive polls with bad RSSI
	lowRSSIVals uint

	// number of connect attempts made on the fast schedule
	fastAttempts uint

	// in + out traffic in bps, computed from the last two samples
	dataRate uint64

	// last byte counter sample
	lastTxBytes   uint32
	lastRxBytes   uint32
	lastQueryTime time.Time
}

func (p *peer) stat() *tdlsstats.Stat {
	return &tdlsstats.Stat{
		Address:      p.addr.String(),
		Connected:    p.connected,
		Incoming:     p.incoming,
		RSSI:         p.rssi,
		DataRateBPS:  p.dataRate,
		FastAttempts: p.fastAttempts,
		LowRSSICount: p.lowRSSIVals,
	}
}

// sampleRate refreshes p.dataRate from the driver byte counters. Samples
// closer together than minSampleTimeDiff are discarded, the previous rate
// stays authoritative. The counters are 32 bits and may wrap; the unsigned
// subtraction wraps with them, so one wrap per sample still yields the
// right delta.
func (c *Controller) sampleRate(p *peer) {
	now := c.now()
	deltaMsec := now.Sub(p.lastQueryTime).Milliseconds()
	if deltaMsec < minSampleTimeDiff.Milliseconds() {
		log.Tracef("%s: dtime=%dms, no sample", p.addr, deltaMsec)
		return
	}

	txBytes, rxBytes, err := c.drv.StaBytes(p.addr)
	if err != nil {
		log.Errorf("could not get data stats for %s: %v", p.addr, err)
		c.stats.IncDriverErrors()
		p.dataRate = 0
		return
	}

	deltaBits := (uint64(rxBytes-p.lastRxBytes) + uint64(txBytes-p.lastTxBytes)) * 8

	p.lastRxBytes = rxBytes
	p.lastTxBytes = txBytes
	p.lastQueryTime = now
	p.dataRate = deltaBits * 1000 / uint64(deltaMsec)
	c.stats.UpdateDataRate(p.dataRate)

	log.Tracef("%s: rate=%d bps, dtime=%dms, tx=%d, rx=%d", p.addr, p.dataRate, deltaMsec, txBytes, rxBytes)
}
