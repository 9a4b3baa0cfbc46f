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

// Package automode implements heuristics based initiation and termination
// of TDLS links. It uses RSSI and traffic thresholds to decide when it is
// worthwhile for the HW to maintain a direct link with a given peer.
//
// When an external application adds a peer as a candidate, the controller
// sends it discovery requests and records the RSSI of discovery responses.
// If the RSSI is above threshold a TDLS connection is set up. While a peer
// is connected its RSSI and traffic are continuously monitored, and the
// link is torn down when either falls below threshold; the peer then
// becomes a candidate again. When a peer is added or disconnected a fast
// connection cycle allows quick initial connection and reconnection after
// a spurious disconnect; peers that don't respond within that window move
// to a slow cycle that captures RSSI and traffic changes over time.
package automode

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// a peer stays on the fast schedule while its fast connect attempts
	// do not exceed this count, then moves to the slow connect cycle
	maxFastConnAttempts = 20

	// minimal time between data rate samples
	minSampleTimeDiff = 100 * time.Millisecond
)

// ErrClosed is returned by Start after the controller has been closed
var ErrClosed = errors.New("auto-mode controller is closed")

// Controller owns the registry of tracked peers and runs the four
// periodic tasks of the auto-mode heuristics. Entry points and timer
// callbacks serialize on the controller mutex.
type Controller struct {
	sync.Mutex

	cfg   *Config
	drv   Driver
	stats StatsServer

	peers         map[MAC]*peer
	peerCount     uint
	connPeerCount uint

	fastTimer *time.Timer
	slowTimer *time.Timer
	dataTimer *time.Timer
	rssiTimer *time.Timer

	closed bool

	now func() time.Time
}

// New creates a Controller. The stats server may be nil, in which case
// counters are kept internally but not served anywhere.
func New(cfg *Config, drv Driver, stats StatsServer) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if drv == nil {
		return nil, fmt.Errorf("no driver")
	}
	if stats == nil {
		stats = NewStats()
	}
	c := &Controller{
		cfg:   cfg,
		drv:   drv,
		stats: stats,
		peers: map[MAC]*peer{},
		now:   time.Now,
	}
	log.Info("TDLS auto-mode initialized")
	return c, nil
}

// arm cancels any pending instance of the handler and schedules a new one.
// Callers hold the controller mutex.
func (c *Controller) arm(t **time.Timer, period time.Duration, tick func()) {
	if *t != nil {
		(*t).Stop()
	}
	*t = time.AfterFunc(period, tick)
}

func (c *Controller) cancel(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// Start adds addr as a candidate peer. Adding an existing peer is a no-op.
func (c *Controller) Start(addr MAC) error {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return ErrClosed
	}

	if _, ok := c.peers[addr]; ok {
		log.Debugf("existing peer %s", addr)
		return nil
	}

	p, err := c.addPeer(addr)
	if err != nil {
		return err
	}

	c.stats.SetPeerStats(p.stat())
	log.Infof("starting auto-mode for %s, total peers: %d", addr, c.peerCount)
	return nil
}

// addPeer enables driver traffic accounting for addr and inserts it into
// the registry. Lock held.
func (c *Controller) addPeer(addr MAC) (*peer, error) {
	// the peer might already be known to the driver from before a
	// supplicant restart, so remove it before adding it
	_ = c.drv.MonitorTraffic(addr, false)
	if err := c.drv.MonitorTraffic(addr, true); err != nil {
		c.stats.IncDriverErrors()
		return nil, fmt.Errorf("adding %s to traffic accounting: %w", addr, err)
	}

	p := &peer{addr: addr}
	c.peers[addr] = p
	c.peerCount++
	c.stats.SetPeersTotal(int(c.peerCount))

	// restart the fast connect cycle whenever a peer is added
	c.arm(&c.fastTimer, c.cfg.FastConnectPeriod, c.fastConnectTick)

	// the slow cycle starts with the first peer and keeps itself alive
	// for as long as any peer is tracked
	if c.peerCount == 1 {
		c.arm(&c.slowTimer, c.cfg.SlowConnectPeriod, c.slowConnectTick)
	}
	return p, nil
}

// Stop removes addr from tracking, tearing down its link if there is one.
func (c *Controller) Stop(addr MAC) {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}
	c.stop(addr)
}

func (c *Controller) stop(addr MAC) {
	p, ok := c.peers[addr]
	if !ok {
		log.Errorf("could not find peer %s to stop auto-mode", addr)
		return
	}

	log.Infof("stopping auto-mode for %s, total peers: %d", addr, c.peerCount)

	if p.connected {
		// The remote end may still want the link and will set it up again.
		// Clear the incoming flag before requesting the teardown so the
		// teardown event for this peer cannot re-remove it through the
		// incoming-peer path; the event itself will find the peer already
		// gone and do nothing.
		p.incoming = false
		if err := c.drv.Disconnect(p.addr); err != nil {
			log.Errorf("disconnecting %s: %v", p.addr, err)
		}
		p.connected = false
		c.connPeerCount--
		c.stats.SetPeersConnected(int(c.connPeerCount))
	}

	c.freePeer(p)

	// remove connect timers when the last peer leaves
	if c.peerCount == 0 {
		c.cancel(&c.fastTimer)
		c.cancel(&c.slowTimer)
	}
}

// freePeer releases the driver accounting entry and drops p from the
// registry. Lock held.
func (c *Controller) freePeer(p *peer) {
	if err := c.drv.MonitorTraffic(p.addr, false); err != nil {
		log.Debugf("removing %s from traffic accounting: %v", p.addr, err)
	}
	delete(c.peers, p.addr)
	c.peerCount--
	c.stats.SetPeersTotal(int(c.peerCount))
	c.stats.RemovePeerStats(p.addr.String())
}

// RemovePeers drops every peer from tracking. With killActiveLinks the
// established links are torn down as well, otherwise they are left up and
// only forgotten. Tolerates being called on a nil or closed controller.
func (c *Controller) RemovePeers(killActiveLinks bool) {
	if c == nil {
		return
	}
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}
	c.removePeers(killActiveLinks)
}

func (c *Controller) removePeers(killActiveLinks bool) {
	for addr, p := range c.peers {
		log.Debugf("removing peer %s", addr)
		if !killActiveLinks && p.connected {
			p.connected = false
			c.connPeerCount--
			c.stats.SetPeersConnected(int(c.connPeerCount))
		}
		c.stop(addr)
	}
}

// Close removes all peers without touching established links and stops
// every timer. No handler fires after Close returns.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}
	c.removePeers(false)
	c.closed = true
	c.cancel(&c.fastTimer)
	c.cancel(&c.slowTimer)
	c.cancel(&c.dataTimer)
	c.cancel(&c.rssiTimer)
	log.Info("TDLS auto-mode closed")
}

// Connected handles a TDLS link coming up with addr, whether we initiated
// it or the remote side did. An unknown addr is tracked as an incoming
// peer and ceases to be tracked once it disconnects.
func (c *Controller) Connected(addr MAC) {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}

	p, ok := c.peers[addr]
	if !ok {
		var err error
		p, err = c.addPeer(addr)
		if err != nil {
			log.Errorf("tracking incoming peer %s: %v", addr, err)
			return
		}
		p.incoming = true
	}

	first := false
	if !p.connected {
		p.connected = true
		p.lowRSSIVals = 0
		c.connPeerCount++
		first = c.connPeerCount == 1
		c.stats.SetPeersConnected(int(c.connPeerCount))
	}

	// Seed the byte counters so the next rate computation has a baseline,
	// and push the idle check a full period away: the switch to TDLS can
	// momentarily stall the peer's traffic, and an idle check right on
	// connect might otherwise wrongly disconnect the peer.
	c.sampleRate(p)
	c.arm(&c.dataTimer, c.cfg.DataTeardownPeriod, c.dataTeardownTick)

	c.stats.SetPeerStats(p.stat())
	log.Debugf("peer %s connected", addr)

	// RSSI teardown polling starts with the first connected peer
	if first {
		c.arm(&c.rssiTimer, c.cfg.RSSITeardownPeriod, c.rssiTeardownTick)
	}
}

// Disconnected handles a TDLS link with addr going down. Outgoing peers
// return to the fast connect cycle, incoming peers are forgotten.
func (c *Controller) Disconnected(addr MAC) {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}

	p, ok := c.peers[addr]
	if !ok {
		log.Debugf("disconnect event for unknown peer %s", addr)
		c.stats.IncSpurious()
		return
	}

	kind := "outgoing"
	if p.incoming {
		kind = "incoming"
	}
	log.Debugf("%s peer %s disconnected", kind, addr)

	if p.connected {
		p.connected = false
		c.connPeerCount--
		c.stats.SetPeersConnected(int(c.connPeerCount))
	}

	if p.incoming {
		// don't track incoming peers after disconnection
		c.stop(addr)
		return
	}

	// immediately try a fast reconnect of the outgoing peer
	p.lowRSSIVals = 0
	p.fastAttempts = 0
	c.stats.SetPeerStats(p.stat())
	c.arm(&c.fastTimer, c.cfg.FastConnectPeriod, c.fastConnectTick)
}

// DiscoveryResponse handles a discovery response from addr with the RSSI
// it was received at, and connects the peer when it clears the RSSI,
// traffic and connected-peer-count gates.
func (c *Controller) DiscoveryResponse(addr MAC, rssi int) {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}

	log.Debugf("discovery response from %s, RSSI %d", addr, rssi)
	c.stats.IncRXDiscoveryResponse()

	p, ok := c.peers[addr]
	if !ok {
		return
	}

	p.rssi = rssi

	if p.connected {
		log.Errorf("discovery response from connected peer %s", addr)
		c.stats.IncSpurious()
		return
	}

	if rssi <= c.cfg.RSSIConnectThreshold {
		return
	}

	// make sure an unsolicited discovery response won't game the system
	c.sampleRate(p)
	c.stats.SetPeerStats(p.stat())
	if p.dataRate < c.cfg.DataConnectThreshold {
		return
	}

	// don't start connecting if we are at the connected peer limit
	if c.connPeerCount >= c.cfg.MaxConnectedPeers {
		log.Debugf("not connecting %s: connected peer limit reached", addr)
		return
	}

	c.stats.IncConnectRequests()
	err := c.drv.Connect(addr)
	log.Debugf("connecting %s: err=%v", addr, err)
}

// fastConnectTick runs the fast connect cycle: disconnected peers that
// still have fast attempts left get a discovery request if their traffic
// clears the connect threshold. Re-arms itself while any peer remains in
// the fast phase.
func (c *Controller) fastConnectTick() {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}

	peerInFastConnect := false
	for _, p := range c.peers {
		if p.connected {
			continue
		}
		if p.fastAttempts > maxFastConnAttempts {
			continue
		}

		log.Debugf("fast connect to %s, retry %d", p.addr, p.fastAttempts)
		p.fastAttempts++
		peerInFastConnect = true

		// avoid discovery if peer traffic is not fast enough
		c.sampleRate(p)
		c.stats.SetPeerStats(p.stat())
		if p.dataRate < c.cfg.DataConnectThreshold {
			continue
		}

		c.stats.IncTXDiscovery()
		if err := c.drv.SendDiscovery(p.addr); err != nil {
			log.Errorf("discovery request to %s: %v", p.addr, err)
		}
	}

	if !peerInFastConnect {
		return
	}
	c.arm(&c.fastTimer, c.cfg.FastConnectPeriod, c.fastConnectTick)
}

// slowConnectTick runs the slow connect cycle for peers that exhausted
// their fast attempts. Re-arms itself while any peer is tracked.
func (c *Controller) slowConnectTick() {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}

	for _, p := range c.peers {
		if p.connected {
			continue
		}
		// the fast connect cycle still owns this peer
		if p.fastAttempts <= maxFastConnAttempts {
			continue
		}

		c.sampleRate(p)
		c.stats.SetPeerStats(p.stat())
		if p.dataRate < c.cfg.DataConnectThreshold {
			continue
		}

		log.Debugf("slow connect: sending discovery to %s", p.addr)
		c.stats.IncTXDiscovery()
		if err := c.drv.SendDiscovery(p.addr); err != nil {
			log.Errorf("discovery request to %s: %v", p.addr, err)
		}
	}

	if c.peerCount == 0 {
		return
	}
	c.arm(&c.slowTimer, c.cfg.SlowConnectPeriod, c.slowConnectTick)
}

// dataTeardownTick tears down connected peers whose traffic dropped below
// the teardown threshold. Re-arms itself while any peer is connected.
func (c *Controller) dataTeardownTick() {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}

	for _, p := range c.peers {
		if !p.connected {
			continue
		}

		c.sampleRate(p)
		c.stats.SetPeerStats(p.stat())
		if p.dataRate >= c.cfg.DataTeardownThreshold {
			continue
		}

		log.Debugf("removing peer %s because of low data rate %d bps", p.addr, p.dataRate)
		c.stats.IncDataTeardown()
		// this might remove an incoming peer
		if err := c.drv.Disconnect(p.addr); err != nil {
			log.Errorf("disconnecting %s: %v", p.addr, err)
		}
	}

	if c.connPeerCount == 0 {
		return
	}
	c.arm(&c.dataTimer, c.cfg.DataTeardownPeriod, c.dataTeardownTick)
}

// rssiTeardownTick polls the RSSI of connected peers and tears down a peer
// after more consecutive bad samples than the configured count. Re-arms
// itself while any peer is connected.
func (c *Controller) rssiTeardownTick() {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return
	}

	for _, p := range c.peers {
		if !p.connected {
			continue
		}

		p.rssi = c.drv.RSSI(p.addr)
		log.Tracef("last RSSI of connected peer %s: %d", p.addr, p.rssi)
		if p.rssi >= c.cfg.RSSITeardownThreshold {
			p.lowRSSIVals = 0
			c.stats.SetPeerStats(p.stat())
			continue
		}

		p.lowRSSIVals++
		log.Debugf("bad RSSI %d for peer %s for %d consecutive times", p.rssi, p.addr, p.lowRSSIVals)
		if p.lowRSSIVals <= c.cfg.RSSITeardownCount {
			c.stats.SetPeerStats(p.stat())
			continue
		}

		log.Debugf("removing peer %s because of low RSSI %d", p.addr, p.rssi)
		c.stats.IncRSSITeardown()
		// this might remove an incoming peer
		if err := c.drv.Disconnect(p.addr); err != nil {
			log.Errorf("disconnecting %s: %v", p.addr, err)
		}
		p.lowRSSIVals = 0
		c.stats.SetPeerStats(p.stat())
	}

	if c.connPeerCount == 0 {
		return
	}
	c.arm(&c.rssiTimer, c.cfg.RSSITeardownPeriod, c.rssiTeardownTick)
}
