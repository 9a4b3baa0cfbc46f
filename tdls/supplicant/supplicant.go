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

// Package supplicant glues the TDLS auto-mode controller to a supplicant.
// It owns no policy: it gates entry points on the master flag, adapts the
// supplicant's TDLS operations and the radio driver into the controller's
// capability set, and serves the monitoring endpoint.
package supplicant

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/facebook/wifi/tdls/automode"
)

// ErrDisabled is returned by Start when auto-mode is not enabled
var ErrDisabled = errors.New("TDLS auto-mode is disabled")

// TDLS is the protocol side of the capability set, owned by the supplicant
type TDLS interface {
	// StartLink initiates TDLS setup with addr
	StartLink(addr automode.MAC) error
	// TeardownLink tears an established TDLS link down
	TeardownLink(addr automode.MAC) error
	// SendDiscoveryRequest sends a TDLS discovery request to addr
	SendDiscoveryRequest(addr automode.MAC) error
}

// Driver is the radio side of the capability set
type Driver interface {
	// StationRSSI returns the last RSSI of addr in dBm, or
	// automode.RSSIFailure when the driver cannot report one
	StationRSSI(addr automode.MAC) int
	// MonitorTraffic adds or removes addr from driver byte accounting
	MonitorTraffic(addr automode.MAC, add bool) error
	// StationBytes returns cumulative tx/rx byte counters for addr
	StationBytes(addr automode.MAC) (txBytes, rxBytes uint32, err error)
}

// capabilities adapts TDLS + Driver into the controller capability set
type capabilities struct {
	tdls TDLS
	drv  Driver
}

func (c capabilities) Connect(addr automode.MAC) error {
	return c.tdls.StartLink(addr)
}

func (c capabilities) Disconnect(addr automode.MAC) error {
	return c.tdls.TeardownLink(addr)
}

func (c capabilities) SendDiscovery(addr automode.MAC) error {
	return c.tdls.SendDiscoveryRequest(addr)
}

func (c capabilities) RSSI(addr automode.MAC) int {
	return c.drv.StationRSSI(addr)
}

func (c capabilities) MonitorTraffic(addr automode.MAC, add bool) error {
	return c.drv.MonitorTraffic(addr, add)
}

func (c capabilities) StaBytes(addr automode.MAC) (uint32, uint32, error) {
	return c.drv.StationBytes(addr)
}

// Supplicant is the glue between association state and the controller
type Supplicant struct {
	cfg   *Config
	ctrl  *automode.Controller
	stats *automode.JSONStats
}

// New creates the glue. With auto-mode disabled in the config the returned
// Supplicant carries no controller and every entry point returns
// immediately.
func New(cfg *Config, tdls TDLS, drv Driver) (*Supplicant, error) {
	if !cfg.Enabled {
		log.Info("TDLS auto-mode not enabled")
		return &Supplicant{cfg: cfg}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := automode.NewJSONStats()
	ctrl, err := automode.New(&cfg.Auto, capabilities{tdls: tdls, drv: drv}, stats)
	if err != nil {
		return nil, err
	}
	return &Supplicant{cfg: cfg, ctrl: ctrl, stats: stats}, nil
}

// enabled is the master gate: config flag and controller presence
func (s *Supplicant) enabled() bool {
	return s != nil && s.cfg.Enabled && s.ctrl != nil
}

// Start adds addr as a candidate TDLS peer
func (s *Supplicant) Start(addr automode.MAC) error {
	if !s.enabled() {
		return ErrDisabled
	}
	return s.ctrl.Start(addr)
}

// Stop removes addr from tracking
func (s *Supplicant) Stop(addr automode.MAC) {
	if !s.enabled() {
		return
	}
	s.ctrl.Stop(addr)
}

// PeerConnected forwards a TDLS link-up event
func (s *Supplicant) PeerConnected(addr automode.MAC) {
	if !s.enabled() {
		return
	}
	s.ctrl.Connected(addr)
}

// PeerDisconnected forwards a TDLS link-down event
func (s *Supplicant) PeerDisconnected(addr automode.MAC) {
	if !s.enabled() {
		return
	}
	s.ctrl.Disconnected(addr)
}

// DiscoveryResponse forwards a TDLS discovery response and its RSSI
func (s *Supplicant) DiscoveryResponse(addr automode.MAC, rssi int) {
	if !s.enabled() {
		return
	}
	s.ctrl.DiscoveryResponse(addr, rssi)
}

// RemovePeers drops all tracked peers, optionally tearing down links
func (s *Supplicant) RemovePeers(killActiveLinks bool) {
	if !s.enabled() {
		return
	}
	s.ctrl.RemovePeers(killActiveLinks)
}

// Close shuts the controller down. Safe to call more than once and on a
// disabled Supplicant.
func (s *Supplicant) Close() {
	if !s.enabled() {
		return
	}
	s.ctrl.Close()
}

// Run serves the monitoring endpoint and collects runtime stats. Cancelling
// ctx stops the stats collector but not the monitoring server, so Run
// returns only once the server fails. With auto-mode disabled it returns
// right away.
func (s *Supplicant) Run(ctx context.Context) error {
	if !s.enabled() {
		return nil
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.stats.Start(s.cfg.MonitoringPort)
	})
	eg.Go(func() error {
		sysstats := &automode.SysStats{}
		collect := func() {
			stats, err := sysstats.CollectRuntimeStats(s.cfg.MetricsAggregationWindow)
			if err != nil {
				log.Warningf("failed to get system metrics %v", err)
				return
			}
			for k, v := range stats {
				s.stats.SetCounter("tdls."+k, int64(v))
			}
		}
		collect()
		ticker := time.NewTicker(s.cfg.MetricsAggregationWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				collect()
			}
		}
	})
	return eg.Wait()
}
