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
	"testing"

	"pgregory.net/rapid"
)

// fakeDriver accepts everything and reports ever-growing byte counters
type fakeDriver struct {
	bytes uint32
}

func (d *fakeDriver) Connect(MAC) error              { return nil }
func (d *fakeDriver) Disconnect(MAC) error           { return nil }
func (d *fakeDriver) SendDiscovery(MAC) error        { return nil }
func (d *fakeDriver) RSSI(MAC) int                   { return -60 }
func (d *fakeDriver) MonitorTraffic(MAC, bool) error { return nil }
func (d *fakeDriver) StaBytes(MAC) (uint32, uint32, error) {
	d.bytes += 1000
	return d.bytes, d.bytes, nil
}

// TestRegistryInvariants drives random operation sequences against the
// controller and checks that the registry counters stay consistent with
// the registry itself, and that only connection events ever produce
// incoming peers.
func TestRegistryInvariants(t *testing.T) {
	addrs := []MAC{peerA, peerB, peerC}

	rapid.Check(t, func(rt *rapid.T) {
		c, err := New(testConfig(), &fakeDriver{}, nil)
		if err != nil {
			rt.Fatalf("creating controller: %v", err)
		}
		defer c.Close()

		createdByStart := map[MAC]bool{}

		steps := rapid.IntRange(1, 100).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			addr := addrs[rapid.IntRange(0, len(addrs)-1).Draw(rt, "addr")]
			switch rapid.IntRange(0, 8).Draw(rt, "op") {
			case 0:
				_, known := c.peers[addr]
				if err := c.Start(addr); err == nil && !known {
					createdByStart[addr] = true
				}
			case 1:
				c.Stop(addr)
			case 2:
				// the driver only reports a link up for peers it was asked
				// to connect, or for remote-initiated links
				if p := c.peers[addr]; p == nil || !p.connected {
					if _, known := c.peers[addr]; !known {
						createdByStart[addr] = false
					}
					c.Connected(addr)
				}
			case 3:
				c.Disconnected(addr)
			case 4:
				c.DiscoveryResponse(addr, rapid.IntRange(-90, -40).Draw(rt, "rssi"))
			case 5:
				c.fastConnectTick()
			case 6:
				c.slowConnectTick()
			case 7:
				c.dataTeardownTick()
			case 8:
				c.rssiTeardownTick()
			}

			if int(c.peerCount) != len(c.peers) {
				rt.Fatalf("peerCount %d but %d peers in registry", c.peerCount, len(c.peers))
			}
			connected := 0
			for _, p := range c.peers {
				if p.connected {
					connected++
				}
				if p.incoming && createdByStart[p.addr] {
					rt.Fatalf("peer %s created by Start is marked incoming", p.addr)
				}
			}
			if int(c.connPeerCount) != connected {
				rt.Fatalf("connPeerCount %d but %d connected peers in registry", c.connPeerCount, connected)
			}
		}
	})
}
