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
	"fmt"
	"net"
)

// RSSIFailure is returned by Driver.RSSI when the driver could not report
// a value. It is below any sane teardown threshold, so comparisons treat
// it as a very bad sample.
const RSSIFailure = -102

// MAC is a 6-byte station address, comparable so it can key the registry.
type MAC [6]byte

func (m MAC) String() string {
	return net.HardwareAddr(m[:]).String()
}

// ParseMAC parses a textual representation of a 6-byte station address
func ParseMAC(s string) (MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MAC{}, err
	}
	if len(hw) != 6 {
		return MAC{}, fmt.Errorf("%q is not a 6-byte address", s)
	}
	var m MAC
	copy(m[:], hw)
	return m, nil
}

// Driver is the capability set the controller needs from the radio side.
// Connected/Disconnected/DiscoveryResponse events that result from these
// calls must be delivered asynchronously, never from within the call itself.
type Driver interface {
	// Connect requests TDLS setup to addr. The link coming up is reported
	// back via the Connected entry point.
	Connect(addr MAC) error
	// Disconnect requests TDLS teardown. The driver will eventually report
	// the link going down via the Disconnected entry point.
	Disconnect(addr MAC) error
	// SendDiscovery sends a TDLS discovery request to addr.
	SendDiscovery(addr MAC) error
	// RSSI returns the last RSSI of a connected peer in dBm, or RSSIFailure.
	RSSI(addr MAC) int
	// MonitorTraffic adds or removes addr from driver-side byte accounting.
	MonitorTraffic(addr MAC, add bool) error
	// StaBytes returns cumulative tx/rx byte counters for addr. The
	// counters are 32 bits wide and wrap.
	StaBytes(addr MAC) (txBytes, rxBytes uint32, err error)
}
