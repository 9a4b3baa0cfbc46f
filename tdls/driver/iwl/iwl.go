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

// Package iwl talks to the Intel wireless driver through its private
// command interface: the radio half of the TDLS auto-mode capability set
// (per-peer traffic accounting, byte counters, station RSSI).
package iwl

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/jsimonetti/rtnetlink"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/facebook/wifi/tdls/automode"
)

// private commands understood by the driver
const (
	cmdPeerCacheAdd   = "TDLS_PEER_CACHE_ADD"
	cmdPeerCacheDel   = "TDLS_PEER_CACHE_DEL"
	cmdPeerCacheQuery = "TDLS_PEER_CACHE_QUERY"
	cmdStationRSSI    = "GET_STA_RSSI"
)

const (
	// SIOCDEVPRIVATE; the private command ioctl sits one above it
	siocDevPrivate = 0x89f0

	privCmdSize = 512

	// consecutive command failures before the driver is reported hung
	maxSequentialErrors = 4
)

// mirrors the android_wifi_priv_cmd layout the driver expects
type privCmd struct {
	buf      *byte
	usedLen  int32
	totalLen int32
}

type ifreq struct {
	name [unix.IFNAMSIZ]byte
	data unsafe.Pointer
	pad  [16]byte
}

// Driver issues private commands to one wireless interface
type Driver struct {
	iface   string
	ifindex uint32
	fd      int

	mu        sync.Mutex
	drvErrors int

	// OnHang, when set, is invoked once consecutive command failures
	// exceed maxSequentialErrors; the error counter then restarts
	OnHang func()
}

// New resolves iface and opens the command socket
func New(iface string) (*Driver, error) {
	conn, err := rtnetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("dialing rtnetlink: %w", err)
	}
	defer conn.Close()

	links, err := conn.Link.List()
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	var ifindex uint32
	found := false
	for _, link := range links {
		if link.Attributes != nil && link.Attributes.Name == iface {
			ifindex = link.Index
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no such interface %q", iface)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening command socket: %w", err)
	}

	log.Debugf("iwl: using interface %s (ifindex %d)", iface, ifindex)
	return &Driver{iface: iface, ifindex: ifindex, fd: fd}, nil
}

// Close releases the command socket
func (d *Driver) Close() error {
	return unix.Close(d.fd)
}

func (d *Driver) hangError() {
	d.mu.Lock()
	d.drvErrors++
	hung := d.drvErrors > maxSequentialErrors
	if hung {
		d.drvErrors = 0
	}
	d.mu.Unlock()
	if hung {
		log.Errorf("iwl: %s reporting HANGED", d.iface)
		if d.OnHang != nil {
			d.OnHang()
		}
	}
}

func (d *Driver) clearErrors() {
	d.mu.Lock()
	d.drvErrors = 0
	d.mu.Unlock()
}

// run issues one private command and returns the driver's reply
func (d *Driver) run(cmd string) (string, error) {
	buf := make([]byte, privCmdSize)
	copy(buf, cmd)
	pc := privCmd{buf: &buf[0], usedLen: int32(len(cmd) + 1), totalLen: int32(len(buf))}

	var ifr ifreq
	copy(ifr.name[:], d.iface)
	ifr.data = unsafe.Pointer(&pc)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), siocDevPrivate+1, uintptr(unsafe.Pointer(&ifr)))
	runtime.KeepAlive(&pc)
	runtime.KeepAlive(buf)
	if errno != 0 {
		d.hangError()
		return "", fmt.Errorf("private command %q on %s: %w", cmd, d.iface, errno)
	}
	d.clearErrors()

	if nul := bytes.IndexByte(buf, 0); nul >= 0 {
		buf = buf[:nul]
	}
	return string(buf), nil
}

// MonitorTraffic adds or removes addr from the driver peer cache used for
// byte accounting
func (d *Driver) MonitorTraffic(addr automode.MAC, add bool) error {
	cmd := cmdPeerCacheDel
	if add {
		cmd = cmdPeerCacheAdd
	}
	_, err := d.run(fmt.Sprintf("%s %s", cmd, addr))
	return err
}

// StationBytes queries the peer cache for cumulative tx/rx byte counters
func (d *Driver) StationBytes(addr automode.MAC) (uint32, uint32, error) {
	out, err := d.run(fmt.Sprintf("%s %s", cmdPeerCacheQuery, addr))
	if err != nil {
		return 0, 0, err
	}
	return parseStaBytes(out)
}

// StationRSSI returns the last RSSI the driver saw for addr, or the
// failure sentinel
func (d *Driver) StationRSSI(addr automode.MAC) int {
	out, err := d.run(fmt.Sprintf("%s %s", cmdStationRSSI, addr))
	if err != nil {
		return automode.RSSIFailure
	}
	rssi, err := parseRSSI(out)
	if err != nil {
		log.Debugf("iwl: bad RSSI reply for %s: %v", addr, err)
		return automode.RSSIFailure
	}
	return rssi
}

// parseStaBytes parses a "tx rx" decimal pair from a peer cache query reply
func parseStaBytes(out string) (uint32, uint32, error) {
	var txBytes, rxBytes uint32
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%d %d", &txBytes, &rxBytes); err != nil {
		return 0, 0, fmt.Errorf("parsing %q: %w", out, err)
	}
	return txBytes, rxBytes, nil
}

// parseRSSI parses a dBm value from an RSSI reply
func parseRSSI(out string) (int, error) {
	var rssi int
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%d", &rssi); err != nil {
		return 0, fmt.Errorf("parsing %q: %w", out, err)
	}
	return rssi, nil
}
