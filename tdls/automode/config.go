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
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the thresholds and cadences of the auto-mode heuristics,
// fixed at controller creation.
type Config struct {
	RSSIConnectThreshold  int           `yaml:"rssi_connect_threshold"`  // dBm; discovery responses at or below it are ignored
	DataConnectThreshold  uint64        `yaml:"data_connect_threshold"`  // bps; candidates slower than this are not discovered or connected
	FastConnectPeriod     time.Duration `yaml:"fast_connect_period"`     // tick of the fast connect cycle
	SlowConnectPeriod     time.Duration `yaml:"slow_connect_period"`     // tick of the slow connect cycle, must be longer than the fast one
	DataTeardownThreshold uint64        `yaml:"data_teardown_threshold"` // bps; connected peers slower than this are torn down
	DataTeardownPeriod    time.Duration `yaml:"data_teardown_period"`    // tick of the traffic teardown check
	RSSITeardownThreshold int           `yaml:"rssi_teardown_threshold"` // dBm; connected peers below it accumulate bad samples
	RSSITeardownPeriod    time.Duration `yaml:"rssi_teardown_period"`    // tick of the RSSI teardown check
	RSSITeardownCount     uint          `yaml:"rssi_teardown_count"`     // more consecutive bad samples than this tear the link down
	MaxConnectedPeers     uint          `yaml:"max_connected_peers"`     // upper bound on simultaneously connected peers
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		RSSIConnectThreshold:  -65,
		DataConnectThreshold:  50000,
		FastConnectPeriod:     time.Second,
		SlowConnectPeriod:     30 * time.Second,
		DataTeardownThreshold: 10000,
		DataTeardownPeriod:    10 * time.Second,
		RSSITeardownThreshold: -75,
		RSSITeardownPeriod:    5 * time.Second,
		RSSITeardownCount:     3,
		MaxConnectedPeers:     2,
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.FastConnectPeriod <= 0 {
		return fmt.Errorf("fast_connect_period must be greater than zero")
	}
	if c.SlowConnectPeriod <= 0 {
		return fmt.Errorf("slow_connect_period must be greater than zero")
	}
	if c.FastConnectPeriod >= c.SlowConnectPeriod {
		return fmt.Errorf("fast connect period (%v) must be shorter than slow (%v)", c.FastConnectPeriod, c.SlowConnectPeriod)
	}
	if c.DataTeardownPeriod <= 0 {
		return fmt.Errorf("data_teardown_period must be greater than zero")
	}
	if c.RSSITeardownPeriod <= 0 {
		return fmt.Errorf("rssi_teardown_period must be greater than zero")
	}
	if c.RSSIConnectThreshold >= 0 {
		return fmt.Errorf("rssi_connect_threshold must be a negative dBm value")
	}
	if c.RSSITeardownThreshold >= 0 {
		return fmt.Errorf("rssi_teardown_threshold must be a negative dBm value")
	}
	if c.RSSITeardownThreshold <= RSSIFailure {
		return fmt.Errorf("rssi_teardown_threshold must be above the %d failure sentinel", RSSIFailure)
	}
	return nil
}

// ReadConfig reads config and unmarshals it from yaml into Config
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
