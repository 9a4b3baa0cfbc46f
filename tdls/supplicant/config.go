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

package supplicant

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/facebook/wifi/tdls/automode"
)

// Config specifies supplicant glue options
type Config struct {
	Enabled                  bool            `yaml:"enabled"`
	MonitoringPort           int             `yaml:"monitoring_port"`
	MetricsAggregationWindow time.Duration   `yaml:"metrics_aggregation_window"`
	Auto                     automode.Config `yaml:"auto"`
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		MonitoringPort:           4280,
		MetricsAggregationWindow: time.Duration(60) * time.Second,
		Auto:                     *automode.DefaultConfig(),
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.MonitoringPort < 0 {
		return fmt.Errorf("monitoring_port must be 0 or positive")
	}
	if c.MetricsAggregationWindow <= 0 {
		return fmt.Errorf("metrics_aggregation_window must be greater than zero")
	}
	return c.Auto.Validate()
}

// ReadConfig reads config from the file
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
