// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// BucketBinding is one named bucket entry under the top-level buckets: map.
type BucketBinding struct {
	Name      string
	Bucket    string
	AccountID string
	Endpoint  string
	Region    string
	Profile   string
}

var Config Type

func init() {
	_, _ = Load()
}

func Load(cfgFilePath ...string) (Type, error) {
	path, err := getConfigPath()
	if err != nil {
		return Type{}, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, err
	}

	Config = Type{
		Source: path,
		Data:   data}

	return Config, nil
}

// get traverses the map using a dotted key path
func (cfg *Type) get(kspec string) (any, error) {
	if len(cfg.Data) == 0 {
		_, _ = Load(cfg.Source)
	}

	candidateKeys := []string{"", kspec}
	if cfg.Namespace != "" {
		candidateKeys[0] = cfg.Namespace + "." + kspec
	}

	for _, key := range candidateKeys {
		keys := strings.Split(key, ".")
		var current interface{} = Config.Data

		success := true
		for _, key := range keys {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[key]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

func GetString(key string, defaultValue ...string) (string, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

func GetInt(key string, defaultValue ...int) (int, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil && Config.Namespace != "" {
		val, err = Config.get(Config.Namespace + "." + key)
	}

	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	// YAML numbers may be unmarshaled as int/float64 depending on content.
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

// BucketBindings returns every entry of the top-level buckets: map in no
// particular order; callers sort as needed. An absent buckets: map is an
// empty result, not an error.
func BucketBindings() ([]BucketBinding, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	raw, err := Config.get("buckets")
	if err != nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("buckets must be a map of binding names")
	}

	bindings := make([]BucketBinding, 0, len(m))
	for name, entry := range m {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("bucket binding %s must be a map", name)
		}
		bindings = append(bindings, BucketBinding{
			Name:      name,
			Bucket:    str(fields, "bucket"),
			AccountID: str(fields, "account_id"),
			Endpoint:  str(fields, "endpoint"),
			Region:    str(fields, "region"),
			Profile:   str(fields, "profile"),
		})
	}
	return bindings, nil
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func getConfigPath() (string, error) {
	// EDGECTL_CFG pins the config file explicitly and wins over the
	// standard locations.
	if cfg := os.Getenv("EDGECTL_CFG"); cfg != "" {
		fileInfo, err := os.Stat(cfg)
		if err != nil {
			return "", fmt.Errorf("config file not found: %s", cfg)
		}
		if fileInfo.IsDir() {
			return "", fmt.Errorf("EDGECTL_CFG points to a directory: %s", cfg)
		}
		log.Debugf("using config file: %s", cfg)
		return cfg, nil
	}

	var candidates []string = []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		file := filepath.Join(c, "edgectl.yaml")
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", fmt.Errorf("no config file found in standard locations")
}
