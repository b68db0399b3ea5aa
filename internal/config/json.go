// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk shape of the JSON configuration file.
type StructuredJSONConfig struct {
	Remote struct {
		URL              string   `json:"url"`
		APIKey           string   `json:"api_key"`
		APIKeyCollection string   `json:"api_key_collection"`
		RequestTimeout   Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Sync struct {
		LocalConfig         string   `json:"local_config"`
		Collections         []string `json:"collections"`
		PriorityCollections []string `json:"priority_collections"`
		Limit               int      `json:"limit"`
		LocalAuthUserData   string   `json:"local_auth_user_data"`
	} `json:"sync,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Files struct {
			Driver   string `json:"driver"`
			MediaDir string `json:"media_dir"`
			S3       struct {
				Bucket    string `json:"bucket"`
				Prefix    string `json:"prefix"`
				Region    string `json:"region"`
				Endpoint  string `json:"endpoint"`
				AccessKey string `json:"access_key"`
				SecretKey string `json:"secret_key"`
			} `json:"s3,omitempty"`
		} `json:"files,omitempty"`
	} `json:"storage,omitempty"`

	Log struct {
		Level  string `json:"level"`
		Format string `json:"format"`
		File   string `json:"file"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	if jsonCfg.Sync.Limit < 0 {
		return nil, fmt.Errorf("%w: limit %d in %s", ErrInvalidLimit, jsonCfg.Sync.Limit, jsonFilePath)
	}

	s3 := jsonCfg.Storage.Files.S3
	cfg := &StructuredConfig{
		Remote: Remote{
			URL:              jsonCfg.Remote.URL,
			APIKey:           jsonCfg.Remote.APIKey,
			APIKeyCollection: jsonCfg.Remote.APIKeyCollection,
			RequestTimeout:   time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Sync: Sync{
			LocalConfigPath:     jsonCfg.Sync.LocalConfig,
			Collections:         jsonCfg.Sync.Collections,
			PriorityCollections: jsonCfg.Sync.PriorityCollections,
			Limit:               jsonCfg.Sync.Limit,
			LocalAuthUserData:   jsonCfg.Sync.LocalAuthUserData,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Files: Files{
				Driver:   jsonCfg.Storage.Files.Driver,
				MediaDir: jsonCfg.Storage.Files.MediaDir,
				S3: S3{
					Bucket:    s3.Bucket,
					Prefix:    s3.Prefix,
					Region:    s3.Region,
					Endpoint:  s3.Endpoint,
					AccessKey: s3.AccessKey,
					SecretKey: s3.SecretKey,
				},
			},
		},
		Log: Log{
			Level:  jsonCfg.Log.Level,
			Format: jsonCfg.Log.Format,
			File:   jsonCfg.Log.File,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
