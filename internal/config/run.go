// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/remote"
	"github.com/tfctl/pkgdiff/internal/util"
)

// DefaultWorkDirName is the scratch directory used when work_dir is unset.
const DefaultWorkDirName = "temp"

var requiredKeys = []string{"dev_zip", "test_zip", "output_zip"}

// RunConfig is the resolved, immutable description of one diff run. Local
// paths are absolute; s3:// locations are kept verbatim.
type RunConfig struct {
	Source         string
	DevArchive     string
	TestArchive    string
	OutputArchive  string
	WorkDir        string
	KeepTemp       bool
	IgnorePatterns []string
	SkipDevOnly    bool
	AWSProfile     string
	AWSRegion      string
	S3Endpoint     string
}

// UsesS3 reports whether any archive location is an S3 URI.
func (rc RunConfig) UsesS3() bool {
	return remote.IsS3URI(rc.DevArchive) || remote.IsS3URI(rc.TestArchive) || remote.IsS3URI(rc.OutputArchive)
}

// Overrides are command-line values applied on top of the file. Nil
// pointers and empty strings leave the file value alone; Ignore is appended.
type Overrides struct {
	WorkDir     string
	KeepTemp    *bool
	SkipDevOnly *bool
	Ignore      []string
}

// fileConfig mirrors the document keys.
type fileConfig struct {
	DevZip         string   `mapstructure:"dev_zip"`
	TestZip        string   `mapstructure:"test_zip"`
	OutputZip      string   `mapstructure:"output_zip"`
	WorkDir        string   `mapstructure:"work_dir"`
	KeepTemp       bool     `mapstructure:"keep_temp"`
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
	SkipDevOnly    bool     `mapstructure:"skip_dev_only"`
	AWSProfile     string   `mapstructure:"aws_profile"`
	AWSRegion      string   `mapstructure:"aws_region"`
	S3Endpoint     string   `mapstructure:"s3_endpoint"`
}

// LoadRunConfig reads the run configuration at path, applies ov and resolves
// every local path against the process working directory. Any problem is
// reported as a *failure.ConfigError.
func LoadRunConfig(path string, ov Overrides) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, &failure.ConfigError{Path: path, Cause: err}
	}
	return ParseRunConfig(data, path, ov, "")
}

// ParseRunConfig is LoadRunConfig on an in-memory document. source names the
// document in errors and selects YAML when it ends in .yaml or .yml. Relative
// paths resolve against base, or the working directory when base is empty.
func ParseRunConfig(data []byte, source string, ov Overrides, base string) (RunConfig, error) {
	raw, err := decodeDocument(data, source)
	if err != nil {
		return RunConfig{}, &failure.ConfigError{Path: source, Cause: err}
	}

	for _, key := range requiredKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			return RunConfig{}, &failure.ConfigError{Path: source, Key: key}
		}
	}

	var fc fileConfig
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   &fc,
	})
	if err != nil {
		return RunConfig{}, &failure.ConfigError{Path: source, Cause: err}
	}
	if err := dec.Decode(raw); err != nil {
		return RunConfig{}, &failure.ConfigError{Path: source, Cause: err}
	}
	for _, key := range md.Unused {
		log.Warnf("config %s: unknown key %q ignored", source, key)
	}

	values := map[string]string{"dev_zip": fc.DevZip, "test_zip": fc.TestZip, "output_zip": fc.OutputZip}
	for _, key := range requiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			return RunConfig{}, &failure.ConfigError{Path: source, Key: key, Cause: errors.New("must not be empty")}
		}
	}

	applyOverrides(&fc, ov)

	rc := RunConfig{
		Source:         source,
		KeepTemp:       fc.KeepTemp,
		IgnorePatterns: fc.IgnorePatterns,
		SkipDevOnly:    fc.SkipDevOnly,
		AWSProfile:     fc.AWSProfile,
		AWSRegion:      fc.AWSRegion,
		S3Endpoint:     fc.S3Endpoint,
	}

	if fc.WorkDir == "" {
		fc.WorkDir = DefaultWorkDirName
	}

	for _, p := range []struct {
		key string
		in  string
		out *string
	}{
		{"dev_zip", fc.DevZip, &rc.DevArchive},
		{"test_zip", fc.TestZip, &rc.TestArchive},
		{"output_zip", fc.OutputZip, &rc.OutputArchive},
		{"work_dir", fc.WorkDir, &rc.WorkDir},
	} {
		if remote.IsS3URI(p.in) {
			if p.key == "work_dir" {
				return RunConfig{}, &failure.ConfigError{Path: source, Key: p.key, Cause: errors.New("must be a local directory")}
			}
			*p.out = p.in
			continue
		}
		resolved, err := util.ExpandPath(p.in, base)
		if err != nil {
			return RunConfig{}, &failure.ConfigError{Path: source, Key: p.key, Cause: err}
		}
		*p.out = resolved
	}

	log.Debugf("run config: source=%s dev=%s test=%s out=%s work=%s keep=%t ignore=%v",
		source, rc.DevArchive, rc.TestArchive, rc.OutputArchive, rc.WorkDir, rc.KeepTemp, rc.IgnorePatterns)
	return rc, nil
}

func applyOverrides(fc *fileConfig, ov Overrides) {
	if ov.WorkDir != "" {
		fc.WorkDir = ov.WorkDir
	}
	if ov.KeepTemp != nil {
		fc.KeepTemp = *ov.KeepTemp
	}
	if ov.SkipDevOnly != nil {
		fc.SkipDevOnly = *ov.SkipDevOnly
	}
	if len(ov.Ignore) > 0 {
		fc.IgnorePatterns = append(append([]string{}, fc.IgnorePatterns...), ov.Ignore...)
	}
}

// decodeDocument turns the raw bytes into a key/value map. JSON is the
// default; .yaml and .yml sources are read as YAML.
func decodeDocument(data []byte, source string) (map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if raw == nil {
			return nil, errors.New("document is empty")
		}
		return raw, nil
	default:
		if !gjson.ValidBytes(data) {
			return nil, errors.New("invalid JSON")
		}
		doc := gjson.ParseBytes(data)
		if !doc.IsObject() {
			return nil, errors.New("top-level value must be an object")
		}
		raw, ok := doc.Value().(map[string]interface{})
		if !ok {
			return nil, errors.New("top-level value must be an object")
		}
		return raw, nil
	}
}
