package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by TargetFromEnv.
const (
	EnvBucket         = "AWS_S3_BUCKET"
	EnvPrefix         = "AWS_S3_PREFIX"
	EnvDistributionID = "CLOUDFRONT_DIST_ID"
)

// Target describes where a deploy publishes to. It is assembled at deploy
// time from the environment (with config defaults as fallback) and never
// persisted.
type Target struct {
	Bucket         string
	Prefix         string
	DistributionID string
}

// TargetFromEnv builds a deploy target from the environment, falling back to
// the config deploy section for values the environment does not provide.
// The bucket is required. A non-empty prefix is normalized to end with "/"
// so keys become "<prefix><relative path>".
func TargetFromEnv(cfg *Config) (Target, error) {
	var defaults DeployConfig
	if cfg != nil && cfg.Deploy != nil {
		defaults = *cfg.Deploy
	}

	t := Target{
		Bucket:         firstNonEmpty(os.Getenv(EnvBucket), defaults.Bucket),
		Prefix:         firstNonEmpty(os.Getenv(EnvPrefix), defaults.Prefix),
		DistributionID: firstNonEmpty(os.Getenv(EnvDistributionID), defaults.DistributionID),
	}

	if t.Bucket == "" {
		return Target{}, fmt.Errorf("%s environment variable is required", EnvBucket)
	}
	t.Prefix = NormalizePrefix(t.Prefix)
	return t, nil
}

// NormalizePrefix ensures a non-empty prefix ends with exactly one "/" and
// does not start with one (S3 keys have no leading slash).
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/"
}

// Key returns the object key for a file at relPath (slash-separated).
func (t Target) Key(relPath string) string {
	return t.Prefix + relPath
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
