package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	LaneIneligibleWarn   = "warn"
	LaneIneligibleReject = "reject"

	CalcFallbackSkip = "skip"
	CalcFallbackFlat = "flat"
)

// RatingPolicy holds the operator-tunable rating behaviors.
type RatingPolicy struct {
	LaneIneligible string `mapstructure:"laneIneligible"`
	CalcFallback   string `mapstructure:"calcFallback"`
}

func DefaultRatingPolicy() RatingPolicy {
	return RatingPolicy{
		LaneIneligible: LaneIneligibleWarn,
		CalcFallback:   CalcFallbackSkip,
	}
}

type PolicyHolder struct {
	current atomic.Value // holds RatingPolicy
}

// NewPolicyHolder reads rating.yml (or RATING_POLICY_FILE) and keeps it
// reloaded on change. A missing file falls back to defaults.
func NewPolicyHolder(cfg Config) (*PolicyHolder, error) {
	v := viper.New()

	if path := strings.TrimSpace(cfg.Rating.PolicyFile); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("rating")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/freightrate")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FREIGHTRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRatingPolicy()
	v.SetDefault("rating.laneIneligible", defaults.LaneIneligible)
	v.SetDefault("rating.calcFallback", defaults.CalcFallback)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	policy, err := decodePolicy(v)
	if err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(policy)

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodePolicy(v)
			if err != nil {
				log.Printf("[rating-policy] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[rating-policy] reloaded from %s", filepath.Base(e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticPolicyHolder returns a holder that never reloads.
func NewStaticPolicyHolder(policy RatingPolicy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *PolicyHolder) Get() RatingPolicy {
	return h.current.Load().(RatingPolicy)
}

func decodePolicy(v *viper.Viper) (RatingPolicy, error) {
	var policy RatingPolicy
	if err := v.UnmarshalKey("rating", &policy); err != nil {
		return RatingPolicy{}, err
	}
	policy.LaneIneligible = strings.ToLower(strings.TrimSpace(policy.LaneIneligible))
	policy.CalcFallback = strings.ToLower(strings.TrimSpace(policy.CalcFallback))
	if err := validatePolicy(policy); err != nil {
		return RatingPolicy{}, err
	}
	return policy, nil
}

func validatePolicy(policy RatingPolicy) error {
	switch policy.LaneIneligible {
	case LaneIneligibleWarn, LaneIneligibleReject:
	default:
		return fmt.Errorf("rating.laneIneligible must be warn or reject, got %q", policy.LaneIneligible)
	}
	switch policy.CalcFallback {
	case CalcFallbackSkip, CalcFallbackFlat:
	default:
		return fmt.Errorf("rating.calcFallback must be skip or flat, got %q", policy.CalcFallback)
	}
	return nil
}
