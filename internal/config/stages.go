package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stage is a fixed segment of the 0-100 narrative progress axis.
type Stage struct {
	Key          string  `yaml:"key" json:"key"`
	Name         string  `yaml:"name" json:"name"`
	Color        string  `yaml:"color" json:"color"`
	PercentStart float64 `yaml:"percent_start" json:"percent_start"`
	PercentEnd   float64 `yaml:"percent_end" json:"percent_end"`
	Order        int     `yaml:"order" json:"order"`
}

func (s Stage) Width() float64 {
	return s.PercentEnd - s.PercentStart
}

// StageSet is kept sorted by Order.
type StageSet []Stage

func (s StageSet) sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Order < s[j].Order })
}

// Validate checks that the stages are well formed, contiguous and cover
// exactly [0,100).
func (s StageSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("at least one stage is required")
	}

	ordered := s.Sorted()

	keys := make(map[string]struct{})
	orders := make(map[int]struct{})
	for i, stage := range ordered {
		if strings.TrimSpace(stage.Key) == "" {
			return fmt.Errorf("stage %d key is required", i)
		}
		key := strings.ToLower(stage.Key)
		if _, exists := keys[key]; exists {
			return fmt.Errorf("duplicate stage key: %s", stage.Key)
		}
		keys[key] = struct{}{}
		if _, exists := orders[stage.Order]; exists {
			return fmt.Errorf("duplicate stage order: %d", stage.Order)
		}
		orders[stage.Order] = struct{}{}
		if stage.PercentStart >= stage.PercentEnd {
			return fmt.Errorf("stage %s: percent_start must be below percent_end", stage.Key)
		}
		if i == 0 && stage.PercentStart != 0 {
			return fmt.Errorf("stage %s must start at 0", stage.Key)
		}
		if i > 0 && stage.PercentStart != ordered[i-1].PercentEnd {
			return fmt.Errorf("stage %s does not continue stage %s", stage.Key, ordered[i-1].Key)
		}
	}
	if last := ordered[len(ordered)-1]; last.PercentEnd != 100 {
		return fmt.Errorf("stage %s must end at 100", last.Key)
	}

	return nil
}

// Sorted returns a copy ordered by Order.
func (s StageSet) Sorted() StageSet {
	out := make(StageSet, len(s))
	copy(out, s)
	out.sort()
	return out
}

func (s StageSet) ByKey(key string) (Stage, bool) {
	for _, stage := range s {
		if stage.Key == key {
			return stage, true
		}
	}
	return Stage{}, false
}

// Origin returns the first stage on the axis.
func (s StageSet) Origin() Stage {
	origin := s[0]
	for _, stage := range s[1:] {
		if stage.Order < origin.Order {
			origin = stage
		}
	}
	return origin
}

func (s StageSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, stage := range s {
		keys = append(keys, stage.Key)
	}
	return keys
}

const epochLayout = "2006-01-02"

// EpochTime parses the date that percentage 0 maps to.
func (t TimelineConfig) EpochTime() (time.Time, error) {
	epoch, err := time.Parse(epochLayout, t.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timeline epoch %q: %w", t.Epoch, err)
	}
	return epoch, nil
}
