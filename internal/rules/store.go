package rules

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
)

// Rule is one optimization rule from the rule base. Thresholds are
// stored in Watt-hours, exactly as in the source file; the suggestion
// engine converts to kWh at comparison time so the unit logic lives in
// one place.
type Rule struct {
	ID          string  `yaml:"id" validate:"required"`
	Description string  `yaml:"description" validate:"required"`
	Impact      string  `yaml:"impact" validate:"required,oneof=High Medium Low"`
	Category    string  `yaml:"category" validate:"required"`
	ThresholdWh float64 `yaml:"threshold_wh" validate:"gt=0"`
	AppliesTo   string  `yaml:"applies_to" validate:"required,oneof=PeakHours ShoulderHours OffPeakHours"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules" validate:"required,min=1,dive"`
}

// snapshot is an immutable loaded rule base with a slot index built at
// load time. Readers share it without locking once published.
type snapshot struct {
	rules  []Rule
	bySlot map[string][]int
}

// Store holds the loaded rule base. States: unloaded -> loaded on a
// successful Load, unloaded -> unavailable on a failed one. A reload
// replaces the snapshot atomically; a failed reload keeps the previous
// snapshot so readers never observe a half-loaded store.
type Store struct {
	log *logger.Logger

	mu      sync.RWMutex
	snap    *snapshot
	loadErr error
}

func NewStore(log *logger.Logger) *Store {
	return &Store{log: log}
}

// Load parses and validates the rule file at path. It never panics;
// any failure is recorded and the store degrades instead of crashing
// the caller.
func (s *Store) Load(path string) error {
	snap, err := parseFile(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.snap == nil {
			s.loadErr = err
		}
		s.log.Error("rule base load failed", "path", path, "error", err)
		return err
	}

	s.snap = snap
	s.loadErr = nil
	s.log.Info("rule base loaded", "path", path, "rules", len(snap.rules))
	return nil
}

func parseFile(path string) (*snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("validate rule file: %w", err)
	}

	snap := &snapshot{
		rules:  file.Rules,
		bySlot: make(map[string][]int),
	}
	for i, r := range file.Rules {
		snap.bySlot[r.AppliesTo] = append(snap.bySlot[r.AppliesTo], i)
	}
	return snap, nil
}

// Available reports whether a rule base has been loaded.
func (s *Store) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

// LoadError returns the reason the store is unavailable, or nil.
func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// RulesForSlot returns the rules applying to the given slot in file
// order. It returns an empty slice when the store is unavailable or no
// rule targets the slot; callers decide how to degrade.
func (s *Store) RulesForSlot(slotName string) []Rule {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	if snap == nil {
		return nil
	}

	idxs := snap.bySlot[slotName]
	out := make([]Rule, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, snap.rules[i])
	}
	return out
}

// Len returns the number of loaded rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return 0
	}
	return len(s.snap.rules)
}
