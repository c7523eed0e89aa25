package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// MinScanLength is the shortest string a Scanner inspects.
const MinScanLength = 8

// Finding is one detected secret.
type Finding struct {
	RuleID   string // Gitleaks rule ID, e.g. "github-pat"
	RuleDesc string
	Line     int
	StartCol int
	EndCol   int
	Secret   string
}

// Scanner detects secrets with the default Gitleaks configuration. Building
// the detector compiles several hundred patterns, so create one Scanner and
// share it. It is safe for concurrent use.
type Scanner struct {
	mu       sync.Mutex
	detector *detect.Detector
}

// NewScanner builds a Scanner. allowlist may be nil.
func NewScanner(allowlist *Allowlist) (*Scanner, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("creating gitleaks detector: %w", err)
	}
	if !allowlist.Empty() {
		if err := applyAllowlist(&detector.Config, allowlist); err != nil {
			return nil, err
		}
	}
	return &Scanner{detector: detector}, nil
}

// Scan returns the secrets found in text.
func (s *Scanner) Scan(text string) []Finding {
	if len(text) < MinScanLength {
		return nil
	}

	s.mu.Lock()
	found := s.detector.DetectString(text)
	s.mu.Unlock()

	findings := make([]Finding, 0, len(found))
	for _, f := range found {
		if f.Secret == "" {
			continue
		}
		findings = append(findings, Finding{
			RuleID:   f.RuleID,
			RuleDesc: f.Description,
			Line:     f.StartLine,
			StartCol: f.StartColumn,
			EndCol:   f.EndColumn,
			Secret:   f.Secret,
		})
	}
	return findings
}

// Scrub replaces every secret in text with a [REDACTED:rule-id] marker and
// returns the findings it acted on.
func (s *Scanner) Scrub(text string) (string, []Finding) {
	findings := s.Scan(text)
	if len(findings) == 0 {
		return text, nil
	}

	// Longest first so a secret containing another is replaced whole.
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Secret) > len(sorted[j].Secret)
	})
	for _, f := range sorted {
		text = strings.ReplaceAll(text, f.Secret, Marker(f.RuleID))
	}
	return text, findings
}

// Marker returns the replacement written for a secret found by ruleID.
func Marker(ruleID string) string {
	return "[REDACTED:" + ruleID + "]"
}

// applyAllowlist adds allowlist patterns to the Gitleaks config as one
// global allowlist entry.
func applyAllowlist(cfg *gitleaksConfig.Config, allowlist *Allowlist) error {
	global := &gitleaksConfig.Allowlist{
		Description: "reqlog allowlist",
		StopWords:   allowlist.StopWords,
	}
	for _, pattern := range allowlist.Regexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRegex, pattern, err)
		}
		global.Regexes = append(global.Regexes, (*gitleaksRegexp.Regexp)(re))
	}
	cfg.Allowlists = append(cfg.Allowlists, global)
	return nil
}
