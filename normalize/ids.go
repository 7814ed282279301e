// Package normalize canonicalizes raw risk, control, and question
// identifiers and resolves service names to the acronyms used inside
// composite question IDs.
package normalize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/strataguard/riskdata/model"
)

// Policy selects the failure behavior for unrecognized identifier formats.
type Policy int

const (
	// Strict rejects unrecognized formats.
	Strict Policy = iota
	// Lenient makes a best effort: digit extraction for risk IDs,
	// pass-through for control and question IDs.
	Lenient
)

// Canonical ID patterns per entity type. Question IDs accept both the
// prefixed NN.N form and the bare QN form.
var idPatterns = map[model.EntityType]*regexp.Regexp{
	model.EntityTypeRisk:     regexp.MustCompile(`^AIR\.(\d+)$`),
	model.EntityTypeControl:  regexp.MustCompile(`^AI[A-Z]{2,4}\.(\d+)$`),
	model.EntityTypeQuestion: regexp.MustCompile(`^[A-Z]{2,6}\d+\.\d+$|^Q\d+$`),
}

var (
	riskDotted     = regexp.MustCompile(`^AIR\.(\d+)`)
	riskBare       = regexp.MustCompile(`^AIR(\d+)`)
	controlFormat  = regexp.MustCompile(`^AI[A-Z]{2,4}\.\d+$`)
	questionFull   = regexp.MustCompile(`^[A-Z]{2,6}\d+\.\d+$`)
	questionQ      = regexp.MustCompile(`^Q\d+$`)
	questionDotted = regexp.MustCompile(`^\d+\.\d+$`)
	questionPrefix = regexp.MustCompile(`^([A-Z]{2,6})`)
	digits         = regexp.MustCompile(`\d+`)
)

// Normalizer canonicalizes raw identifiers. Normalization is idempotent:
// feeding a canonical ID back in returns it unchanged.
type Normalizer struct {
	policy Policy
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer with the given policy. A nil logger
// falls back to slog.Default().
func NewNormalizer(policy Policy, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{policy: policy, logger: logger}
}

// RiskID normalizes a raw risk reference to AIR.NNN (number padded to
// three digits). Accepted inputs: AIR.<n>, AIR<n>, or a bare integer.
// Anything else is rejected under Strict; under Lenient the first run of
// digits is used. Note that "AIR.0" canonicalizes to "AIR.000", a valid
// zero-indexed ID, not a missing one.
func (n *Normalizer) RiskID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if m := riskDotted.FindStringSubmatch(raw); m != nil {
		return padRisk(m[1]), true
	}
	if m := riskBare.FindStringSubmatch(raw); m != nil {
		return padRisk(m[1]), true
	}
	if isDigits(raw) {
		return padRisk(raw), true
	}

	if n.policy == Strict {
		n.logger.Warn("invalid risk ID format", slog.String("id", raw))
		return "", false
	}
	if m := digits.FindString(raw); m != "" {
		return padRisk(m), true
	}
	return "", false
}

// ControlID normalizes a raw control reference. Canonical controls match
// AI[A-Z]{2,4}.<n> and pass through unchanged; anything else is rejected
// under Strict and passed through under Lenient.
func (n *Normalizer) ControlID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if controlFormat.MatchString(raw) {
		return raw, true
	}
	if n.policy == Strict {
		n.logger.Warn("invalid control ID format", slog.String("id", raw))
		return "", false
	}
	return raw, true
}

// QuestionID normalizes a raw question reference. Canonical forms
// (<PREFIX><n>.<n> and Q<n>) pass through; <n>.<n> gains a Q prefix;
// otherwise two extracted numbers rebuild <prefix><n>.<n> (Q<n>.<n> when
// no prefix is recoverable) and a single number becomes Q<n>.
func (n *Normalizer) QuestionID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if questionFull.MatchString(raw) || questionQ.MatchString(raw) {
		return raw, true
	}
	if questionDotted.MatchString(raw) {
		return "Q" + raw, true
	}

	nums := digits.FindAllString(raw, -1)
	switch {
	case len(nums) >= 2:
		if m := questionPrefix.FindStringSubmatch(raw); m != nil {
			return fmt.Sprintf("%s%s.%s", m[1], nums[0], nums[1]), true
		}
		return fmt.Sprintf("Q%s.%s", nums[0], nums[1]), true
	case len(nums) == 1:
		return "Q" + nums[0], true
	}

	if n.policy == Strict {
		n.logger.Warn("invalid question ID format", slog.String("id", raw))
		return "", false
	}
	return raw, true
}

// ValidateIDFormat reports whether id matches the canonical pattern for
// its entity type.
func (n *Normalizer) ValidateIDFormat(id string, entityType model.EntityType) bool {
	re, ok := idPatterns[entityType]
	if !ok {
		n.logger.Warn("unknown entity type", slog.String("entity_type", string(entityType)))
		return false
	}
	return re.MatchString(id)
}

// ExtractIDNumber returns the numeric component of a canonical risk or
// control ID.
func (n *Normalizer) ExtractIDNumber(id string, entityType model.EntityType) (int, bool) {
	re, ok := idPatterns[entityType]
	if !ok {
		return 0, false
	}
	m := re.FindStringSubmatch(id)
	if m == nil || len(m) < 2 || m[1] == "" {
		return 0, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return num, true
}

func padRisk(num string) string {
	v, err := strconv.Atoi(num)
	if err != nil {
		return "AIR." + num
	}
	return fmt.Sprintf("AIR.%03d", v)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
