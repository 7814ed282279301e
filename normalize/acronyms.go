package normalize

import (
	"fmt"
	"strings"
	"unicode"
)

// defaultServiceAcronyms maps managing-role sheet names to the acronyms
// embedded in question IDs.
var defaultServiceAcronyms = map[string]string{
	"Operational Assurance":        "OA",
	"Cyber Risk Architecture":      "CRA",
	"CREM Platform & Automation":   "CPA",
	"IAM Engineering":              "IAM",
	"Security Threat Testing":      "STT",
	"Technical Security Solutions": "TSS",
	"Risk Engineering":             "RE",
	"CREM Incident Response":       "CIR",
	"Security Risk Management":     "SRM",
	"IAM Operations":               "IAMO",
}

// AcronymTable is an immutable bidirectional service-name/acronym map.
// Acronym uniqueness is validated at construction: two services resolving
// to the same acronym would corrupt composite question IDs.
type AcronymTable struct {
	byService map[string]string
	byAcronym map[string]string
}

// NewAcronymTable builds and validates an acronym table. Every acronym
// must be unique, uppercase, and alphanumeric.
func NewAcronymTable(services map[string]string) (*AcronymTable, error) {
	t := &AcronymTable{
		byService: make(map[string]string, len(services)),
		byAcronym: make(map[string]string, len(services)),
	}
	for service, acronym := range services {
		if acronym == "" {
			return nil, fmt.Errorf("service %q: empty acronym", service)
		}
		if acronym != strings.ToUpper(acronym) || !isAlnum(acronym) {
			return nil, fmt.Errorf("service %q: acronym %q must be uppercase alphanumeric", service, acronym)
		}
		if prev, ok := t.byAcronym[acronym]; ok {
			return nil, fmt.Errorf("acronym %q assigned to both %q and %q", acronym, prev, service)
		}
		t.byService[service] = acronym
		t.byAcronym[acronym] = service
	}
	return t, nil
}

// DefaultAcronyms is the built-in service table.
var DefaultAcronyms = mustAcronymTable(defaultServiceAcronyms)

func mustAcronymTable(services map[string]string) *AcronymTable {
	t, err := NewAcronymTable(services)
	if err != nil {
		panic(err)
	}
	return t
}

// Acronym returns the acronym for a service name, or the name itself when
// unmapped.
func (t *AcronymTable) Acronym(service string) string {
	if acr, ok := t.byService[service]; ok {
		return acr
	}
	return service
}

// Service returns the service name an acronym stands for, or the acronym
// itself when unmapped.
func (t *AcronymTable) Service(acronym string) string {
	if svc, ok := t.byAcronym[acronym]; ok {
		return svc
	}
	return acronym
}

// ForID resolves a service or sheet name to the token used inside
// composite question IDs: the mapped acronym when one exists, otherwise
// the name upper-cased with every non-alphanumeric character stripped.
// Unmapped names are not truncated; a long token beats a colliding one.
func (t *AcronymTable) ForID(service string) string {
	acronym := t.Acronym(service)
	var b strings.Builder
	for _, r := range strings.ToUpper(acronym) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
