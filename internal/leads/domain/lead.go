// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"strconv"
	"strings"
	"time"

	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

// Lead is the tenant-scoped lead record enriched by workflow output and
// enrichment providers.
type Lead struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Name          string
	Email         *string
	Phone         *string
	Company       *string
	JobTitle      *string
	Industry      *string
	CompanySize   *int
	EmailVerified *bool
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FieldPatch carries incoming enriched values. A nil field means "absent":
// it never overwrites an existing value.
type FieldPatch struct {
	Name          *string
	Email         *string
	Phone         *string
	Company       *string
	JobTitle      *string
	Industry      *string
	CompanySize   *int
	EmailVerified *bool
}

// IsEmpty reports whether the patch carries no values at all.
func (p FieldPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Company == nil &&
		p.JobTitle == nil && p.Industry == nil && p.CompanySize == nil && p.EmailVerified == nil
}

// PatchFromMap builds a FieldPatch from a loosely-typed output-data map.
// Empty strings count as absent. Numeric fields accept JSON numbers or
// numeric strings; emailVerified accepts bools or "true"/"false".
func PatchFromMap(data map[string]any) FieldPatch {
	if data == nil {
		return FieldPatch{}
	}
	return FieldPatch{
		Name:          stringField(data, "name"),
		Email:         stringField(data, "email"),
		Phone:         stringField(data, "phone"),
		Company:       stringField(data, "company"),
		JobTitle:      stringField(data, "jobTitle"),
		Industry:      stringField(data, "industry"),
		CompanySize:   intField(data, "companySize"),
		EmailVerified: boolField(data, "emailVerified"),
	}
}

// Merge applies the patch onto the lead. Only non-nil incoming values
// overwrite; existing non-null fields are never nulled out. Incoming phone
// values are normalized to E.164. Returns true if any field changed.
func Merge(lead *Lead, patch FieldPatch) bool {
	changed := false

	if patch.Name != nil && *patch.Name != lead.Name {
		lead.Name = *patch.Name
		changed = true
	}
	if mergeString(&lead.Email, patch.Email) {
		changed = true
	}
	if patch.Phone != nil {
		normalized := phone.NormalizeE164(*patch.Phone)
		if mergeString(&lead.Phone, &normalized) {
			changed = true
		}
	}
	if mergeString(&lead.Company, patch.Company) {
		changed = true
	}
	if mergeString(&lead.JobTitle, patch.JobTitle) {
		changed = true
	}
	if mergeString(&lead.Industry, patch.Industry) {
		changed = true
	}
	if patch.CompanySize != nil && (lead.CompanySize == nil || *lead.CompanySize != *patch.CompanySize) {
		size := *patch.CompanySize
		lead.CompanySize = &size
		changed = true
	}
	if patch.EmailVerified != nil && (lead.EmailVerified == nil || *lead.EmailVerified != *patch.EmailVerified) {
		verified := *patch.EmailVerified
		lead.EmailVerified = &verified
		changed = true
	}

	return changed
}

func mergeString(target **string, incoming *string) bool {
	if incoming == nil || *incoming == "" {
		return false
	}
	if *target != nil && **target == *incoming {
		return false
	}
	value := *incoming
	*target = &value
	return true
}

func stringField(data map[string]any, key string) *string {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil
	}
	text, ok := raw.(string)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func intField(data map[string]any, key string) *int {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil
	}
	switch typed := raw.(type) {
	case float64:
		value := int(typed)
		return &value
	case int:
		value := typed
		return &value
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

func boolField(data map[string]any, key string) *bool {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil
	}
	switch typed := raw.(type) {
	case bool:
		value := typed
		return &value
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}
