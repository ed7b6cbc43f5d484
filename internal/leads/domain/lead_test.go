package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestMergeOverwritesWithNonNullIncomingOnly(t *testing.T) {
	lead := Lead{Name: "A", Company: nil}
	patch := FieldPatch{
		Name:     strPtr("B"),
		Company:  strPtr("Acme"),
		JobTitle: nil,
	}

	changed := Merge(&lead, patch)

	if !changed {
		t.Fatal("expected merge to report a change")
	}
	if lead.Name != "B" {
		t.Errorf("name = %q, want %q", lead.Name, "B")
	}
	if lead.Company == nil || *lead.Company != "Acme" {
		t.Errorf("company = %v, want Acme", lead.Company)
	}
	if lead.JobTitle != nil {
		t.Errorf("jobTitle = %v, want nil", lead.JobTitle)
	}
}

func TestMergeNeverNullsOutExistingValues(t *testing.T) {
	email := "john@x.com"
	lead := Lead{Name: "John", Email: &email}

	changed := Merge(&lead, FieldPatch{Email: nil, Name: nil})

	if changed {
		t.Error("expected no change for an empty patch")
	}
	if lead.Email == nil || *lead.Email != "john@x.com" {
		t.Errorf("email = %v, want john@x.com", lead.Email)
	}
}

func TestMergeIgnoresEmptyStrings(t *testing.T) {
	company := "Acme"
	lead := Lead{Name: "John", Company: &company}

	changed := Merge(&lead, FieldPatch{Company: strPtr("")})

	if changed {
		t.Error("empty incoming string must not count as a value")
	}
	if *lead.Company != "Acme" {
		t.Errorf("company = %q, want Acme", *lead.Company)
	}
}

func TestMergeReportsNoChangeForIdenticalValues(t *testing.T) {
	company := "Acme"
	lead := Lead{Name: "John", Company: &company}

	if changed := Merge(&lead, FieldPatch{Company: strPtr("Acme")}); changed {
		t.Error("identical incoming value must not count as a change")
	}
}

func TestPatchFromMap(t *testing.T) {
	patch := PatchFromMap(map[string]any{
		"name":          "John Doe",
		"email":         "john@x.com",
		"company":       "",
		"companySize":   float64(250),
		"emailVerified": true,
		"jobTitle":      nil,
	})

	if patch.Name == nil || *patch.Name != "John Doe" {
		t.Errorf("name = %v, want John Doe", patch.Name)
	}
	if patch.Email == nil || *patch.Email != "john@x.com" {
		t.Errorf("email = %v, want john@x.com", patch.Email)
	}
	if patch.Company != nil {
		t.Errorf("empty company should be absent, got %v", *patch.Company)
	}
	if patch.CompanySize == nil || *patch.CompanySize != 250 {
		t.Errorf("companySize = %v, want 250", patch.CompanySize)
	}
	if patch.EmailVerified == nil || !*patch.EmailVerified {
		t.Errorf("emailVerified = %v, want true", patch.EmailVerified)
	}
	if patch.JobTitle != nil {
		t.Errorf("jobTitle = %v, want nil", patch.JobTitle)
	}
}

func TestPatchFromMapCoercesStringNumbers(t *testing.T) {
	patch := PatchFromMap(map[string]any{
		"companySize":   "120",
		"emailVerified": "true",
	})

	if patch.CompanySize == nil || *patch.CompanySize != 120 {
		t.Errorf("companySize = %v, want 120", patch.CompanySize)
	}
	if patch.EmailVerified == nil || !*patch.EmailVerified {
		t.Errorf("emailVerified = %v, want true", patch.EmailVerified)
	}
}

func TestPatchFromMapNil(t *testing.T) {
	if patch := PatchFromMap(nil); !patch.IsEmpty() {
		t.Error("nil map should produce an empty patch")
	}
}
