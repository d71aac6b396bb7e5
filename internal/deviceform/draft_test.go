// ABOUTME: Tests for draft validation and payload mapping
// ABOUTME: Covers required fields, price rules, and id references

package deviceform

import (
	"errors"
	"testing"
)

func completeDraft() Draft {
	return Draft{
		Code:          "PC-001",
		BrandID:       "1",
		ModelID:       "2",
		Serial:        "SN-123",
		Specification: "16GB RAM",
		Type:          "Laptop",
		Price:         "1500000",
		StatusID:      "3",
		LocationID:    "4",
		UserID:        "42",
		UserEmail:     "ana@pti-sa.com.co",
	}
}

func TestValidate_CompleteDraft(t *testing.T) {
	if err := Validate(completeDraft(), false); err != nil {
		t.Fatalf("expected complete draft to pass, got %v", err)
	}
}

func TestValidate_PendingUserResolution(t *testing.T) {
	err := Validate(completeDraft(), true)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Message != MsgWaitUserValidation {
		t.Errorf("expected %q, got %q", MsgWaitUserValidation, verr.Message)
	}
}

func TestValidate_UnresolvedUser(t *testing.T) {
	d := completeDraft()
	d.UserID = ""
	err := Validate(d, false)
	if err == nil || err.Error() != MsgSelectValidUser {
		t.Fatalf("expected %q, got %v", MsgSelectValidUser, err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{FieldCode, "Code is required"},
		{FieldBrand, "Brand is required"},
		{FieldModel, "Model is required"},
		{FieldSerial, "Serial is required"},
		{FieldSpecification, "Specification is required"},
		{FieldType, "Type is required"},
		{FieldUserEmail, "User email is required"},
		{FieldStatus, "Status is required"},
		{FieldPrice, MsgPriceRequired},
		{FieldLocation, "Location is required"},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			d := completeDraft()
			d.set(tt.field, "   ")
			err := Validate(d, false)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
			if verr.Message != tt.want {
				t.Errorf("expected %q, got %q", tt.want, verr.Message)
			}
		})
	}
}

func TestValidate_NoteIsOptional(t *testing.T) {
	d := completeDraft()
	d.Note = ""
	if err := Validate(d, false); err != nil {
		t.Fatalf("expected empty note to pass, got %v", err)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantMsg string
	}{
		{"zero", "0", 0, ""},
		{"integer", "100000", 100000, ""},
		{"decimal", "99.5", 99.5, ""},
		{"surrounding spaces", " 12 ", 12, ""},
		{"empty", "", 0, MsgPriceRequired},
		{"blank", "   ", 0, MsgPriceRequired},
		{"not a number", "abc", 0, MsgPriceNotNumeric},
		{"infinity", "Inf", 0, MsgPriceNotNumeric},
		{"negative", "-5", 0, MsgPriceNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
				return
			}
			if err == nil || err.Error() != tt.wantMsg {
				t.Errorf("expected %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestPayload_ReferencesByID(t *testing.T) {
	p, err := Payload(completeDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Brand.ID != 1 || p.Model.ID != 2 || p.Status.ID != 3 || p.Location.ID != 4 {
		t.Errorf("unexpected refs: %+v", p)
	}
	if p.User.ID != 42 {
		t.Errorf("expected user id 42, got %d", p.User.ID)
	}
	if p.Price != 1500000 {
		t.Errorf("expected price 1500000, got %v", p.Price)
	}
}

func TestPayload_NonNumericSelection(t *testing.T) {
	d := completeDraft()
	d.BrandID = "dell"
	_, err := Payload(d)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != FieldBrand {
		t.Fatalf("expected brand selection error, got %v", err)
	}
}
