// ABOUTME: Draft record and client-side validation for the device form
// ABOUTME: Checks required fields and price before anything reaches the network

package deviceform

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ptisa/inventory-admin/internal/client"
)

// Field names a draft attribute
type Field string

const (
	FieldCode          Field = "code"
	FieldBrand         Field = "brand"
	FieldModel         Field = "model"
	FieldSerial        Field = "serial"
	FieldSpecification Field = "specification"
	FieldType          Field = "type"
	FieldUserEmail     Field = "userEmail"
	FieldStatus        Field = "status"
	FieldPrice         Field = "price"
	FieldLocation      Field = "location"
	FieldNote          Field = "note"
)

// Fields lists every field in display order
var Fields = []Field{
	FieldCode, FieldBrand, FieldModel, FieldSerial, FieldSpecification,
	FieldType, FieldUserEmail, FieldStatus, FieldPrice, FieldLocation, FieldNote,
}

// requiredFields is checked in this order on submit
var requiredFields = []Field{
	FieldCode, FieldBrand, FieldModel, FieldSerial, FieldSpecification,
	FieldType, FieldUserEmail, FieldStatus, FieldPrice, FieldLocation,
}

var labels = map[Field]string{
	FieldCode:          "Code",
	FieldBrand:         "Brand",
	FieldModel:         "Model",
	FieldSerial:        "Serial",
	FieldSpecification: "Specification",
	FieldType:          "Type",
	FieldUserEmail:     "User email",
	FieldStatus:        "Status",
	FieldPrice:         "Price",
	FieldLocation:      "Location",
	FieldNote:          "Note",
}

// Label returns the user-facing name of a field
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// IsSelection reports whether the field holds a catalog identifier
func (f Field) IsSelection() bool {
	switch f {
	case FieldBrand, FieldModel, FieldStatus, FieldLocation:
		return true
	}
	return false
}

// User-facing rejection messages
const (
	MsgWaitUserValidation = "please wait for user validation"
	MsgSelectValidUser    = "select a valid user from suggestions"
	MsgPriceRequired      = "Price is required"
	MsgPriceNotNumeric    = "Price must be a number"
	MsgPriceNegative      = "Price cannot be negative"
	MsgSaveFailed         = "Could not save the device, please try again"
)

// ValidationError is a client-side rejection. It never reaches the network.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Draft is the in-progress state of the form. Catalog selections and the
// user are held as string identifiers, exactly as picked.
type Draft struct {
	Code          string
	BrandID       string
	ModelID       string
	Serial        string
	Specification string
	Type          string
	Note          string
	Price         string
	StatusID      string
	LocationID    string
	UserID        string
	UserEmail     string
}

// Get returns the raw value of a field
func (d *Draft) Get(f Field) string {
	switch f {
	case FieldCode:
		return d.Code
	case FieldBrand:
		return d.BrandID
	case FieldModel:
		return d.ModelID
	case FieldSerial:
		return d.Serial
	case FieldSpecification:
		return d.Specification
	case FieldType:
		return d.Type
	case FieldUserEmail:
		return d.UserEmail
	case FieldStatus:
		return d.StatusID
	case FieldPrice:
		return d.Price
	case FieldLocation:
		return d.LocationID
	case FieldNote:
		return d.Note
	}
	return ""
}

func (d *Draft) set(f Field, v string) {
	switch f {
	case FieldCode:
		d.Code = v
	case FieldBrand:
		d.BrandID = v
	case FieldModel:
		d.ModelID = v
	case FieldSerial:
		d.Serial = v
	case FieldSpecification:
		d.Specification = v
	case FieldType:
		d.Type = v
	case FieldUserEmail:
		d.UserEmail = v
	case FieldStatus:
		d.StatusID = v
	case FieldPrice:
		d.Price = v
	case FieldLocation:
		d.LocationID = v
	case FieldNote:
		d.Note = v
	}
}

// Validate runs the submit preconditions in order: pending user resolution,
// unresolved user, then required fields with price checked as a number.
func Validate(d Draft, loadingUserID bool) error {
	if loadingUserID {
		return &ValidationError{Field: FieldUserEmail, Message: MsgWaitUserValidation}
	}
	if strings.TrimSpace(d.UserID) == "" {
		return &ValidationError{Field: FieldUserEmail, Message: MsgSelectValidUser}
	}

	for _, f := range requiredFields {
		if f == FieldPrice {
			if _, err := ParsePrice(d.Price); err != nil {
				return err
			}
			continue
		}
		if strings.TrimSpace(d.Get(f)) == "" {
			return &ValidationError{Field: f, Message: fmt.Sprintf("%s is required", f.Label())}
		}
	}
	return nil
}

// ParsePrice accepts a present, numeric, non-negative price
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: FieldPrice, Message: MsgPriceRequired}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: FieldPrice, Message: MsgPriceNotNumeric}
	}
	if v < 0 {
		return 0, &ValidationError{Field: FieldPrice, Message: MsgPriceNegative}
	}
	return v, nil
}

// Payload maps a validated draft to the API body, turning every selection
// into an {id: n} reference
func Payload(d Draft) (*client.DevicePayload, error) {
	price, err := ParsePrice(d.Price)
	if err != nil {
		return nil, err
	}

	refs := make(map[Field]client.Ref, 5)
	for _, f := range []Field{FieldBrand, FieldModel, FieldStatus, FieldLocation, FieldUserEmail} {
		raw := d.Get(f)
		if f == FieldUserEmail {
			raw = d.UserID
		}
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || id <= 0 {
			return nil, &ValidationError{Field: f, Message: fmt.Sprintf("%s is not a valid selection", f.Label())}
		}
		refs[f] = client.Ref{ID: id}
	}

	return &client.DevicePayload{
		Code:          strings.TrimSpace(d.Code),
		Brand:         refs[FieldBrand],
		Model:         refs[FieldModel],
		Serial:        strings.TrimSpace(d.Serial),
		Specification: strings.TrimSpace(d.Specification),
		Type:          strings.TrimSpace(d.Type),
		Status:        refs[FieldStatus],
		Location:      refs[FieldLocation],
		User:          refs[FieldUserEmail],
		Price:         price,
		Note:          strings.TrimSpace(d.Note),
	}, nil
}
