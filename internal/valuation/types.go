// Package valuation builds prediction requests from form input and renders
// the predicted price.
package valuation

import (
	"fmt"
	"strconv"
	"strings"
)

// FormSnapshot is the current state of a form, keyed by field name. It is the
// only thing the extraction functions see, keeping them independent of any UI.
type FormSnapshot map[string]string

// CarAttributes is the wire payload of POST /predict.
type CarAttributes struct {
	Name         string   `json:"name"`
	Year         int      `json:"year"`
	KmDriven     int      `json:"km_driven"`
	Fuel         string   `json:"fuel"`
	SellerType   string   `json:"seller_type"`
	Transmission string   `json:"transmission"`
	Owner        string   `json:"owner"`
	Mileage      *float64 `json:"mileage"`
	Engine       *int     `json:"engine"`
	MaxPower     *float64 `json:"max_power"`
	Seats        int      `json:"seats"`
}

// CustomerAttributes is the customer/inspection portion of the forms.
type CustomerAttributes struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	InspectionDate string `json:"inspection_date"`
}

// ValidationError reports the first required field found blank. The caller is
// expected to focus that field rather than issue any network call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("please fill in %s", e.Field)
}

// Required fields for each form, in display order.
var (
	carRequiredFields      = []string{"model", "year", "km_driven", "fuel", "seller_type", "transmission", "owner", "seats"}
	customerRequiredFields = []string{"customer_name", "customer_email", "customer_phone", "address", "inspection_date"}
)

func (s FormSnapshot) blank(field string) bool {
	return strings.TrimSpace(s[field]) == ""
}

// ValidateCarSnapshot checks the prediction form's required fields. The car
// name may come from either the model or the brand field.
func ValidateCarSnapshot(s FormSnapshot) *ValidationError {
	for _, field := range carRequiredFields {
		if field == "model" && !s.blank("brand") {
			continue
		}
		if s.blank(field) {
			return &ValidationError{Field: field}
		}
	}
	return nil
}

// ValidateCustomerSnapshot checks the inspection form's required fields.
func ValidateCustomerSnapshot(s FormSnapshot) *ValidationError {
	for _, field := range customerRequiredFields {
		if s.blank(field) {
			return &ValidationError{Field: field}
		}
	}
	return nil
}

// CarFromSnapshot maps form state to a prediction payload. Sparse input never
// fails: missing or unparsable required fields take fixed defaults and
// missing optional numerics become null on the wire.
func CarFromSnapshot(s FormSnapshot) CarAttributes {
	name := strings.TrimSpace(s["model"])
	if name == "" {
		name = strings.TrimSpace(s["brand"])
	}
	return CarAttributes{
		Name:         name,
		Year:         intOrDefault(s["year"], 2015),
		KmDriven:     intOrDefault(s["km_driven"], 0),
		Fuel:         stringOrDefault(s["fuel"], "Petrol"),
		SellerType:   stringOrDefault(s["seller_type"], "Individual"),
		Transmission: stringOrDefault(s["transmission"], "Manual"),
		Owner:        stringOrDefault(s["owner"], "First Owner"),
		Mileage:      optionalFloat(s["mileage"]),
		Engine:       optionalInt(s["engine"]),
		MaxPower:     optionalFloat(s["max_power"]),
		Seats:        intOrDefault(s["seats"], 5),
	}
}

// CustomerFromSnapshot maps form state to customer/inspection details.
// Missing fields map to empty strings; validation is a separate concern.
func CustomerFromSnapshot(s FormSnapshot) CustomerAttributes {
	return CustomerAttributes{
		Name:           strings.TrimSpace(s["customer_name"]),
		Email:          strings.TrimSpace(s["customer_email"]),
		Phone:          strings.TrimSpace(s["customer_phone"]),
		Address:        strings.TrimSpace(s["address"]),
		InspectionDate: strings.TrimSpace(s["inspection_date"]),
	}
}

func stringOrDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func intOrDefault(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func optionalInt(v string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func optionalFloat(v string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return &f
}
