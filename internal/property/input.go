package property

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input is the create/edit payload for a listing.
type Input struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   *string  `json:"description"`
	Location      *string  `json:"location"`
	PricePerNight float64  `json:"price_per_night" validate:"gte=0"`
	IsActive      bool     `json:"is_active"`
	MainImageURL  *string  `json:"main_image_url" validate:"omitempty,imageref"`
	ImageURLs     []string `json:"image_urls" validate:"dive,imageref"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("imageref", validImageRef); err != nil {
		panic(fmt.Sprintf("registering imageref validation: %v", err))
	}
	return v
}

// validImageRef accepts absolute http(s) URLs and storage paths without
// whitespace.
func validImageRef(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	if strings.Contains(s, "://") {
		return isAbsolute(s)
	}
	return true
}

// InputFrom builds an edit payload from an existing listing.
func InputFrom(p Property) Input {
	in := Input{
		Title:         p.Title,
		PricePerNight: p.PricePerNight,
		IsActive:      p.IsActive,
		ImageURLs:     append([]string(nil), p.ImageURLs...),
	}
	in.Description = optional(p.Description)
	in.Location = optional(p.Location)
	in.MainImageURL = optional(p.MainImageURL)
	return in
}

// Normalize trims text fields and nils out empty optional values so they
// are sent as null.
func (in *Input) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = trimOptional(in.Description)
	in.Location = trimOptional(in.Location)
	in.MainImageURL = trimOptional(in.MainImageURL)
	if in.ImageURLs == nil {
		in.ImageURLs = []string{}
	}
}

// Validate checks the payload, returning a readable error for the first
// failing field.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating listing: %w", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fieldName(fe.Field()))
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fieldName(fe.Field()), fe.Param())
	case "gte":
		return fmt.Errorf("%s must not be negative", fieldName(fe.Field()))
	case "imageref":
		return fmt.Errorf("invalid image reference %q", fe.Value())
	default:
		return fmt.Errorf("invalid %s", fieldName(fe.Field()))
	}
}

func fieldName(f string) string {
	switch f {
	case "PricePerNight":
		return "price per night"
	case "ImageURLs":
		return "image urls"
	case "MainImageURL":
		return "main image"
	default:
		return strings.ToLower(f)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(strings.TrimSpace(*s))
}
