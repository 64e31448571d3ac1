package handlers

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"orders-dashboard/internal/errors"
	"orders-dashboard/internal/models"
)

// FilterQuery is the wire form of a filter, read either from URL query
// parameters or from datastar signals.
type FilterQuery struct {
	Start    string   `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Regions  []string `json:"regions" validate:"max=500,dive,max=200"`
	Products []string `json:"products" validate:"max=500,dive,max=200"`
	Limit    int      `json:"limit" validate:"omitempty,min=1,max=100"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseQuery reads ?start=&end=&region=&product=&limit=. region and product
// may repeat.
func parseQuery(r *http.Request) (FilterQuery, error) {
	values := r.URL.Query()
	q := FilterQuery{
		Start:    strings.TrimSpace(values.Get("start")),
		End:      strings.TrimSpace(values.Get("end")),
		Regions:  nonEmpty(values["region"]),
		Products: nonEmpty(values["product"]),
	}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.Validation("Invalid filter").WithField("limit", "must be an integer")
		}
		q.Limit = n
	}

	return q, q.Validate()
}

// Validate reports every rejected field in a single VALIDATION_ERROR.
func (q FilterQuery) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.ValidationWrap(err, "Invalid filter")
	}

	appErr := errors.Validation("Invalid filter")
	for _, fe := range verrs {
		appErr.WithField(fe.Field(), describe(fe))
	}
	return appErr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// Spec converts the query into a filter. A date range applies only when both
// ends are given; a lone start or end falls back to the whole dataset. An
// inverted range is kept as is and yields an empty result.
func (q FilterQuery) Spec() (models.FilterSpec, error) {
	spec := models.FilterSpec{
		Regions:  nonEmpty(q.Regions),
		Products: nonEmpty(q.Products),
	}

	if q.Start == "" || q.End == "" {
		return spec, nil
	}

	start, err := time.Parse(time.DateOnly, q.Start)
	if err != nil {
		return spec, errors.ValidationWrap(err, "Invalid filter").WithField("start", "must be a date in YYYY-MM-DD format")
	}
	end, err := time.Parse(time.DateOnly, q.End)
	if err != nil {
		return spec, errors.ValidationWrap(err, "Invalid filter").WithField("end", "must be a date in YYYY-MM-DD format")
	}

	spec.DateRange = &models.DateRange{Start: start, End: end}
	return spec, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
