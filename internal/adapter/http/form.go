package http

import (
	"embed"
	"errors"
	"html/template"
	"net/url"
	"strconv"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// columnSplits groups the form fields into three columns: water quality,
// disease burden and socio-environmental indicators.
var columnSplits = []int{7, 13, domain.NumericFieldCount}

type fieldView struct {
	Key   string
	Label string
	Unit  string
	Min   string
	Max   string
	Step  string
	Value string
	Error string
}

type treatmentOption struct {
	Value    domain.Treatment
	Selected bool
}

type summaryRow struct {
	Label string
	Unit  string
	Value string
}

type pageView struct {
	Columns        [][]fieldView
	Treatments     []treatmentOption
	TreatmentError string
	Result         *domain.Prediction
	Failure        string
	Summary        []summaryRow
	SchemaVersion  string
}

// formInput is the submitted form: raw strings for redisplay plus the parsed
// assessment.
type formInput struct {
	raw        map[string]string
	treatment  string
	assessment domain.Assessment
}

// parseForm builds an assessment from submitted values. Missing fields take
// their defaults; unparsable and out-of-range values are reported per field.
func parseForm(values url.Values) (formInput, error) {
	in := formInput{
		raw:        make(map[string]string, domain.NumericFieldCount),
		assessment: domain.DefaultAssessment(),
	}
	verr := &domain.ValidationError{}

	for _, f := range domain.NumericFields {
		s := values.Get(f.Key)
		in.raw[f.Key] = s
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			verr.Add(f.Key, "must be a number")
			continue
		}
		f.Set(&in.assessment, v)
	}

	in.treatment = values.Get("treatment")
	if in.treatment != "" {
		t, err := domain.ParseTreatment(in.treatment)
		if err != nil {
			verr.Add("treatment", "must be one of Boiling, Chlorination, Filtration, Unknown")
		} else {
			in.assessment.Treatment = t
		}
	}

	var rangeErr *domain.ValidationError
	if errors.As(in.assessment.Validate(), &rangeErr) {
		for k, msg := range rangeErr.Fields {
			verr.Add(k, msg)
		}
	}
	return in, verr.OrNil()
}

// newPageView renders the form for in. A nil in shows the defaults.
func newPageView(in *formInput, verr *domain.ValidationError) pageView {
	defaults := domain.DefaultAssessment()
	selected := defaults.Treatment
	if in != nil {
		selected = in.assessment.Treatment
	}

	view := pageView{SchemaVersion: domain.SchemaVersion}
	start := 0
	for _, end := range columnSplits {
		col := make([]fieldView, 0, end-start)
		for _, f := range domain.NumericFields[start:end] {
			fv := fieldView{
				Key:   f.Key,
				Label: f.Label,
				Unit:  f.Unit,
				Min:   formatFloat(f.Min),
				Max:   formatFloat(f.Max),
				Step:  formatFloat(f.Step),
				Value: formatFloat(f.Value(defaults)),
			}
			if in != nil {
				if raw := in.raw[f.Key]; raw != "" {
					fv.Value = raw
				}
			}
			if verr != nil {
				fv.Error = verr.Fields[f.Key]
			}
			col = append(col, fv)
		}
		view.Columns = append(view.Columns, col)
		start = end
	}

	for _, t := range domain.Treatments() {
		view.Treatments = append(view.Treatments, treatmentOption{Value: t, Selected: t == selected})
	}
	if verr != nil {
		view.TreatmentError = verr.Fields["treatment"]
	}
	return view
}

// summarize lists the assessed inputs with locale-grouped numbers.
func summarize(a domain.Assessment) []summaryRow {
	p := message.NewPrinter(language.English)
	rows := make([]summaryRow, 0, domain.NumericFieldCount+1)
	for _, f := range domain.NumericFields {
		v := f.Value(a)
		value := p.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
		if f.Integer {
			value = formatFloat(v)
		}
		rows = append(rows, summaryRow{Label: f.Label, Unit: f.Unit, Value: value})
	}
	return append(rows, summaryRow{Label: "Water Treatment Method", Value: string(a.Treatment)})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
