package entity

import "encoding/json"

// ChangeType categorizes a requirement delta
type ChangeType string

const (
	ChangeTypeAdded           ChangeType = "Added"
	ChangeTypeModified        ChangeType = "Modified"
	ChangeTypeRemoved         ChangeType = "Removed"
	ChangeTypePriority        ChangeType = "Priority change"
	ChangeTypeTechnicalDetail ChangeType = "Technical detail change"
)

// ChangeDetail is a single categorized delta
type ChangeDetail struct {
	Type        ChangeType `json:"type"`
	Description string     `json:"description"`
}

// ChangeReport is either a structured analysis or, when the model output
// could not be parsed, the raw model text. Both variants echo the inputs.
type ChangeReport struct {
	SummaryChanges  string
	ChangesDetails  []ChangeDetail
	Recommendations string

	RawText string
	raw     bool

	OldDescription string
	NewDescription string
}

// NewRawChangeReport builds the fallback variant
func NewRawChangeReport(text, oldDesc, newDesc string) *ChangeReport {
	return &ChangeReport{
		RawText:        text,
		raw:            true,
		OldDescription: oldDesc,
		NewDescription: newDesc,
	}
}

// IsRaw reports whether the report is the unparsed fallback
func (r *ChangeReport) IsRaw() bool {
	return r.raw
}

type structuredChangeReport struct {
	SummaryChanges  string         `json:"summary_changes"`
	ChangesDetails  []ChangeDetail `json:"changes_details"`
	Recommendations string         `json:"recommendations"`
	OldDescription  string         `json:"old_description"`
	NewDescription  string         `json:"new_description"`
}

type rawChangeReport struct {
	RawText        string `json:"raw_text"`
	OldDescription string `json:"old_description"`
	NewDescription string `json:"new_description"`
}

func (r *ChangeReport) MarshalJSON() ([]byte, error) {
	if r.raw {
		return json.Marshal(rawChangeReport{
			RawText:        r.RawText,
			OldDescription: r.OldDescription,
			NewDescription: r.NewDescription,
		})
	}

	details := r.ChangesDetails
	if details == nil {
		details = []ChangeDetail{}
	}
	return json.Marshal(structuredChangeReport{
		SummaryChanges:  r.SummaryChanges,
		ChangesDetails:  details,
		Recommendations: r.Recommendations,
		OldDescription:  r.OldDescription,
		NewDescription:  r.NewDescription,
	})
}

// UnmarshalJSON accepts both wire variants, raw_text selects the fallback
func (r *ChangeReport) UnmarshalJSON(data []byte) error {
	var probe struct {
		RawText *string `json:"raw_text"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.RawText != nil {
		var raw rawChangeReport
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*r = *NewRawChangeReport(raw.RawText, raw.OldDescription, raw.NewDescription)
		return nil
	}

	var structured structuredChangeReport
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*r = ChangeReport{
		SummaryChanges:  structured.SummaryChanges,
		ChangesDetails:  structured.ChangesDetails,
		Recommendations: structured.Recommendations,
		OldDescription:  structured.OldDescription,
		NewDescription:  structured.NewDescription,
	}
	return nil
}

// ReportFormat is a downloadable rendering of a change report
type ReportFormat string

const (
	ReportFormatJSON     ReportFormat = "json"
	ReportFormatMarkdown ReportFormat = "markdown"
	ReportFormatDOCX     ReportFormat = "docx"
	ReportFormatPDF      ReportFormat = "pdf"
)

func (f ReportFormat) IsValid() bool {
	switch f {
	case ReportFormatJSON, ReportFormatMarkdown, ReportFormatDOCX, ReportFormatPDF:
		return true
	}
	return false
}
