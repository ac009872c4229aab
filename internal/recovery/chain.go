package recovery

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/histia/harvest/pkg/models"
)

// Request is one recovery invocation. SourceURL and RecordsField are stamped
// onto whatever report a strategy produces; Cap bounds the record count the
// same way direct assembly is bounded.
type Request struct {
	Payload      *Payload
	SourceURL    string
	RecordsField string
	Cap          int
	// FailureReason ends up in the sentinel report when every strategy
	// fails, so the consumer can see why the run came back empty.
	FailureReason string
	// French switches the sentinel record name to the French placeholder.
	French bool
}

// state is one rung of the ladder. Once a rung fails the chain never returns
// to it; the walk is strictly downward.
type state struct {
	name    string
	attempt func(*Request) *models.Report
}

var states = []state{
	{"structured-output", func(r *Request) *models.Report {
		if r.Payload.Structured == nil {
			return nil
		}
		report := *r.Payload.Structured
		report.Records = namedOnly(report.Records)
		if len(report.Records) == 0 {
			return nil
		}
		return &report
	}},
	{"final-text-json", func(r *Request) *models.Report {
		return parseReportJSON(r.Payload.FinalText)
	}},
	{"fenced-json", func(r *Request) *models.Report {
		return parseFencedJSON(r.Payload.FinalText)
	}},
	{"markdown-tables", func(r *Request) *models.Report {
		records := parseMarkdownTables(r.Payload.Outputs)
		if len(records) == 0 {
			return nil
		}
		return models.NewReport(r.SourceURL, records)
	}},
	{"bold-blocks", func(r *Request) *models.Report {
		text := strings.Join(append(append([]string{}, r.Payload.Outputs...), r.Payload.FinalText), "\n")
		records := parseBoldBlocks(text)
		if len(records) == 0 {
			return nil
		}
		return models.NewReport(r.SourceURL, records)
	}},
	{"done-action", func(r *Request) *models.Report {
		data, ok := r.Payload.DoneData()
		if !ok {
			return nil
		}
		return parseDonePayload(data)
	}},
}

// Run walks the ladder and returns the first report any strategy yields,
// normalized to the request's source URL and records field. It never returns
// nil: when every strategy fails the result is a sentinel report.
func Run(req *Request) *models.Report {
	if req.Payload == nil {
		req.Payload = &Payload{}
	}

	for _, s := range states {
		report := s.attempt(req)
		if report == nil {
			log.Debug().Str("strategy", s.name).Msg("recovery strategy yielded nothing")
			continue
		}

		report.SourceURL = req.SourceURL
		report.RecordsField = req.RecordsField
		report.Truncate(req.Cap)
		log.Info().
			Str("strategy", s.name).
			Int("records", len(report.Records)).
			Msg("recovered report")
		return report
	}

	log.Warn().Str("reason", req.FailureReason).Msg("all recovery strategies exhausted")
	sentinel := models.SentinelReport(req.SourceURL, req.FailureReason)
	if req.French {
		sentinel.Records[0].Name = models.SentinelNameFR
	}
	sentinel.RecordsField = req.RecordsField
	return sentinel
}

// Recovered reports whether a real strategy produced the report, as opposed
// to the sentinel rung.
func Recovered(report *models.Report) bool {
	return report != nil && !report.IsSentinel()
}
