package lead

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Source tags every submission made by this client.
const Source = "landing_page"

// ISOMillis matches ECMAScript Date.prototype.toISOString in UTC.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

const schemaURL = "https://schemas.mahfal.com/lead_submission.schema.json"

//go:embed lead_submission.schema.json
var submissionSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Submission is the body posted to the lead intake API.
type Submission struct {
	Record
	SubmittedAt string `json:"submittedAt"`
	Source      string `json:"source"`
}

// NewSubmission stamps a copy of r with the submission time and source tag.
func NewSubmission(r Record, at time.Time) Submission {
	return Submission{
		Record:      r.Clone(),
		SubmittedAt: at.UTC().Format(ISOMillis),
		Source:      Source,
	}
}

// CheckContract validates the submission against the intake API schema.
func (s Submission) CheckContract() error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("submission contract: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("submission contract: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("submission contract: %w", err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(submissionSchema)); err != nil {
			schemaErr = fmt.Errorf("submission schema load failed: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("submission schema compile failed: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}
