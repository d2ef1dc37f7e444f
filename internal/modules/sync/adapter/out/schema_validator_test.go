package out_test

import (
	"errors"
	"testing"
	"time"

	syncadapter "quotawin/internal/modules/sync/adapter/out"
	"quotawin/internal/modules/sync/domain"
)

func TestSchemaAcceptsEncodedDocuments(t *testing.T) {
	t.Parallel()
	validator, err := syncadapter.NewJSONSchemaValidator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	doc := domain.NewDocument().WithMachine(domain.MachineSnapshot{
		MachineID: "m1",
		Hostname:  "laptop",
		UpdatedAt: time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC),
		Hours:     []domain.HourEntry{{HourStart: time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC), UsagePct: 12.5, Samples: 3}},
	}).WithMachine(domain.MachineSnapshot{MachineID: "m2", UpdatedAt: time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)})
	raw, err := domain.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := validator.Validate(raw); err != nil {
		t.Fatalf("expected encoded document to validate: %v", err)
	}
}

func TestSchemaRejectsMalformedDocuments(t *testing.T) {
	t.Parallel()
	validator, err := syncadapter.NewJSONSchemaValidator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	cases := map[string]string{
		"missing machines": `{"version":1}`,
		"wrong version":    `{"version":2,"machines":{}}`,
		"negative usage":   `{"version":1,"machines":{"m":{"machine_id":"m","updated_at":"2025-03-06T12:00:00Z","hours":[{"hour_start":"2025-03-06T09:00:00Z","usage_pct":-1}]}}}`,
		"null hours":       `{"version":1,"machines":{"m":{"machine_id":"m","updated_at":"2025-03-06T12:00:00Z","hours":null}}}`,
		"not json":         `{`,
	}
	for name, raw := range cases {
		if err := validator.Validate([]byte(raw)); !errors.Is(err, domain.ErrInvalidDocument) {
			t.Fatalf("%s: expected invalid document, got %v", name, err)
		}
	}
}
