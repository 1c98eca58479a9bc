package descriptor

import (
	"encoding/json"
	"testing"
)

func TestFlowCondition_CronRoundTrip(t *testing.T) {
	c := FlowCondition{Kind: ConditionCron, Schedule: "0 * * * *"}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got FlowCondition
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Kind != ConditionCron || got.Schedule != c.Schedule {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
	}
}

func TestFlowCondition_UpstreamRoundTrip(t *testing.T) {
	c := FlowCondition{Kind: ConditionUpstream, Upstream: "orders"}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got FlowCondition
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Kind != ConditionUpstream || got.Upstream != c.Upstream {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
	}
}

func TestFlowCondition_UnknownKindRejectedOnMarshal(t *testing.T) {
	c := FlowCondition{Kind: "Bogus"}
	if _, err := json.Marshal(c); err == nil {
		t.Fatal("expected error marshaling unknown flow condition kind")
	}
}

func TestFlowCondition_UnknownTypeRejectedOnUnmarshal(t *testing.T) {
	var c FlowCondition
	err := json.Unmarshal([]byte(`{"type":"Bogus"}`), &c)
	if err == nil {
		t.Fatal("expected error unmarshaling unknown flow condition type")
	}
}

func TestStepTransformation_SqlRoundTrip(t *testing.T) {
	tr := StepTransformation{Kind: TransformationSql, Sql: "select 1"}

	data, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got StepTransformation
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Kind != TransformationSql || got.Sql != tr.Sql {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, tr)
	}
}

func TestFlow_FullDocumentRoundTrip(t *testing.T) {
	f := Flow{
		DescriptorID: "f1",
		Name:         "nightly_rollup",
		Summary:      "rolls up daily totals",
		Condition:    FlowCondition{Kind: ConditionCron, Schedule: "0 2 * * *"},
		Steps: []FlowStep{
			{
				Name:           "extract",
				Parents:        nil,
				TimeoutSeconds: 60,
				Transformation: StepTransformation{Kind: TransformationSql, Sql: "select * from raw"},
			},
			{
				Name:           "aggregate",
				Parents:        []string{"extract"},
				TimeoutSeconds: 120,
				Transformation: StepTransformation{Kind: TransformationSql, Sql: "select sum(x) from raw"},
			},
		},
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Flow
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.ID() != f.DescriptorID || got.Kind() != KindFlow {
		t.Fatalf("identity mismatch: got id=%s kind=%s", got.ID(), got.Kind())
	}
	if len(got.Steps) != 2 || got.Steps[1].Parents[0] != "extract" {
		t.Fatalf("steps not preserved: %+v", got.Steps)
	}
}
