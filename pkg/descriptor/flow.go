package descriptor

import (
	"encoding/json"
	"fmt"
)

// FlowConditionKind discriminates the tagged FlowCondition variants. Go has
// no native sum type, so the variant is carried as an explicit field and
// enforced through custom (Un)MarshalJSON below.
type FlowConditionKind string

const (
	ConditionCron     FlowConditionKind = "Cron"
	ConditionUpstream FlowConditionKind = "Upstream"
)

// FlowCondition is a tagged union: exactly one of Schedule (when Kind ==
// ConditionCron) or Upstream (when Kind == ConditionUpstream) is set.
type FlowCondition struct {
	Kind     FlowConditionKind
	Schedule string // set when Kind == ConditionCron
	Upstream string // set when Kind == ConditionUpstream
}

type flowConditionCronWire struct {
	Schedule string `json:"schedule"`
}

type flowConditionUpstreamWire struct {
	Upstream string `json:"upstream"`
}

func (c FlowCondition) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ConditionCron:
		return json.Marshal(struct {
			Type string `json:"type"`
			flowConditionCronWire
		}{Type: string(ConditionCron), flowConditionCronWire: flowConditionCronWire{Schedule: c.Schedule}})
	case ConditionUpstream:
		return json.Marshal(struct {
			Type string `json:"type"`
			flowConditionUpstreamWire
		}{Type: string(ConditionUpstream), flowConditionUpstreamWire: flowConditionUpstreamWire{Upstream: c.Upstream}})
	default:
		return nil, fmt.Errorf("descriptor: unknown flow condition kind %q", c.Kind)
	}
}

func (c *FlowCondition) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("descriptor: decoding flow condition tag: %w", err)
	}

	switch FlowConditionKind(tag.Type) {
	case ConditionCron:
		var wire flowConditionCronWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("descriptor: decoding cron condition: %w", err)
		}
		c.Kind = ConditionCron
		c.Schedule = wire.Schedule
		return nil
	case ConditionUpstream:
		var wire flowConditionUpstreamWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("descriptor: decoding upstream condition: %w", err)
		}
		c.Kind = ConditionUpstream
		c.Upstream = wire.Upstream
		return nil
	default:
		return fmt.Errorf("descriptor: unknown flow condition type %q", tag.Type)
	}
}

// StepTransformationKind discriminates StepTransformation variants.
type StepTransformationKind string

const (
	TransformationSql StepTransformationKind = "Sql"
)

// StepTransformation is a tagged union; today only Sql is populated.
type StepTransformation struct {
	Kind StepTransformationKind
	Sql  string // set when Kind == TransformationSql
}

type stepTransformationSqlWire struct {
	Sql string `json:"sql"`
}

func (t StepTransformation) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TransformationSql:
		return json.Marshal(struct {
			Type string `json:"type"`
			stepTransformationSqlWire
		}{Type: string(TransformationSql), stepTransformationSqlWire: stepTransformationSqlWire{Sql: t.Sql}})
	default:
		return nil, fmt.Errorf("descriptor: unknown step transformation kind %q", t.Kind)
	}
}

func (t *StepTransformation) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("descriptor: decoding step transformation tag: %w", err)
	}

	switch StepTransformationKind(tag.Type) {
	case TransformationSql:
		var wire stepTransformationSqlWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("descriptor: decoding sql transformation: %w", err)
		}
		t.Kind = TransformationSql
		t.Sql = wire.Sql
		return nil
	default:
		return fmt.Errorf("descriptor: unknown step transformation type %q", tag.Type)
	}
}

// FlowStep is one ordered unit of work in a flow.
type FlowStep struct {
	Name           string             `json:"name"`
	Summary        string             `json:"summary"`
	Parents        []string           `json:"parents"`
	TimeoutSeconds int                `json:"timeout"`
	Transformation StepTransformation `json:"transformation"`
}

// Flow is a logical data-flow descriptor compiled to a workflow-engine job
// spec by the flow controller.
type Flow struct {
	DescriptorID string        `json:"id" validate:"required"`
	Name         string        `json:"name" validate:"required"`
	Summary      string        `json:"summary"`
	Condition    FlowCondition `json:"condition"`
	Steps        []FlowStep    `json:"steps"`
}

func (f *Flow) ID() string { return f.DescriptorID }
func (f *Flow) Kind() Kind { return KindFlow }
