package loginflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockLoginFlowStep struct {
	name           string
	order          int
	skipStep       bool
	executeFunc    func(ctx context.Context, flowContext *FlowContext) (*StepResult, error)
	shouldSkipFunc func(ctx context.Context, flowContext *FlowContext) bool
}

func (m *MockLoginFlowStep) Name() string {
	return m.name
}

func (m *MockLoginFlowStep) Order() int {
	return m.order
}

func (m *MockLoginFlowStep) Execute(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, flowContext)
	}
	return &StepResult{Continue: true}, nil
}

func (m *MockLoginFlowStep) ShouldSkip(ctx context.Context, flowContext *FlowContext) bool {
	if m.shouldSkipFunc != nil {
		return m.shouldSkipFunc(ctx, flowContext)
	}
	return m.skipStep
}

func NewMockStep(name string, order int) *MockLoginFlowStep {
	return &MockLoginFlowStep{
		name:  name,
		order: order,
	}
}

func recordingStep(name string, order int, calls *[]string) *MockLoginFlowStep {
	step := NewMockStep(name, order)
	step.executeFunc = func(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
		*calls = append(*calls, name)
		return &StepResult{Continue: true}, nil
	}
	return step
}

func TestStepRegistryOrdering(t *testing.T) {
	registry := NewStepRegistry().
		AddStep(NewMockStep("third", 300)).
		AddStep(NewMockStep("first", 100)).
		AddStep(NewMockStep("second", 200))

	steps := registry.GetOrderedSteps()
	require.Len(t, steps, 3)
	assert.Equal(t, "first", steps[0].Name())
	assert.Equal(t, "second", steps[1].Name())
	assert.Equal(t, "third", steps[2].Name())

	// registration order is untouched
	assert.Equal(t, "third", registry.steps[0].Name())
}

func TestFlowExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("runs all steps in order", func(t *testing.T) {
		var calls []string
		executor := BuildCustomFlow(&ServiceDependencies{},
			recordingStep("b", 200, &calls),
			recordingStep("a", 100, &calls),
			recordingStep("c", 300, &calls),
		)
		executor.Execute(ctx, Request{})
		assert.Equal(t, []string{"a", "b", "c"}, calls)
	})

	t.Run("skipped step does not execute", func(t *testing.T) {
		var calls []string
		skipped := recordingStep("skipped", 200, &calls)
		skipped.skipStep = true
		executor := BuildCustomFlow(&ServiceDependencies{},
			recordingStep("a", 100, &calls),
			skipped,
			recordingStep("c", 300, &calls),
		)
		executor.Execute(ctx, Request{})
		assert.Equal(t, []string{"a", "c"}, calls)
	})

	t.Run("step error stops the flow", func(t *testing.T) {
		var calls []string
		failing := NewMockStep("failing", 200)
		failing.executeFunc = func(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
			return &StepResult{Error: &Error{Type: ErrorTypeInvalidCode, Message: "Invalid code"}}, nil
		}
		executor := BuildCustomFlow(&ServiceDependencies{},
			recordingStep("a", 100, &calls),
			failing,
			recordingStep("c", 300, &calls),
		)
		result := executor.Execute(ctx, Request{})
		assert.Equal(t, []string{"a"}, calls)
		require.NotNil(t, result.ErrorResponse)
		assert.Equal(t, "Invalid code", result.ErrorResponse.Message)
		assert.False(t, result.ErrorResponse.IsInternal())
	})

	t.Run("go error becomes step execution error", func(t *testing.T) {
		broken := NewMockStep("broken", 100)
		broken.executeFunc = func(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
			return nil, errors.New("database unavailable")
		}
		result := BuildCustomFlow(&ServiceDependencies{}, broken).Execute(ctx, Request{})
		require.NotNil(t, result.ErrorResponse)
		assert.Equal(t, ErrorTypeStepExecution, result.ErrorResponse.Type)
		assert.True(t, result.ErrorResponse.IsInternal())
		assert.Contains(t, result.ErrorResponse.Message, "broken")
	})

	t.Run("step without continue stops the flow", func(t *testing.T) {
		var calls []string
		stop := NewMockStep("stop", 100)
		stop.executeFunc = func(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
			return &StepResult{Continue: false}, nil
		}
		BuildCustomFlow(&ServiceDependencies{}, stop, recordingStep("after", 200, &calls)).Execute(ctx, Request{})
		assert.Empty(t, calls)
	})
}
