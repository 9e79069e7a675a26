package searchadversemedia

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/models"
)

type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) Search(ctx context.Context, entityName string) models.SearchBundle {
	args := m.Called(ctx, entityName)
	return args.Get(0).(models.SearchBundle)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "adverse-media-screening",
		ElementId:          "Activity_SearchAdverseMedia",
		CustomHeaders:      "{}",
		Retries:            1,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, agent Searcher) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{Agent: agent, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return h
}

func TestHandler_Execute_ReturnsBundle(t *testing.T) {
	bundle := models.SearchBundle{
		Results: []models.SearchResultRecord{
			models.NewSearchResultRecord("Jane Doe fraud case", "http://example.com/a", "..."),
		},
		Images: []string{"http://example.com/img.png"},
	}
	agent := new(MockAgent)
	agent.On("Search", mock.Anything, "Jane Doe").Return(bundle)

	output := newTestHandler(t, agent).Execute(context.Background(), &Input{EntityName: "Jane Doe"})

	assert.Equal(t, bundle, output.SearchData)
	agent.AssertExpectations(t)
}

func TestHandler_Execute_EmptyBundleEncodesAsEmptyLists(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Search", mock.Anything, "Jane Doe").Return(models.EmptySearchBundle())

	output := newTestHandler(t, agent).Execute(context.Background(), &Input{EntityName: "Jane Doe"})

	encoded, err := json.Marshal(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"searchData":{"results":[],"images":[]}}`, string(encoded))
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockAgent))

	tests := []struct {
		name      string
		variables map[string]interface{}
		want      string
		wantErr   bool
	}{
		{name: "trimmed", variables: map[string]interface{}{"entityName": "  Acme Corp "}, want: "Acme Corp"},
		{name: "extra process variables", variables: map[string]interface{}{"entityName": "Jane Doe", "extracted": map[string]interface{}{}}, want: "Jane Doe"},
		{name: "missing", variables: map[string]interface{}{}, wantErr: true},
		{name: "empty", variables: map[string]interface{}{"entityName": ""}, wantErr: true},
		{name: "blank", variables: map[string]interface{}{"entityName": "   "}, wantErr: true},
		{name: "wrong type", variables: map[string]interface{}{"entityName": []string{"a"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(1, tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, input.EntityName)
		})
	}
}

func TestInvalidInputIsThrownWithoutRetries(t *testing.T) {
	bpmnErr := errors.ConvertToBPMNError(errors.NewInvalidInputError("entityName: must not be blank"))
	assert.Equal(t, "INVALID_INPUT", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
}
