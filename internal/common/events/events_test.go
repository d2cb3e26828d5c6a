package events

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"course-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSPublisher_Publish(t *testing.T) {
	api := &fakeSNS{}
	p := NewSNSPublisherWithClient(api, "arn:aws:sns:ap-southeast-1:123:courses", logger.NewTestLogger(t))
	event := NewEvent(SuggestionsGenerated, map[string]interface{}{"userId": "u-1", "count": 4})

	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, "arn:aws:sns:ap-southeast-1:123:courses", aws.ToString(in.TopicArn))
	assert.Equal(t, SuggestionsGenerated, aws.ToString(in.MessageAttributes["eventType"].StringValue))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &decoded))
	assert.Equal(t, event.ID, decoded["id"])
	assert.Equal(t, "u-1", decoded["payload"].(map[string]interface{})["userId"])
}

func TestSNSPublisher_PublishError(t *testing.T) {
	api := &fakeSNS{err: stderrors.New("throttled")}
	p := NewSNSPublisherWithClient(api, "arn", nil)

	err := p.Publish(context.Background(), NewEvent(SuggestionsGenerated, nil))

	assert.ErrorContains(t, err, "throttled")
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent("x", nil)))
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := NewEvent(SuggestionsGenerated, nil)
	b := NewEvent(SuggestionsGenerated, nil)

	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}
