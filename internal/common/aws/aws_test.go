package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func TestSNSClient_PublishRecommendationsGenerated(t *testing.T) {
	api := new(MockSNS)
	client := NewSNSClientWithAPI(api, "arn:aws:sns:ap-southeast-1:123456789012:recommendations")

	var published *sns.PublishInput
	api.On("Publish", mock.Anything, mock.AnythingOfType("*sns.PublishInput")).
		Run(func(args mock.Arguments) { published = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil)

	id, err := client.PublishRecommendationsGenerated(context.Background(), RecommendationsGenerated{
		CampaignID:       "campaign-1",
		RunID:            "run-1",
		AlgorithmVersion: "v1.0",
		ResultCount:      2,
		CandidateIDs:     []string{"creator-1", "creator-2"},
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	require.NotNil(t, published)
	assert.Equal(t, "arn:aws:sns:ap-southeast-1:123456789012:recommendations", awssdk.ToString(published.TopicArn))
	assert.Equal(t, EventRecommendationsGenerated, awssdk.ToString(published.MessageAttributes["eventType"].StringValue))
	assert.Equal(t, "campaign-1", awssdk.ToString(published.MessageAttributes["campaignId"].StringValue))

	var body RecommendationsGenerated
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(published.Message)), &body))
	assert.Equal(t, EventRecommendationsGenerated, body.Event)
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, []string{"creator-1", "creator-2"}, body.CandidateIDs)
	api.AssertExpectations(t)
}

func TestSNSClient_PublishError(t *testing.T) {
	api := new(MockSNS)
	client := NewSNSClientWithAPI(api, "arn:topic")
	api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := client.PublishRecommendationsGenerated(context.Background(), RecommendationsGenerated{CampaignID: "c"})

	assert.EqualError(t, err, "throttled")
}

func TestSESClient_Send(t *testing.T) {
	api := new(MockSES)
	client := NewSESClientWithAPI(api, "noreply@example.com")

	var sent *ses.SendEmailInput
	api.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*ses.SendEmailInput) }).
		Return(&ses.SendEmailOutput{MessageId: awssdk.String("ses-42")}, nil)

	id, err := client.Send(context.Background(), "brand@example.com", "Recommended creators", "plain", "<p>html</p>")

	require.NoError(t, err)
	assert.Equal(t, "ses-42", id)
	assert.Equal(t, "noreply@example.com", awssdk.ToString(sent.Source))
	assert.Equal(t, []string{"brand@example.com"}, sent.Destination.ToAddresses)
	assert.Equal(t, "Recommended creators", awssdk.ToString(sent.Message.Subject.Data))
	assert.Equal(t, "plain", awssdk.ToString(sent.Message.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", awssdk.ToString(sent.Message.Body.Html.Data))
}

func TestSESClient_SendTextOnly(t *testing.T) {
	api := new(MockSES)
	client := NewSESClientWithAPI(api, "noreply@example.com")

	var sent *ses.SendEmailInput
	api.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*ses.SendEmailInput) }).
		Return(&ses.SendEmailOutput{MessageId: awssdk.String("ses-43")}, nil)

	_, err := client.Send(context.Background(), "brand@example.com", "s", "plain", "")

	require.NoError(t, err)
	assert.Nil(t, sent.Message.Body.Html)
}

func TestSESClient_SendError(t *testing.T) {
	api := new(MockSES)
	client := NewSESClientWithAPI(api, "noreply@example.com")
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("MessageRejected"))

	_, err := client.Send(context.Background(), "brand@example.com", "s", "t", "")

	assert.Error(t, err)
}
