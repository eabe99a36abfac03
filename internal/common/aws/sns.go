package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const EventRecommendationsGenerated = "recommendations.generated"

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client   SNSAPI
	topicARN string
}

func NewSNSClient(ctx context.Context, region, topicARN string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSNSClientWithAPI(sns.NewFromConfig(cfg), topicARN), nil
}

func NewSNSClientWithAPI(api SNSAPI, topicARN string) *SNSClient {
	return &SNSClient{client: api, topicARN: topicARN}
}

// RecommendationsGenerated is the event body published after a run is
// persisted.
type RecommendationsGenerated struct {
	Event            string   `json:"event"`
	CampaignID       string   `json:"campaignId"`
	RunID            string   `json:"runId"`
	AlgorithmVersion string   `json:"algorithmVersion"`
	ResultCount      int      `json:"resultCount"`
	CandidateIDs     []string `json:"candidateIds"`
}

// PublishRecommendationsGenerated sends the event with an eventType message
// attribute so subscribers can filter on it.
func (s *SNSClient) PublishRecommendationsGenerated(ctx context.Context, event RecommendationsGenerated) (string, error) {
	event.Event = EventRecommendationsGenerated
	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(EventRecommendationsGenerated),
			},
			"campaignId": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(event.CampaignID),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}
