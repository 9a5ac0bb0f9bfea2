// internal/common/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"

	"grant-workers/internal/models"
)

const TypeRecommendationsReady = "recommendations.ready"

// ReadyAnnouncement is the display subset sent to notification consumers.
type ReadyAnnouncement struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Organization   string       `json:"organization,omitempty"`
	ApplicationEnd *models.Date `json:"applicationEnd,omitempty"`
	Score          int          `json:"score"`
	Grade          string       `json:"grade"`
}

// RecommendationsReady announces newly matched announcements for a user.
type RecommendationsReady struct {
	EventID       string              `json:"eventId"`
	Type          string              `json:"type"`
	OccurredAt    time.Time           `json:"occurredAt"`
	RunID         string              `json:"runId"`
	UserID        string              `json:"userId"`
	CompanyID     string              `json:"companyId"`
	Announcements []ReadyAnnouncement `json:"announcements"`
}

func NewRecommendationsReady(runID, userID, companyID string, recs []models.Recommendation) RecommendationsReady {
	anns := make([]ReadyAnnouncement, 0, len(recs))
	for _, r := range recs {
		anns = append(anns, ReadyAnnouncement{
			ID:             r.Announcement.ID,
			Title:          r.Announcement.Title,
			Organization:   r.Announcement.Organization,
			ApplicationEnd: r.Announcement.ApplicationEnd,
			Score:          r.Score,
			Grade:          r.Grade.Label,
		})
	}
	return RecommendationsReady{
		EventID:       uuid.NewString(),
		Type:          TypeRecommendationsReady,
		OccurredAt:    time.Now().UTC(),
		RunID:         runID,
		UserID:        userID,
		CompanyID:     companyID,
		Announcements: anns,
	}
}

type Publisher interface {
	// Publish returns the broker message ID.
	Publish(ctx context.Context, event RecommendationsReady) (string, error)
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

func NewSNSPublisher(ctx context.Context, region, topicARN string) (*SNSPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

func (p *SNSPublisher) TopicARN() string {
	return p.topicARN
}

func (p *SNSPublisher) Publish(ctx context.Context, event RecommendationsReady) (string, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
			"userId":    {DataType: aws.String("String"), StringValue: aws.String(event.UserID)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

// NopPublisher drops events. Used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RecommendationsReady) (string, error) {
	return "", nil
}
