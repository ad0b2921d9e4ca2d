package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/alexkh/token-ledger/pkg/models"
)

// SQSScheduler implements the RepairScheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   *sqs.Client
	QueueURL string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client *sqs.Client, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ RepairScheduler = (*SQSScheduler)(nil)

// ScheduleRepair sends the repair request to an SQS queue for the repair
// worker to apply.
func (s *SQSScheduler) ScheduleRepair(ctx context.Context, repair *models.RepairRequest) error {
	body, err := json.Marshal(repair)
	if err != nil {
		return fmt.Errorf("failed to marshal repair request for SQS: %w", err)
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.QueueURL),
		MessageBody: aws.String(string(body)),
	})

	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
