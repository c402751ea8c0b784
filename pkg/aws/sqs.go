package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// SQSQueue sends and long-polls string messages on one queue.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

func NewSQSQueue(cfg sdkaws.Config, queueURL string) *SQSQueue {
	return &SQSQueue{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}
}

// MessageHandler processes one message body. A returned error leaves the
// message on the queue so it is redelivered after the visibility timeout.
type MessageHandler func(ctx context.Context, body string) error

func (q *SQSQueue) Send(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &q.queueURL,
		MessageBody: &body,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Poll receives messages until ctx is cancelled, deleting each one the handler accepts.
func (q *SQSQueue) Poll(ctx context.Context, handler MessageHandler) error {
	zap.L().Info("starting SQS polling", zap.String("queue", q.queueURL))
	for {
		if err := q.pollOnce(ctx, handler); err != nil {
			if ctx.Err() != nil {
				zap.L().Info("SQS polling stopped")
				return ctx.Err()
			}
			zap.L().Error("error polling SQS", zap.Error(err))
			time.Sleep(time.Second)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (q *SQSQueue) pollOnce(ctx context.Context, handler MessageHandler) error {
	result, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &q.queueURL,
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     20,
		// an import may run for several minutes
		VisibilityTimeout: 600,
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	var errs []error
	for _, msg := range result.Messages {
		if msg.Body == nil {
			continue
		}
		if err := handler(ctx, *msg.Body); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      &q.queueURL,
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			zap.L().Warn("failed to delete SQS message", zap.Error(err))
		}
	}
	return errors.Join(errs...)
}
