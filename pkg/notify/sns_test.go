package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/nocwatch/herald/internal/domain"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSSinkPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	sink := &snsSink{
		id:       "alerts",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:123456789012:status",
		client:   client,
		log:      noopLogger{},
	}

	err := sink.Publish(context.Background(), NewEvent(domain.Item{
		Source:      "aws",
		Fingerprint: "f1",
	}, "AWS event line"))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:us-east-1:123456789012:status" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes["source"]
	if !ok || attr.StringValue == nil || aws.ToString(attr.StringValue) != "aws" {
		t.Fatalf("source attribute missing or wrong: %#v", attr)
	}
	if attr.DataType == nil || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if client.input.Message == nil || !strings.Contains(aws.ToString(client.input.Message), `"source":"aws"`) {
		t.Fatalf("Message missing source: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSSinkPublishError(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("boom")}
	sink := &snsSink{
		id:       "alerts",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:123456789012:status",
		client:   client,
		log:      noopLogger{},
	}

	err := sink.Publish(context.Background(), NewEvent(domain.Item{Source: "aws"}, "line"))
	if err == nil {
		t.Fatalf("expected error from Publish")
	}
}
