package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"docsight/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESNotifier creates a new SES-backed batch completion Notifier.
func NewSESNotifier(region, fromAddress, fromName, toAddress string) (port.Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesNotifier) NotifyBatchComplete(ctx context.Context, summary port.BatchSummary) error {
	subject := fmt.Sprintf("Document batch finished: %d parsed, %d failed", summary.Succeeded, summary.Failed)
	htmlBody := buildBatchHTML(summary)
	textBody := buildBatchText(summary)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildBatchText(summary port.BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A batch of %d documents finished processing.\n\n", summary.Total)
	fmt.Fprintf(&b, "Parsed: %d\nFailed: %d\n", summary.Succeeded, summary.Failed)
	if len(summary.FileNames) > 0 {
		b.WriteString("\nFiles:\n")
		for _, name := range summary.FileNames {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	return b.String()
}

func buildBatchHTML(summary port.BatchSummary) string {
	var files strings.Builder
	for _, name := range summary.FileNames {
		fmt.Fprintf(&files, "<li>%s</li>", name)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Document batch finished</h2>
  <p>A batch of %d documents finished processing.</p>
  <p><strong>Parsed:</strong> %d<br><strong>Failed:</strong> %d</p>
  <ul style="color: #666;">%s</ul>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Docsight - Document Parsing Service</p>
</body>
</html>`, summary.Total, summary.Succeeded, summary.Failed, files.String())
}
