package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/trm-lab/argus/pkg/domain/model"
)

// SlackNotifier posts workflow and risk events to one Slack channel per
// deployment. Channel routing per organization is handled upstream by
// running one process per tenant group, so a single channel suffices here.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

var _ Notifier = &SlackNotifier{}

// NewSlack creates a Slack notifier with the provided bot token and
// target channel ID.
func NewSlack(token, channel string) (*SlackNotifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("Slack channel is required")
	}

	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
	}, nil
}

func (n *SlackNotifier) post(ctx context.Context, text string, fields []slack.AttachmentField, color string) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAttachments(slack.Attachment{
			Color:  color,
			Fields: fields,
		}),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("channel", n.channel))
	}
	return nil
}

func (n *SlackNotifier) ApprovalRequested(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow, step *model.ApprovalStep) error {
	text := fmt.Sprintf("Approval requested: %s workflow #%d, step %d", workflow.WorkflowType, workflow.ID, step.StepOrder)
	fields := []slack.AttachmentField{
		{Title: "Organization", Value: orgID, Short: true},
		{Title: "Vendor ID", Value: fmt.Sprintf("%d", workflow.VendorID), Short: true},
		{Title: "Approver", Value: fmt.Sprintf("%s (%s)", step.ApproverName, step.ApproverRole), Short: true},
		{Title: "Initiated by", Value: workflow.InitiatedBy, Short: true},
	}
	return n.post(ctx, text, fields, "#439FE0")
}

func (n *SlackNotifier) WorkflowCompleted(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow) error {
	color := "#36A64F"
	if workflow.Status != "APPROVED" {
		color = "#D00000"
	}

	text := fmt.Sprintf("Workflow #%d (%s) completed: %s", workflow.ID, workflow.WorkflowType, workflow.Status)
	fields := []slack.AttachmentField{
		{Title: "Organization", Value: orgID, Short: true},
		{Title: "Vendor ID", Value: fmt.Sprintf("%d", workflow.VendorID), Short: true},
	}
	return n.post(ctx, text, fields, color)
}

func (n *SlackNotifier) AppetiteBreached(ctx context.Context, orgID string, breach *model.RiskAppetiteBreach) error {
	text := fmt.Sprintf("Risk appetite breached: %s exceeds tolerance by %.1f", breach.Category, breach.ExcessAmount)
	fields := []slack.AttachmentField{
		{Title: "Organization", Value: orgID, Short: true},
		{Title: "Tolerance", Value: fmt.Sprintf("%.1f", breach.ThresholdExceeded), Short: true},
		{Title: "Actual", Value: fmt.Sprintf("%.1f", breach.ActualLevel), Short: true},
		{Title: "Board action required", Value: fmt.Sprintf("%t", breach.BoardActionRequired), Short: true},
	}
	return n.post(ctx, text, fields, "#D00000")
}
