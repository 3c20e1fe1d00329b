package notify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/jonathan/framework-scripts/internal/dataapi"
)

// IncompleteApplicationTemplateID is the Notify template for the reminder.
const IncompleteApplicationTemplateID = "25c7c763-fe51-418f-8e51-130c391edc35"

// Reminder lines, one per outstanding task.
const (
	MessageUnconfirmedCompanyDetails = "* confirm your company details\n"
	MessageIncompleteDeclaration     = "* finish your supplier declaration\n"
	MessageNoServices                = "* mark at least one of your services as complete\n"
	messageUnsubmittedServices       = "* check that all services to be submitted have been marked as complete (%d currently incomplete)\n"
)

const deadlineLayout = "3pm MST, Monday 2 January 2006"

// BuildMessage lists what a supplier still has to do. An empty message
// means the application is complete.
func BuildMessage(sf dataapi.SupplierFramework, drafts []dataapi.DraftService) string {
	var message string
	if !sf.ApplicationCompanyDetailsConfirmed {
		message += MessageUnconfirmedCompanyDetails
	}
	if sf.Declaration.Status() != "complete" {
		message += MessageIncompleteDeclaration
	}

	submitted, unsubmitted := 0, 0
	for _, d := range drafts {
		switch d.Status {
		case "submitted":
			submitted++
		case "not-submitted":
			unsubmitted++
		}
	}
	switch {
	case submitted == 0:
		message += MessageNoServices
	case unsubmitted > 0:
		message += fmt.Sprintf(messageUnsubmittedServices, unsubmitted)
	}
	return message
}

// FormatDeadline renders a UTC timestamp as UK local time, for example
// "5pm BST, Tuesday 5 June 2018".
func FormatDeadline(utc string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, utc)
	if err != nil {
		return "", fmt.Errorf("invalid deadline %q: %w", utc, err)
	}
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		return "", err
	}
	return t.In(london).Format(deadlineLayout), nil
}

// API is the subset of the Data API the reminder needs.
type API interface {
	GetFramework(ctx context.Context, slug string) (*dataapi.Framework, error)
	FindFrameworkSuppliers(ctx context.Context, frameworkSlug string) ([]dataapi.SupplierFramework, error)
	FindDraftServices(ctx context.Context, supplierID int, frameworkSlug string) ([]dataapi.DraftService, error)
	FindUsers(ctx context.Context, supplierID int) ([]dataapi.User, error)
}

// Sender delivers one email. Mailer satisfies it.
type Sender interface {
	Send(ctx context.Context, to, templateID string, personalisation map[string]string) error
}

// RunOptions holds configuration for Run
type RunOptions struct {
	FrameworkSlug string
	TemplateID    string
	DryRun        bool
	SupplierIDs   []int
	Logger        *zap.Logger
}

// Run emails every supplier with an incomplete application on an open
// framework. It returns the number of emails that failed to send. A
// TemplateError stops the run.
func Run(ctx context.Context, api API, sender Sender, opts RunOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	templateID := opts.TemplateID
	if templateID == "" {
		templateID = IncompleteApplicationTemplateID
	}

	framework, err := api.GetFramework(ctx, opts.FrameworkSlug)
	if err != nil {
		return 0, err
	}
	if framework.Status != "open" {
		return 0, fmt.Errorf("suppliers cannot amend applications unless the framework is open (%s is %s)", framework.Slug, framework.Status)
	}
	deadline, err := FormatDeadline(framework.ApplicationsCloseAtUTC)
	if err != nil {
		return 0, err
	}

	suppliers, err := api.FindFrameworkSuppliers(ctx, opts.FrameworkSlug)
	if err != nil {
		return 0, err
	}

	errorCount := 0
	for _, sf := range suppliers {
		if len(opts.SupplierIDs) > 0 && !slices.Contains(opts.SupplierIDs, sf.SupplierID) {
			continue
		}

		drafts, err := api.FindDraftServices(ctx, sf.SupplierID, opts.FrameworkSlug)
		if err != nil {
			return errorCount, err
		}
		message := BuildMessage(sf, drafts)
		if message == "" {
			continue
		}

		personalisation := map[string]string{
			"message":              message,
			"framework_name":       framework.Name,
			"framework_slug":       framework.Slug,
			"application_deadline": deadline,
		}

		var recipients []string
		if email := sf.Declaration.String("primaryContactEmail"); email != "" {
			recipients = append(recipients, email)
		}
		users, err := api.FindUsers(ctx, sf.SupplierID)
		if err != nil {
			return errorCount, err
		}
		for _, u := range users {
			if u.Active {
				recipients = append(recipients, u.EmailAddress)
			}
		}

		for _, email := range recipients {
			failed, err := send(ctx, sender, logger, opts.DryRun, templateID, personalisation, email, sf.SupplierID)
			if failed {
				errorCount++
			}
			if err != nil {
				return errorCount, err
			}
		}
	}
	return errorCount, nil
}

func send(ctx context.Context, sender Sender, logger *zap.Logger, dryRun bool, templateID string, personalisation map[string]string, email string, supplierID int) (bool, error) {
	fields := []zap.Field{zap.Int("supplier_id", supplierID), zap.String("user", HashString(email))}
	if dryRun {
		logger.Info("[Dry Run] Sending email", fields...)
		return false, nil
	}
	logger.Info("Sending email", fields...)

	err := sender.Send(ctx, email, templateID, personalisation)
	switch {
	case err == nil, errors.Is(err, ErrAlreadySent):
		return false, nil
	}

	logger.Error("Error sending email", append(fields, zap.Error(err))...)
	var templateErr *TemplateError
	if errors.As(err, &templateErr) {
		return true, err
	}
	return true, nil
}
