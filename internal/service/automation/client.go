// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	coa "github.com/aws/aws-sdk-go-v2/service/computeoptimizerautomation"

	awsx "github.com/staranto/opctl/internal/aws"
	"github.com/staranto/opctl/internal/dispatch"
	"github.com/staranto/opctl/internal/schema"
	"github.com/staranto/opctl/internal/service"
)

// ClientName keys the automation client in a session.
const ClientName = "computeoptimizerautomation"

// API is the subset of the Compute Optimizer Automation client the commands
// use.
type API interface {
	AssociateAccounts(context.Context, *coa.AssociateAccountsInput, ...func(*coa.Options)) (*coa.AssociateAccountsOutput, error)
	DisassociateAccounts(context.Context, *coa.DisassociateAccountsInput, ...func(*coa.Options)) (*coa.DisassociateAccountsOutput, error)
	ListAccounts(context.Context, *coa.ListAccountsInput, ...func(*coa.Options)) (*coa.ListAccountsOutput, error)

	CreateAutomationRule(context.Context, *coa.CreateAutomationRuleInput, ...func(*coa.Options)) (*coa.CreateAutomationRuleOutput, error)
	GetAutomationRule(context.Context, *coa.GetAutomationRuleInput, ...func(*coa.Options)) (*coa.GetAutomationRuleOutput, error)
	UpdateAutomationRule(context.Context, *coa.UpdateAutomationRuleInput, ...func(*coa.Options)) (*coa.UpdateAutomationRuleOutput, error)
	DeleteAutomationRule(context.Context, *coa.DeleteAutomationRuleInput, ...func(*coa.Options)) (*coa.DeleteAutomationRuleOutput, error)
	ListAutomationRules(context.Context, *coa.ListAutomationRulesInput, ...func(*coa.Options)) (*coa.ListAutomationRulesOutput, error)
	ListAutomationRulePreview(context.Context, *coa.ListAutomationRulePreviewInput, ...func(*coa.Options)) (*coa.ListAutomationRulePreviewOutput, error)
	ListAutomationRulePreviewSummaries(context.Context, *coa.ListAutomationRulePreviewSummariesInput, ...func(*coa.Options)) (*coa.ListAutomationRulePreviewSummariesOutput, error)

	GetAutomationEvent(context.Context, *coa.GetAutomationEventInput, ...func(*coa.Options)) (*coa.GetAutomationEventOutput, error)
	ListAutomationEvents(context.Context, *coa.ListAutomationEventsInput, ...func(*coa.Options)) (*coa.ListAutomationEventsOutput, error)
	ListAutomationEventSteps(context.Context, *coa.ListAutomationEventStepsInput, ...func(*coa.Options)) (*coa.ListAutomationEventStepsOutput, error)
	ListAutomationEventSummaries(context.Context, *coa.ListAutomationEventSummariesInput, ...func(*coa.Options)) (*coa.ListAutomationEventSummariesOutput, error)
	StartAutomationEvent(context.Context, *coa.StartAutomationEventInput, ...func(*coa.Options)) (*coa.StartAutomationEventOutput, error)
	RollbackAutomationEvent(context.Context, *coa.RollbackAutomationEventInput, ...func(*coa.Options)) (*coa.RollbackAutomationEventOutput, error)

	ListRecommendedActions(context.Context, *coa.ListRecommendedActionsInput, ...func(*coa.Options)) (*coa.ListRecommendedActionsOutput, error)
	ListRecommendedActionSummaries(context.Context, *coa.ListRecommendedActionSummariesInput, ...func(*coa.Options)) (*coa.ListRecommendedActionSummariesOutput, error)

	GetEnrollmentConfiguration(context.Context, *coa.GetEnrollmentConfigurationInput, ...func(*coa.Options)) (*coa.GetEnrollmentConfigurationOutput, error)
	UpdateEnrollmentConfiguration(context.Context, *coa.UpdateEnrollmentConfigurationInput, ...func(*coa.Options)) (*coa.UpdateEnrollmentConfigurationOutput, error)

	TagResource(context.Context, *coa.TagResourceInput, ...func(*coa.Options)) (*coa.TagResourceOutput, error)
	UntagResource(context.Context, *coa.UntagResourceInput, ...func(*coa.Options)) (*coa.UntagResourceOutput, error)
	ListTagsForResource(context.Context, *coa.ListTagsForResourceInput, ...func(*coa.Options)) (*coa.ListTagsForResourceOutput, error)
}

var _ API = (*coa.Client)(nil)

// Client returns the session's automation client.
func Client(s *awsx.Session) API {
	return s.Client(ClientName, func(s *awsx.Session) any {
		return coa.NewFromConfig(s.Config, func(o *coa.Options) {
			if s.Endpoint != "" {
				o.BaseEndpoint = awsv2.String(s.Endpoint)
			}
		})
	}).(API)
}

func bind[I, O any](m func(API, context.Context, *I, ...func(*coa.Options)) (*O, error)) func(schema.Operation) service.Entry {
	b := dispatch.Method(m)
	return func(op schema.Operation) service.Entry {
		return service.Bind(op, Impacts, Client, b)
	}
}
