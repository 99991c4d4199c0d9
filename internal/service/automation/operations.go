// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"github.com/staranto/opctl/internal/confirm"
	"github.com/staranto/opctl/internal/schema"
	"github.com/staranto/opctl/internal/service"
)

// Group is the command group name.
const Group = "coa"

// Impacts maps each operation to its confirmation impact.
var Impacts = confirm.Table{
	"AssociateAccounts":             confirm.Medium,
	"DisassociateAccounts":          confirm.High,
	"CreateAutomationRule":          confirm.Medium,
	"UpdateAutomationRule":          confirm.Medium,
	"DeleteAutomationRule":          confirm.High,
	"StartAutomationEvent":          confirm.Medium,
	"RollbackAutomationEvent":       confirm.High,
	"UpdateEnrollmentConfiguration": confirm.Medium,
	"TagResource":                   confirm.Medium,
	"UntagResource":                 confirm.High,
}

func clientToken() schema.Field {
	return schema.Field{
		Name:  "client-token",
		Path:  "ClientToken",
		Kind:  schema.KindToken,
		Usage: "Idempotency token; generated when omitted",
	}
}

func ruleArn() schema.Field {
	return schema.Field{
		Name:     "rule-arn",
		Path:     "RuleArn",
		Kind:     schema.KindString,
		Aliases:  []string{"arn"},
		Usage:    "ARN of the automation rule",
		Required: true,
	}
}

func ruleRevision() schema.Field {
	return schema.Field{
		Name:     "rule-revision",
		Path:     "RuleRevision",
		Kind:     schema.KindInt,
		Usage:    "Revision of the rule being changed",
		Required: true,
	}
}

func eventID() schema.Field {
	return schema.Field{
		Name:     "event-id",
		Path:     "EventId",
		Kind:     schema.KindString,
		Usage:    "ID of the automation event",
		Required: true,
	}
}

func filters(usage string) schema.Field {
	return schema.Field{
		Name:  "filters",
		Path:  "Filters",
		Kind:  schema.KindJSON,
		Usage: usage,
	}
}

func resourceArn() schema.Field {
	return schema.Field{
		Name:     "resource-arn",
		Path:     "ResourceArn",
		Kind:     schema.KindString,
		Usage:    "ARN of the automation resource",
		Required: true,
	}
}

func tags(required bool) schema.Field {
	return schema.Field{
		Name:     "tags",
		Path:     "Tags",
		Kind:     schema.KindTags,
		Usage:    "Tags as key=value, comma separated or repeated",
		Required: required,
	}
}

func accountIDs() schema.Field {
	return schema.Field{
		Name:     "account-ids",
		Path:     "AccountIds",
		Kind:     schema.KindStringList,
		Usage:    "Member account IDs",
		Required: true,
	}
}

// ruleFields are the fields describing what a rule matches and does. They
// are required when a rule is created and optional everywhere else.
func ruleFields(create bool) []schema.Field {
	return []schema.Field{
		{Name: "rule-type", Path: "RuleType", Kind: schema.KindEnum, Required: create,
			Enum: []string{"OrganizationRule", "AccountRule"}, Usage: "Scope of the rule"},
		{Name: "organization-configuration", Path: "OrganizationConfiguration", Kind: schema.KindJSON,
			Usage: "Organization rule settings as JSON, e.g. {\"RuleApplyOrder\":\"BeforeAccountRules\"}"},
		{Name: "recommended-action-types", Path: "RecommendedActionTypes", Kind: schema.KindStringList, Required: create,
			Usage: "Recommended action types the rule implements"},
		{Name: "criteria", Path: "Criteria", Kind: schema.KindJSON,
			Usage: "Resource matching criteria as JSON"},
	}
}

func definitionFields(create bool) []schema.Field {
	fields := []schema.Field{
		{Name: "name", Path: "Name", Kind: schema.KindString, Required: create,
			Usage: "Name of the rule"},
		{Name: "description", Path: "Description", Kind: schema.KindString,
			Usage: "Description of the rule"},
		{Name: "priority", Path: "Priority", Kind: schema.KindString,
			Usage: "Priority of the rule relative to other rules"},
	}
	fields = append(fields, ruleFields(create)...)
	fields = append(fields,
		schema.Field{Name: "schedule-expression", Path: "Schedule.ScheduleExpression", Kind: schema.KindString,
			Required: create, Usage: "When the rule runs, e.g. cron(0 4 ? * SUN *)"},
		schema.Field{Name: "schedule-timezone", Path: "Schedule.ScheduleExpressionTimezone", Kind: schema.KindString,
			Usage: "IANA time zone of the schedule expression"},
		schema.Field{Name: "execution-window", Path: "Schedule.ExecutionWindowInMinutes", Kind: schema.KindInt,
			Aliases: []string{"execution-window-in-minutes"}, Usage: "Length of the execution window, in minutes"},
		schema.Field{Name: "status", Path: "Status", Kind: schema.KindEnum, Required: create,
			Enum: []string{"Active", "Inactive"}, Usage: "Whether the rule is active"},
	)
	if create {
		// New rules start inactive so they can be previewed before they act.
		fields[len(fields)-1].Default = "Inactive"
	}
	return fields
}

// Operations returns the schemas of every automation command.
func Operations() []schema.Operation {
	createRule := append(definitionFields(true), tags(false), clientToken())
	updateRule := append([]schema.Field{ruleArn(), ruleRevision()}, definitionFields(false)...)
	updateRule = append(updateRule, clientToken())

	return []schema.Operation{
		{
			Service: Group,
			Name:    "AssociateAccounts",
			Usage:   "Enroll member accounts in automation",
			Fields:  []schema.Field{accountIDs(), clientToken()},
			Primary: "*",
		},
		{
			Service: Group,
			Name:    "DisassociateAccounts",
			Usage:   "Remove member accounts from automation",
			Fields:  []schema.Field{accountIDs(), clientToken()},
			Primary: "*",
		},
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListAccounts",
			Usage:   "List accounts enrolled in automation",
			Fields:  []schema.Field{filters("Account filters as JSON")},
			Primary: "Accounts",
		}),
		{
			Service: Group,
			Name:    "CreateAutomationRule",
			Usage:   "Create an automation rule",
			Fields:  createRule,
			Primary: "*",
			Target:  "name",
		},
		{
			Service: Group,
			Name:    "GetAutomationRule",
			Usage:   "Get an automation rule",
			Fields:  []schema.Field{ruleArn()},
			Primary: "*",
		},
		{
			Service: Group,
			Name:    "UpdateAutomationRule",
			Usage:   "Update an automation rule",
			Fields:  updateRule,
			Primary: "*",
			Target:  "rule-arn",
			Current: "GetAutomationRule",
		},
		{
			Service:  Group,
			Name:     "DeleteAutomationRule",
			Usage:    "Delete an automation rule",
			Fields:   []schema.Field{ruleArn(), ruleRevision(), clientToken()},
			PassThru: "rule-arn",
		},
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListAutomationRules",
			Usage:   "List automation rules",
			Fields:  []schema.Field{filters("Rule filters as JSON")},
			Primary: "AutomationRules",
		}),
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListAutomationRulePreview",
			Usage:   "Preview the recommended actions a rule would match",
			Fields:  ruleFields(true),
			Primary: "PreviewResults",
		}),
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListAutomationRulePreviewSummaries",
			Usage:   "Summarize the recommended actions a rule would match",
			Fields:  ruleFields(true),
			Primary: "PreviewResultSummaries",
		}),
		{
			Service: Group,
			Name:    "GetAutomationEvent",
			Usage:   "Get an automation event",
			Fields:  []schema.Field{eventID()},
			Primary: "*",
		},
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListAutomationEvents",
			Usage:   "List automation events",
			Fields:  []schema.Field{filters("Event filters as JSON")},
			Primary: "AutomationEvents",
		}),
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListAutomationEventSteps",
			Usage:   "List the steps of an automation event",
			Fields:  []schema.Field{eventID()},
			Primary: "AutomationEventSteps",
		}),
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListAutomationEventSummaries",
			Usage:   "Summarize automation events by day",
			Fields: []schema.Field{
				filters("Event filters as JSON"),
				{Name: "start-date", Path: "StartDateInclusive", Kind: schema.KindDate,
					Usage: "First day included"},
				{Name: "end-date", Path: "EndDateExclusive", Kind: schema.KindDate,
					Usage: "First day excluded"},
			},
			Primary: "AutomationEventSummaries",
		}),
		{
			Service: Group,
			Name:    "StartAutomationEvent",
			Usage:   "Implement a recommended action now",
			Fields: []schema.Field{
				{Name: "recommended-action-id", Path: "RecommendedActionId", Kind: schema.KindString, Required: true,
					Usage: "ID of the recommended action to implement"},
				clientToken(),
			},
			Primary: "*",
			Target:  "recommended-action-id",
		},
		{
			Service: Group,
			Name:    "RollbackAutomationEvent",
			Usage:   "Roll back the changes of an automation event",
			Fields:  []schema.Field{eventID(), clientToken()},
			Primary: "*",
			Target:  "event-id",
		},
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListRecommendedActions",
			Usage:   "List recommended actions automation can implement",
			Fields:  []schema.Field{filters("Recommended action filters as JSON")},
			Primary: "RecommendedActions",
		}),
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListRecommendedActionSummaries",
			Usage:   "Summarize recommended actions",
			Fields:  []schema.Field{filters("Recommended action filters as JSON")},
			Primary: "RecommendedActionSummaries",
		}),
		{
			Service: Group,
			Name:    "GetEnrollmentConfiguration",
			Usage:   "Get the automation enrollment of this account",
			Primary: "*",
		},
		{
			Service: Group,
			Name:    "UpdateEnrollmentConfiguration",
			Usage:   "Enroll or unenroll this account in automation",
			Fields: []schema.Field{
				{Name: "status", Path: "Status", Kind: schema.KindEnum, Required: true,
					Enum: []string{"Active", "Inactive"}, Usage: "New enrollment status"},
				clientToken(),
			},
			Primary: "*",
			Current: "GetEnrollmentConfiguration",
		},
		{
			Service:  Group,
			Name:     "TagResource",
			Usage:    "Add tags to an automation resource",
			Fields:   []schema.Field{resourceArn(), tags(true)},
			PassThru: "resource-arn",
		},
		{
			Service: Group,
			Name:    "UntagResource",
			Usage:   "Remove tags from an automation resource",
			Fields: []schema.Field{
				resourceArn(),
				{Name: "tag-keys", Path: "TagKeys", Kind: schema.KindStringList, Required: true,
					Usage: "Keys of the tags to remove"},
			},
			PassThru: "resource-arn",
		},
		{
			Service: Group,
			Name:    "ListTagsForResource",
			Usage:   "List the tags of an automation resource",
			Fields:  []schema.Field{resourceArn()},
			Primary: "Tags",
		},
	}
}

// Entries binds every operation to its client method.
func Entries() []service.Entry {
	bindings := map[string]func(schema.Operation) service.Entry{
		"AssociateAccounts":                  bind(API.AssociateAccounts),
		"DisassociateAccounts":               bind(API.DisassociateAccounts),
		"ListAccounts":                       bind(API.ListAccounts),
		"CreateAutomationRule":               bind(API.CreateAutomationRule),
		"GetAutomationRule":                  bind(API.GetAutomationRule),
		"UpdateAutomationRule":               bind(API.UpdateAutomationRule),
		"DeleteAutomationRule":               bind(API.DeleteAutomationRule),
		"ListAutomationRules":                bind(API.ListAutomationRules),
		"ListAutomationRulePreview":          bind(API.ListAutomationRulePreview),
		"ListAutomationRulePreviewSummaries": bind(API.ListAutomationRulePreviewSummaries),
		"GetAutomationEvent":                 bind(API.GetAutomationEvent),
		"ListAutomationEvents":               bind(API.ListAutomationEvents),
		"ListAutomationEventSteps":           bind(API.ListAutomationEventSteps),
		"ListAutomationEventSummaries":       bind(API.ListAutomationEventSummaries),
		"StartAutomationEvent":               bind(API.StartAutomationEvent),
		"RollbackAutomationEvent":            bind(API.RollbackAutomationEvent),
		"ListRecommendedActions":             bind(API.ListRecommendedActions),
		"ListRecommendedActionSummaries":     bind(API.ListRecommendedActionSummaries),
		"GetEnrollmentConfiguration":         bind(API.GetEnrollmentConfiguration),
		"UpdateEnrollmentConfiguration":      bind(API.UpdateEnrollmentConfiguration),
		"TagResource":                        bind(API.TagResource),
		"UntagResource":                      bind(API.UntagResource),
		"ListTagsForResource":                bind(API.ListTagsForResource),
	}

	ops := Operations()
	out := make([]service.Entry, 0, len(ops))
	for _, op := range ops {
		if b, ok := bindings[op.Name]; ok {
			out = append(out, b(op))
		}
	}
	return out
}

// Service returns the coa command group.
func Service() service.Group {
	return service.Group{
		Name:    Group,
		Title:   "AWS Compute Optimizer Automation",
		Usage:   "Manage Compute Optimizer automation rules and events",
		Entries: Entries(),
	}
}
