package changes

import (
	"fmt"

	"github.com/futig/mindtrace-ai/internal/entity"
)

const analysisTemperature = 0.3

const analystRole = "You are an expert in software project requirements and Jira tickets."

const analysisTemplate = `You are a project management and software requirements analysis expert.

Analyze the changes between the old and new Jira ticket descriptions below, and simulate what the client now wants based on the new description.

Old description:
%s

New description:
%s

Tasks:
1. Identify precisely what has changed between the old and new description.
2. Summarize the changes concisely from the client's perspective. Use phrases like "The client now wants..." to reflect intent.
3. Categorize each change with one of these types: "%s", "%s", "%s", "%s", "%s".
4. Provide recommendations or key points for the development team if relevant.
5. Respond in French if the descriptions are in French.

Return the result in JSON format exactly like this:

{
    "summary_changes": "Concise summary of what the client now wants",
    "changes_details": [
        {
            "type": "Type of change",
            "description": "Detailed description of the change"
        }
    ],
    "recommendations": "Suggestions or important points for the team"
}`

func buildAnalysisRequest(oldDesc, newDesc string) entity.CompletionRequest {
	prompt := fmt.Sprintf(analysisTemplate,
		oldDesc, newDesc,
		entity.ChangeTypeAdded,
		entity.ChangeTypeModified,
		entity.ChangeTypeRemoved,
		entity.ChangeTypePriority,
		entity.ChangeTypeTechnicalDetail,
	)

	return entity.CompletionRequest{
		Messages: []entity.ChatMessage{
			{Role: entity.ChatRoleSystem, Content: analystRole},
			{Role: entity.ChatRoleUser, Content: prompt},
		},
		Temperature: analysisTemperature,
		JSONMode:    true,
	}
}
