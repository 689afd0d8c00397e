package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/taskdeck/taskdeck-api/internal/models"
)

// TaskGraph is the nested name tree handed to the advisor as structural
// context: each key is a task name, each value the subtree below it.
type TaskGraph map[string]TaskGraph

// BuildTaskGraph converts a project's task rows into a rooted name tree.
// Tasks whose parent is missing from the set are treated as roots.
func BuildTaskGraph(tasks []models.Task) TaskGraph {
	childrenMap := make(map[string][]models.Task)
	inSet := make(map[string]bool, len(tasks))

	for _, task := range tasks {
		inSet[task.ID] = true
	}
	for _, task := range tasks {
		if task.ParentID != nil && inSet[*task.ParentID] {
			childrenMap[*task.ParentID] = append(childrenMap[*task.ParentID], task)
		}
	}

	var buildNode func(taskID string) TaskGraph
	buildNode = func(taskID string) TaskGraph {
		node := TaskGraph{}
		for _, child := range childrenMap[taskID] {
			node[child.Name] = buildNode(child.ID)
		}
		return node
	}

	graph := TaskGraph{}
	for _, task := range tasks {
		if task.ParentID == nil || !inSet[*task.ParentID] {
			graph[task.Name] = buildNode(task.ID)
		}
	}

	return graph
}

// SplitSuggestion is a two-phase decomposition of a task's remaining work.
// FirstPhase always represents earlier work than SecondPhase.
type SplitSuggestion struct {
	FirstPhase  string
	SecondPhase string
}

// SplitAdvisor proposes a decomposition of a task into two sequential
// phases. Implementations are fallible and latent; callers must never invoke
// one while holding a database transaction.
type SplitAdvisor interface {
	GenerateSplit(ctx context.Context, taskName string, graph TaskGraph) (*SplitSuggestion, error)
}

const splitSystemPrompt = `You are a task splitting assistant. As an AI, you are tasked with analyzing the request {{task}} and dividing the entire workflow into two primary sequential phases ("First Half" and "Second Half"). {{graph}} represents the complete workflow of the project, including {{task}}. Ensure that both first_half and second_half generate content that differs from {{graph}}. For first_half, describe the key phases of the initial work stages. For second_half, describe the remaining final stages of work required to complete the task. You must provide your response in the following JSON format and strictly adhere to the specified character limits: {"first_half": "[first_half (initial work phase). 15 characters or less]", "second_half": "[second_half (remaining final work phase to execute after first_half). 15 characters or less]"}`

// OpenAISplitAdvisor implements SplitAdvisor with the OpenAI chat API.
type OpenAISplitAdvisor struct {
	client *openai.Client
}

// NewOpenAISplitAdvisor creates an advisor talking to the OpenAI API.
func NewOpenAISplitAdvisor(apiKey string) *OpenAISplitAdvisor {
	return &OpenAISplitAdvisor{
		client: openai.NewClient(apiKey),
	}
}

// NewOpenAISplitAdvisorWithClient creates an advisor over an existing client
// (used for testing against a stub endpoint).
func NewOpenAISplitAdvisorWithClient(client *openai.Client) *OpenAISplitAdvisor {
	return &OpenAISplitAdvisor{client: client}
}

// GenerateSplit asks the model for a two-phase decomposition of taskName.
// The response is parsed strictly: missing or blank fields are an error, not
// a silent default.
func (a *OpenAISplitAdvisor) GenerateSplit(ctx context.Context, taskName string, graph TaskGraph) (*SplitSuggestion, error) {
	if a.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	graphJSON, err := json.Marshal(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task graph: %w", err)
	}

	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4Dot1Mini,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: splitSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf("task: %s\ngraph: %s", taskName, graphJSON),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.7,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var parsed struct {
		FirstHalf  string `json:"first_half"`
		SecondHalf string `json:"second_half"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	if strings.TrimSpace(parsed.FirstHalf) == "" || strings.TrimSpace(parsed.SecondHalf) == "" {
		return nil, fmt.Errorf("AI response missing phase names (response: %s)", content)
	}

	return &SplitSuggestion{
		FirstPhase:  parsed.FirstHalf,
		SecondPhase: parsed.SecondHalf,
	}, nil
}
