package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// LLMClient is the interface all generator backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient and adds the message batch method.
type Generator struct {
	llm   LLMClient
	model string
}

func NewGenerator() *Generator {
	var llm LLMClient
	model := "mock"

	if os.Getenv("USE_CLI_GENERATOR") == "true" {
		cliPath := os.Getenv("CLAUDE_CLI_PATH")
		if cliPath == "" {
			cliPath = "claude"
		}
		llm = NewCLIClient(cliPath)
		model = "claude-cli"
		log.Println("Generator using Claude CLI (local plan)")
	} else if os.Getenv("MOCK_GENERATOR") == "true" {
		llm = NewMockClient()
		log.Println("Generator using mock data")
	} else {
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-opus-4-5-20251101"
		}
		llm = NewAPIClient(model)
		log.Println("Generator using Anthropic API:", model)
	}

	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateMessages produces a validated batch of training messages with
// the requested suspicious/legitimate mix.
func (g *Generator) GenerateMessages(ctx context.Context, count int, suspiciousCount int) (*GeneratedBatch, *LLMResponse, error) {
	systemPrompt := SystemPrompt()
	userPrompt := BuildUserPrompt(count, suspiciousCount)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate message batch: %w", err)
	}

	batch, err := ParseResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse message response: %w", err)
	}

	return batch, resp, nil
}

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.8),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      buildMockJSON(),
		PromptTokens: 800,
		OutputTokens: 1600,
	}, nil
}

func buildMockJSON() string {
	scenarios := []struct {
		sender  string
		content string
		action  string
		cues    string
	}{
		{
			sender:  "+1 (555) 019-2847",
			content: "[Mock] Your package could not be delivered due to an incomplete address. Update your details within 24 hours: hxxp://delivery-updates.example/track",
			action:  "block",
			cues:    `"Urgency pressure with a 24-hour deadline","Link to a non-carrier domain","Unknown sender number"`,
		},
		{
			sender:  "MOCKBANK",
			content: "[Mock] Your statement for account ending 4471 is now available. Log in through your banking app to view it.",
			action:  "accept",
			cues:    `"No link to click, directs to the official app","No request for personal information","Matches normal statement schedule"`,
		},
		{
			sender:  "+44 7700 900123",
			content: "[Mock] URGENT: Your account has been suspended. Verify your identity immediately at hxxp://secure-verify.example or lose access permanently.",
			action:  "block",
			cues:    `"Threatens permanent account loss","Asks you to verify identity through a link","Sender is an unrecognized international number"`,
		},
		{
			sender:  "MockPharmacy",
			content: "[Mock] Your prescription is ready for pickup at your usual location. Reply STOP to opt out of notifications.",
			action:  "accept",
			cues:    `"Expected notification from a known service","No link and no request for information","Standard opt-out instruction"`,
		},
	}

	messages := "["
	for i, s := range scenarios {
		if i > 0 {
			messages += ","
		}
		wrong := "block"
		wrongText := "This was a routine, legitimate notification with no request for information."
		if s.action == "block" {
			wrong = "accept"
			wrongText = "This message pressured you to act through an untrusted link and should have been blocked."
		}
		messages += fmt.Sprintf(`{"sender":"%s","content":"%s","correctAction":"%s","cues":[%s],"questionFeedback":"[Mock] Look at the sender, the urgency, and where any link actually points.","incorrectFeedback":{"%s":"[Mock] %s"}}`,
			s.sender, s.content, s.action, s.cues, wrong, wrongText)
	}
	messages += "]"

	return fmt.Sprintf(`{"messages":%s}`, messages)
}
