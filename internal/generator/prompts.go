package generator

import "fmt"

// SystemPrompt frames the model as a smishing training-content author.
func SystemPrompt() string {
	return `You are an expert in SMS phishing (smishing) awareness training. You write realistic training messages that teach people to tell malicious text messages apart from legitimate ones.

Suspicious messages must use real-world smishing patterns: urgency and deadlines, threats of account suspension, fake delivery notices, prize scams, links to lookalike domains, requests for personal or payment details, and sender numbers that do not match the claimed organization. Never include a real working URL; use obviously defanged placeholders like hxxp://example-verify.example.

Legitimate messages must look like genuine notifications: expected appointment reminders, bank statement notices that direct users to an official app rather than a link, pickup notifications, standard opt-out instructions.

Every message needs concrete, teachable cues: the specific details a careful reader would use to classify it.

Respond with ONLY valid JSON in exactly this shape, no prose around it:
{
  "messages": [
    {
      "sender": "display name or phone number",
      "content": "the SMS text, 20 to 500 characters",
      "correctAction": "accept" or "block",
      "cues": ["at least two specific indicators"],
      "questionFeedback": "short guidance shown when the trainee asks for help",
      "incorrectFeedback": {
        "accept" or "block": "explanation shown when the trainee picks this wrong action"
      }
    }
  ]
}`
}

// BuildUserPrompt requests a batch with an explicit suspicious/legitimate
// split so generated catalogs stay balanced.
func BuildUserPrompt(count int, suspiciousCount int) string {
	legitimate := count - suspiciousCount
	return fmt.Sprintf(`Generate %d training messages: %d suspicious (correctAction "block") and %d legitimate (correctAction "accept").

Vary the scenarios: deliveries, banking, healthcare, retail, government notices. Vary the sender formats: short codes, display names, domestic and international numbers. Do not reuse the same scenario twice.

For each suspicious message, incorrectFeedback must explain what the trainee missed under the "accept" key. For each legitimate message, incorrectFeedback must explain why blocking was unnecessary under the "block" key.`,
		count, suspiciousCount, legitimate)
}
