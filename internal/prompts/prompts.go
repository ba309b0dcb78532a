// Package prompts builds the generation prompts for the email and meeting handlers.
package prompts

import (
	"fmt"
	"strings"
)

const emailTemplate = `You are a professional business email assistant.

Write a clear, polite, and concise email based on the user's request below.

Requirements:
- Include a subject line starting with: "Subject:"
- Start with a greeting (e.g., "Dear <Client Name>,")
- Use a professional but friendly tone.
- End with the provided signature.

User request:
"""%s"""

Signature to use:
"""%s"""

Now write only the email.`

const meetingTemplate = `You are an assistant that summarizes business meetings.

Given the meeting transcript below:
1. Write a brief summary (3-5 sentences).
2. List all action items as numbered bullet points.
   - Each item should start with a verb (e.g., "Finalize", "Prepare", "Schedule").
   - Include who is responsible, if mentioned.

Meeting transcript:
"""%s"""

Format:

=== Meeting Summary ===
<summary here>

=== Action Items ===
1. ...
2. ...
3. ...`

// BuildEmail returns the email drafting prompt. The request and signature are
// embedded verbatim.
func BuildEmail(userRequest, signature string) string {
	return strings.TrimSpace(fmt.Sprintf(emailTemplate, userRequest, signature))
}

// BuildMeetingSummary returns the meeting summarization prompt.
func BuildMeetingSummary(transcript string) string {
	return strings.TrimSpace(fmt.Sprintf(meetingTemplate, transcript))
}
